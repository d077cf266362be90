package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/confplan/confplan/internal/confplan"
)

// ReplaceAgenda swaps the agenda table for the given scrape, delete-all then
// insert-all in one transaction. The source page carries no stable
// identifiers, so earlier rows never survive a re-scrape.
func (r Repo) ReplaceAgenda(ctx context.Context, events []confplan.AgendaEvent) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning agenda replace: %s", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM agenda_events;`); err != nil {
		return 0, fmt.Errorf("error clearing agenda events: %s", err)
	}

	const insert = `INSERT INTO agenda_events (date, time, title, description, location, duration, event_type)
	VALUES (:date, :time, :title, :description, :location, :duration, :event_type);`

	inserted := 0
	for _, ev := range events {
		if _, err := tx.NamedExecContext(ctx, insert, ev); err != nil {
			return 0, fmt.Errorf("error inserting agenda event %q: %s", ev.Title, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing agenda replace: %s", err)
	}

	return inserted, nil
}

// AgendaEvents returns stored agenda events ordered by date then time.
func (r Repo) AgendaEvents(ctx context.Context, day, eventType string, limit int) ([]confplan.AgendaEvent, error) {
	q := sq.Select("id", "date", "time", "title", "description", "location", "duration", "event_type").
		From("agenda_events")
	if day != "" {
		q = q.Where(sq.Like{"date": "%" + day + "%"})
	}
	if eventType != "" {
		q = q.Where(sq.Eq{"event_type": eventType})
	}
	q = q.OrderBy("date", "time").Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var events []confplan.AgendaEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting agenda events: %s", err)
	}

	return events, nil
}
