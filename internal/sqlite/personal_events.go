package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/confplan/confplan/internal/confplan"
)

// InsertPersonalEvent stores a caller-owned event and returns it with the
// assigned id. Timestamp validation happens before this is ever called.
func (r Repo) InsertPersonalEvent(ctx context.Context, ev confplan.PersonalEvent) (confplan.PersonalEvent, error) {
	const q = `INSERT INTO personal_events (title, description, start_datetime, end_datetime, location, event_type, notes)
	VALUES (:title, :description, :start_datetime, :end_datetime, :location, :event_type, :notes);`

	res, err := r.db.NamedExecContext(ctx, q, ev)
	if err != nil {
		return confplan.PersonalEvent{}, fmt.Errorf("error inserting personal event: %s", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return confplan.PersonalEvent{}, fmt.Errorf("error reading personal event id: %s", err)
	}
	ev.ID = id

	return ev, nil
}

// PersonalEvent fetches one event by id.
func (r Repo) PersonalEvent(ctx context.Context, id int64) (confplan.PersonalEvent, error) {
	const q = `SELECT id, title, description, start_datetime, end_datetime, location, event_type, notes
	FROM personal_events WHERE id = ?;`

	var ev confplan.PersonalEvent
	err := r.db.GetContext(ctx, &ev, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return confplan.PersonalEvent{}, confplan.ErrNotFound
	}
	if err != nil {
		return confplan.PersonalEvent{}, fmt.Errorf("error fetching personal event: %s", err)
	}

	return ev, nil
}

// PersonalEvents lists events ordered by start, optionally narrowed by a
// start-date prefix and an event type.
func (r Repo) PersonalEvents(ctx context.Context, startPrefix, eventType string) ([]confplan.PersonalEvent, error) {
	q := sq.Select("id", "title", "description", "start_datetime", "end_datetime", "location", "event_type", "notes").
		From("personal_events")
	if startPrefix != "" {
		q = q.Where(sq.Like{"start_datetime": startPrefix + "%"})
	}
	if eventType != "" {
		q = q.Where(sq.Eq{"event_type": eventType})
	}
	q = q.OrderBy("start_datetime")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var events []confplan.PersonalEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting personal events: %s", err)
	}

	return events, nil
}

// DeletePersonalEvent removes one event by id.
func (r Repo) DeletePersonalEvent(ctx context.Context, id int64) error {
	const q = `DELETE FROM personal_events WHERE id = ?;`

	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("error deleting personal event: %s", err)
	}

	return nil
}
