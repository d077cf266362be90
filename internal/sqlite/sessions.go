package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confplan/confplan/internal/confplan"
)

// UpsertSessions merges a catalog batch into the sessions table: insert when
// the id is unseen, otherwise update every mutable field in place. The whole
// batch commits in one transaction; a record without an id is logged and
// skipped rather than aborting the batch.
func (r Repo) UpsertSessions(ctx context.Context, sessions []confplan.Session) (confplan.Reconciliation, error) {
	var rec confplan.Reconciliation

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("error beginning session upsert: %s", err)
	}
	defer tx.Rollback()

	const probe = `SELECT id FROM sessions WHERE id = ?;`
	const insert = `INSERT INTO sessions (
		id, short_id, title, abstract, start_datetime, end_datetime,
		day, venue, room, level, type, speakers, services, topics,
		areas_of_interest, last_modified
	) VALUES (
		:id, :short_id, :title, :abstract, :start_datetime, :end_datetime,
		:day, :venue, :room, :level, :type, :speakers, :services, :topics,
		:areas_of_interest, :last_modified
	);`
	const update = `UPDATE sessions SET
		short_id=:short_id, title=:title, abstract=:abstract,
		start_datetime=:start_datetime, end_datetime=:end_datetime,
		day=:day, venue=:venue, room=:room, level=:level, type=:type,
		speakers=:speakers, services=:services, topics=:topics,
		areas_of_interest=:areas_of_interest, last_modified=:last_modified,
		updated_at=CURRENT_TIMESTAMP
	WHERE id=:id;`

	for _, s := range sessions {
		if s.ID == "" {
			slog.Warn("skipping session without id", "short_id", s.ShortID, "title", s.Title)
			continue
		}

		var existing string
		err := tx.GetContext(ctx, &existing, probe, s.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NamedExecContext(ctx, insert, s); err != nil {
				slog.Error("error inserting session", "id", s.ID, "error", err)
				continue
			}
			rec.New++
		case err != nil:
			return rec, fmt.Errorf("error probing session %s: %s", s.ID, err)
		default:
			if _, err := tx.NamedExecContext(ctx, update, s); err != nil {
				slog.Error("error updating session", "id", s.ID, "error", err)
				continue
			}
			rec.Updated++
		}
		rec.Processed++
	}

	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("error committing session upsert: %s", err)
	}

	return rec, nil
}

// StoredSessions returns every persisted session. Read views go through the
// catalog cache instead; this feeds tests and the favorites join only.
func (r Repo) StoredSessions(ctx context.Context) ([]confplan.Session, error) {
	const q = `SELECT id, short_id, title, abstract, start_datetime, end_datetime,
		day, venue, room, level, type, speakers, services, topics,
		areas_of_interest, last_modified
	FROM sessions;`

	var sessions []confplan.Session
	if err := r.db.SelectContext(ctx, &sessions, q); err != nil {
		return nil, fmt.Errorf("error selecting sessions: %s", err)
	}

	return sessions, nil
}
