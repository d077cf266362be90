package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/confplan/confplan/internal/confplan"
)

// RecordSync appends one ledger row. Rows are write-once; nothing in this
// package updates or deletes them.
func (r Repo) RecordSync(ctx context.Context, rec confplan.SyncRecord) error {
	const q = `INSERT INTO sync_log (source, sync_type, items_processed, items_new, items_updated, status, error_message)
	VALUES (:source, :sync_type, :items_processed, :items_new, :items_updated, :status, :error_message);`

	if _, err := r.db.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("error recording sync: %s", err)
	}

	return nil
}

// SyncHistory returns ledger rows, most recent first.
func (r Repo) SyncHistory(ctx context.Context, source string, limit int) ([]confplan.SyncRecord, error) {
	q := sq.Select("*").From("sync_log")
	if source != "" {
		q = q.Where(sq.Eq{"source": source})
	}
	q = q.OrderBy("id DESC").Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var records []confplan.SyncRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting sync history: %s", err)
	}

	return records, nil
}
