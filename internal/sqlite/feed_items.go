package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/confplan/confplan/internal/confplan"
)

// InsertFeedItems stores unseen feed items. Feed items are append-only: an
// existing guid counts as processed but is never touched again.
func (r Repo) InsertFeedItems(ctx context.Context, items []confplan.FeedItem) (confplan.Reconciliation, error) {
	var rec confplan.Reconciliation

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("error beginning feed insert: %s", err)
	}
	defer tx.Rollback()

	const probe = `SELECT guid FROM feed_items WHERE guid = ?;`
	const insert = `INSERT INTO feed_items (guid, title, description, link, pub_date, category)
	VALUES (:guid, :title, :description, :link, :pub_date, :category);`

	for _, item := range items {
		if item.GUID == "" {
			slog.Warn("skipping feed item without guid", "title", item.Title)
			continue
		}

		var existing string
		err := tx.GetContext(ctx, &existing, probe, item.GUID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NamedExecContext(ctx, insert, item); err != nil {
				slog.Error("error inserting feed item", "guid", item.GUID, "error", err)
				continue
			}
			rec.New++
		case err != nil:
			return rec, fmt.Errorf("error probing feed item %s: %s", item.GUID, err)
		}
		rec.Processed++
	}

	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("error committing feed insert: %s", err)
	}

	return rec, nil
}

// FeedItems returns stored items, newest first, optionally narrowed to a
// category substring.
func (r Repo) FeedItems(ctx context.Context, category string, limit int) ([]confplan.FeedItem, error) {
	q := sq.Select("*").From("feed_items")
	if category != "" {
		q = q.Where(sq.Like{"category": "%" + category + "%"})
	}
	q = q.OrderBy("created_at DESC").Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var items []confplan.FeedItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting feed items: %s", err)
	}

	return items, nil
}
