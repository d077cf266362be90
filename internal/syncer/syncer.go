// Package syncer drives the per-source synchronization flows and writes the
// sync ledger. Each source syncs independently; one source's outage never
// blocks the others.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confplan/confplan/internal/agenda"
	"github.com/confplan/confplan/internal/catalog"
	"github.com/confplan/confplan/internal/confplan"
	"github.com/confplan/confplan/internal/rss"
	"github.com/confplan/confplan/internal/sqlite"
	"github.com/confplan/confplan/logger"
)

// Outcome summarizes one successful source sync for display.
type Outcome struct {
	Source        string
	Counts        confplan.Reconciliation
	FeedTitle     string
	LastBuildDate string
}

type Syncer struct {
	repo    sqlite.Repo
	feed    *rss.Client
	agenda  *agenda.Client
	catalog *catalog.Cache
}

// New wires the syncer and the catalog cache together: the cache calls back
// into the syncer to persist and ledger every successful refresh.
func New(repo sqlite.Repo, catalogClient *catalog.Client, feed *rss.Client, agendaClient *agenda.Client) *Syncer {
	s := &Syncer{
		repo:   repo,
		feed:   feed,
		agenda: agendaClient,
	}
	s.catalog = catalog.NewCache(catalogClient, catalog.DefaultTTL, s.persistCatalog)

	return s
}

// Catalog exposes the cache for the read side.
func (s *Syncer) Catalog() *catalog.Cache {
	return s.catalog
}

// persistCatalog upserts a freshly fetched catalog and ledgers the outcome.
// The ledger row is written after the data commit it describes.
func (s *Syncer) persistCatalog(ctx context.Context, sessions []confplan.Session) {
	ctx = logger.Ctx(ctx, slog.String("source", confplan.SourceCatalog))

	rec, err := s.repo.UpsertSessions(ctx, sessions)
	if err != nil {
		slog.ErrorContext(ctx, "error persisting catalog", "error", err)
		s.recordFailure(ctx, confplan.SourceCatalog, "sessions", err)
		return
	}

	s.record(ctx, confplan.SourceCatalog, "sessions", rec)
	slog.InfoContext(ctx, "stored sessions", "processed", rec.Processed, "new", rec.New, "updated", rec.Updated)
}

// SyncCatalog forces a catalog refresh through the cache.
func (s *Syncer) SyncCatalog(ctx context.Context) error {
	_, err := s.catalog.Get(ctx, true)
	return err
}

// SyncFeed fetches the update feed and appends unseen items.
func (s *Syncer) SyncFeed(ctx context.Context) (Outcome, error) {
	ctx = logger.Ctx(ctx, slog.String("source", confplan.SourceFeed))

	meta, items, err := s.feed.Fetch(ctx)
	if err != nil {
		s.recordFailure(ctx, confplan.SourceFeed, "feed_items", err)
		return Outcome{}, err
	}

	rec, err := s.repo.InsertFeedItems(ctx, items)
	if err != nil {
		s.recordFailure(ctx, confplan.SourceFeed, "feed_items", err)
		return Outcome{}, err
	}

	s.record(ctx, confplan.SourceFeed, "feed_items", rec)
	slog.InfoContext(ctx, "feed sync complete", "processed", rec.Processed, "new", rec.New)

	return Outcome{
		Source:        confplan.SourceFeed,
		Counts:        rec,
		FeedTitle:     meta.Title,
		LastBuildDate: meta.LastBuildDate,
	}, nil
}

// SyncAgenda scrapes the agenda page and replaces the stored events.
func (s *Syncer) SyncAgenda(ctx context.Context) (Outcome, error) {
	ctx = logger.Ctx(ctx, slog.String("source", confplan.SourceAgenda))

	events, err := s.agenda.Fetch(ctx)
	if err != nil {
		s.recordFailure(ctx, confplan.SourceAgenda, "agenda", err)
		return Outcome{}, err
	}

	inserted, err := s.repo.ReplaceAgenda(ctx, events)
	if err != nil {
		s.recordFailure(ctx, confplan.SourceAgenda, "agenda", err)
		return Outcome{}, err
	}

	rec := confplan.Reconciliation{Processed: inserted, New: inserted}
	s.record(ctx, confplan.SourceAgenda, "agenda", rec)
	slog.InfoContext(ctx, "agenda sync complete", "events", inserted)

	return Outcome{Source: confplan.SourceAgenda, Counts: rec}, nil
}

// SyncAll runs every source sequentially and returns one outcome line per
// source. Failures are isolated; there is no all-or-nothing result.
func (s *Syncer) SyncAll(ctx context.Context) []string {
	var lines []string

	if out, err := s.SyncFeed(ctx); err != nil {
		lines = append(lines, fmt.Sprintf("feed failed: %s", err))
	} else {
		lines = append(lines, fmt.Sprintf("feed: %d new items", out.Counts.New))
	}

	if out, err := s.SyncAgenda(ctx); err != nil {
		lines = append(lines, fmt.Sprintf("agenda failed: %s", err))
	} else {
		lines = append(lines, fmt.Sprintf("agenda: %d events", out.Counts.Processed))
	}

	if err := s.SyncCatalog(ctx); err != nil {
		lines = append(lines, fmt.Sprintf("catalog failed: %s", err))
	} else {
		lines = append(lines, "catalog: updated")
	}

	return lines
}

// History returns ledger rows, most recent first.
func (s *Syncer) History(ctx context.Context, source string, limit int) ([]confplan.SyncRecord, error) {
	return s.repo.SyncHistory(ctx, source, limit)
}

func (s *Syncer) record(ctx context.Context, source, kind string, rec confplan.Reconciliation) {
	err := s.repo.RecordSync(ctx, confplan.SyncRecord{
		Source:    source,
		Kind:      kind,
		Processed: rec.Processed,
		New:       rec.New,
		Updated:   rec.Updated,
		Status:    confplan.StatusSuccess,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error writing sync ledger", "error", err)
	}
}

// recordFailure is best-effort: the failure itself already propagates, so a
// ledger write error is only logged.
func (s *Syncer) recordFailure(ctx context.Context, source, kind string, cause error) {
	err := s.repo.RecordSync(ctx, confplan.SyncRecord{
		Source:       source,
		Kind:         kind,
		Status:       confplan.StatusError,
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "error writing sync ledger", "error", err)
	}
}
