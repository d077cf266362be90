package ops

import (
	"fmt"
	"net/http"
	"strconv"

	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/confplan/confplan/internal/format"
)

func (s *Server) getFeedItems(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	limit, err := limitParam(q.Get("limit"))
	if err != nil {
		return err
	}

	items, err := s.planner.FeedItems(r.Context(), q.Get("category"), limit)
	if err != nil {
		return err
	}

	return s.text(w, format.FeedItems(items))
}

func (s *Server) getAgendaEvents(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	limit, err := limitParam(q.Get("limit"))
	if err != nil {
		return err
	}

	events, err := s.planner.AgendaEvents(r.Context(), q.Get("day"), q.Get("type"), limit)
	if err != nil {
		return err
	}

	return s.text(w, format.AgendaEvents(events))
}

func (s *Server) postSyncFeed(w http.ResponseWriter, r *http.Request) error {
	out, err := s.syncer.SyncFeed(r.Context())
	if err != nil {
		// Surface the upstream cause to the caller, not a generic 500.
		return cperrs.E(http.StatusBadGateway, fmt.Errorf("error syncing feed: %s", err))
	}

	return s.text(w, format.FeedSynced(out))
}

func (s *Server) postSyncAgenda(w http.ResponseWriter, r *http.Request) error {
	out, err := s.syncer.SyncAgenda(r.Context())
	if err != nil {
		return cperrs.E(http.StatusBadGateway, fmt.Errorf("error syncing agenda: %s", err))
	}

	return s.text(w, format.AgendaSynced(out))
}

func (s *Server) postSyncAll(w http.ResponseWriter, r *http.Request) error {
	lines := s.syncer.SyncAll(r.Context())

	// The catalog may have changed under any cached detail renderings.
	s.detailRespCache.Purge()

	return s.text(w, format.AllSynced(lines))
}

func (s *Server) getSyncHistory(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	limit, err := limitParam(q.Get("limit"))
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = 20
	}

	records, err := s.syncer.History(r.Context(), q.Get("source"), limit)
	if err != nil {
		return err
	}

	return s.text(w, format.SyncHistory(records))
}

func limitParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, cperrs.E(http.StatusBadRequest, fmt.Errorf("limit must be a number: %s", err))
	}
	return limit, nil
}
