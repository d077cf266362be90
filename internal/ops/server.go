// Package ops is the HTTP surface. Every operation responds with a plain
// text rendering wrapped in a small JSON envelope.
package ops

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/confplan/confplan/internal/confplan"
	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/confplan/confplan/internal/ical"
	"github.com/confplan/confplan/internal/planner"
	"github.com/confplan/confplan/internal/serverutil"
	"github.com/confplan/confplan/internal/syncer"
)

type (
	// Server answers planning queries and triggers syncs.
	Server struct {
		*http.Server

		detailRespCache *lru.Cache[string, string]

		planner  *planner.Planner
		syncer   *syncer.Syncer
		exporter ical.Exporter
	}

	ServerConfig struct {
		Port       int
		CorsHeader string
	}
)

func NewServer(config ServerConfig, p *planner.Planner, sy *syncer.Syncer, exp ical.Exporter) *Server {
	var (
		r        = serverutil.ErrRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, string](1024)
	)

	srvr := Server{
		detailRespCache: cache,
		planner:         p,
		syncer:          sy,
		exporter:        exp,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsHeader}),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything

	// Catalog queries
	r.HandleFuncE("/api/sessions/search", srvr.getSearch).Methods(http.MethodGet)
	r.HandleFuncE("/api/sessions/{id}", srvr.getSessionDetails).Methods(http.MethodGet)
	r.HandleFuncE("/api/filters", srvr.getFilters).Methods(http.MethodGet)
	r.HandleFuncE("/api/schedule/{day}", srvr.getSchedule).Methods(http.MethodGet)

	// Feed and agenda reads
	r.HandleFuncE("/api/feed/items", srvr.getFeedItems).Methods(http.MethodGet)
	r.HandleFuncE("/api/agenda/events", srvr.getAgendaEvents).Methods(http.MethodGet)

	// Syncs and their ledger
	r.HandleFuncE("/api/sync/feed", srvr.postSyncFeed).Methods(http.MethodPost)
	r.HandleFuncE("/api/sync/agenda", srvr.postSyncAgenda).Methods(http.MethodPost)
	r.HandleFuncE("/api/sync/all", srvr.postSyncAll).Methods(http.MethodPost)
	r.HandleFuncE("/api/sync/history", srvr.getSyncHistory).Methods(http.MethodGet)

	// Personal schedule
	r.HandleFuncE("/api/personal-events", srvr.postPersonalEvent).Methods(http.MethodPost)
	r.HandleFuncE("/api/personal-events", srvr.getPersonalEvents).Methods(http.MethodGet)
	r.HandleFuncE("/api/personal-events/{id}", srvr.deletePersonalEvent).Methods(http.MethodDelete)

	// Favorites
	r.HandleFuncE("/api/favorites", srvr.postFavorite).Methods(http.MethodPost)
	r.HandleFuncE("/api/favorites", srvr.getFavorites).Methods(http.MethodGet)
	r.HandleFuncE("/api/favorites", srvr.deleteFavorite).Methods(http.MethodDelete)
	r.HandleFuncE("/api/favorite-lists", srvr.postFavoriteList).Methods(http.MethodPost)

	// Calendar export
	r.HandleFuncE("/api/export", srvr.postExport).Methods(http.MethodPost)

	slog.Debug("configured planning server", "port", config.Port)

	return &srvr
}

// TextResponse is the envelope every operation responds with.
type TextResponse struct {
	Text string `json:"text"`
}

func (s *Server) text(w http.ResponseWriter, msg string) error {
	return serverutil.WriteJSON(w, http.StatusOK, TextResponse{Text: msg})
}

// statusErr attaches the right HTTP status to the domain sentinels so the
// handler wrapper responds with more than a 500.
func statusErr(err error) error {
	switch {
	case errors.Is(err, confplan.ErrNotFound):
		return cperrs.E(http.StatusNotFound, err)
	case errors.Is(err, confplan.ErrConflict):
		return cperrs.E(http.StatusConflict, err)
	case errors.Is(err, confplan.ErrInvalid):
		return cperrs.E(http.StatusBadRequest, err)
	}
	return err
}
