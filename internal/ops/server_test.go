package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/confplan/confplan/internal/confplan"
	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/confplan/confplan/internal/ical"
	"github.com/confplan/confplan/internal/migrations"
	"github.com/confplan/confplan/internal/planner"
	"github.com/confplan/confplan/internal/rss"
	"github.com/confplan/confplan/internal/sqlite"
	"github.com/confplan/confplan/internal/syncer"
)

type stubCatalog struct {
	sessions []confplan.Session
}

func (s stubCatalog) Get(ctx context.Context, force bool) ([]confplan.Session, error) {
	return s.sessions, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	dbx.SetMaxOpenConns(1)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, migrations.Run(dbx))

	repo := sqlite.New(dbx)
	p := planner.New(repo, stubCatalog{sessions: []confplan.Session{
		{
			ID: "id-1", ShortID: "SVS201", Title: "Serverless patterns",
			Day: "Monday", Venue: "Venetian", Level: 200, Type: "Breakout Session",
			StartTime: "9:00 AM",
		},
	}})
	sy := syncer.New(repo, nil, nil, nil)

	return NewServer(ServerConfig{Port: 0, CorsHeader: "*"}, p, sy, ical.New(t.TempDir()))
}

func TestGetSearch(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodGet, "/api/sessions/search?day=Monday", nil)
		rec = httptest.NewRecorder()
		s   = newTestServer(t)
	)

	require.NoError(t, s.getSearch(rec, req))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SVS201")
}

func TestGetSearch_BadLevel(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodGet, "/api/sessions/search?level=advanced", nil)
		rec = httptest.NewRecorder()
		s   = newTestServer(t)
	)

	err := s.getSearch(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
}

func TestGetSessionDetails_NotFound(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
		rec = httptest.NewRecorder()
		s   = newTestServer(t)
	)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})

	err := s.getSessionDetails(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
}

func TestGetSessionDetails_CachesRendering(t *testing.T) {
	var (
		req = httptest.NewRequest(http.MethodGet, "/api/sessions/SVS201", nil)
		s   = newTestServer(t)
	)
	req = mux.SetURLVars(req, map[string]string{"id": "SVS201"})

	rec := httptest.NewRecorder()
	require.NoError(t, s.getSessionDetails(rec, req))
	first := rec.Body.String()

	_, cached := s.detailRespCache.Get("SVS201")
	assert.True(t, cached)

	rec = httptest.NewRecorder()
	require.NoError(t, s.getSessionDetails(rec, req))
	assert.Equal(t, first, rec.Body.String())
}

func TestPostPersonalEvent_RejectsBadTimestamp(t *testing.T) {
	var (
		body = `{"title": "Dinner", "start_datetime": "tonight", "end_datetime": "2025-12-02 21:00"}`
		req  = httptest.NewRequest(http.MethodPost, "/api/personal-events", strings.NewReader(body))
		rec  = httptest.NewRecorder()
		s    = newTestServer(t)
	)

	err := s.postPersonalEvent(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
}

func TestPostFavorite_DuplicateConflicts(t *testing.T) {
	s := newTestServer(t)

	body := `{"session_id": "SVS201", "list_name": "plan_a", "priority": 2}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(body))
	require.NoError(t, s.postFavorite(rec, req))
	assert.Contains(t, rec.Body.String(), "SVS201")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(body))
	err := s.postFavorite(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusConflict, serr.Status)
}

func TestPostFavorite_InvalidPriority(t *testing.T) {
	var (
		body = `{"session_id": "SVS201", "list_name": "plan_a", "priority": 9}`
		req  = httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(body))
		rec  = httptest.NewRecorder()
		s    = newTestServer(t)
	)

	err := s.postFavorite(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
}

func TestPostSyncFeed_SurfacesUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	dbx, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	dbx.SetMaxOpenConns(1)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, migrations.Run(dbx))

	repo := sqlite.New(dbx)
	s := NewServer(ServerConfig{Port: 0, CorsHeader: "*"},
		planner.New(repo, stubCatalog{}),
		syncer.New(repo, nil, rss.NewClient(upstream.URL), nil),
		ical.New(t.TempDir()),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync/feed", nil)
	handlerErr := s.postSyncFeed(rec, req)
	require.Error(t, handlerErr)

	// The caller gets the cause, not a blanket internal error.
	var serr *cperrs.Error
	require.ErrorAs(t, handlerErr, &serr)
	assert.Equal(t, http.StatusBadGateway, serr.Status)
	assert.Contains(t, serr.Err.Error(), "error syncing feed")
}

func TestPostExport_RejectsPathSeparators(t *testing.T) {
	var (
		body = `{"filename": "../../etc/cron"}`
		req  = httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
		rec  = httptest.NewRecorder()
		s    = newTestServer(t)
	)

	err := s.postExport(rec, req)
	require.Error(t, err)

	var serr *cperrs.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
}
