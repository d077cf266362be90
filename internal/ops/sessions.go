package ops

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/confplan/confplan/internal/format"
	"github.com/confplan/confplan/internal/planner"
)

func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	query := planner.SearchQuery{
		Query:   q.Get("query"),
		Day:     q.Get("day"),
		Venue:   q.Get("venue"),
		Service: q.Get("service"),
		Topic:   q.Get("topic"),
		Type:    q.Get("type"),
		Area:    q.Get("area"),
	}
	if raw := q.Get("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return cperrs.E(http.StatusBadRequest, fmt.Errorf("level must be a number: %s", err))
		}
		query.Level = level
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return cperrs.E(http.StatusBadRequest, fmt.Errorf("limit must be a number: %s", err))
		}
		query.Limit = limit
	}

	sessions, err := s.planner.SearchSessions(r.Context(), query)
	if err != nil {
		return err
	}

	return s.text(w, format.Sessions(sessions))
}

func (s *Server) getSessionDetails(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	if cached, ok := s.detailRespCache.Get(id); ok {
		return s.text(w, cached)
	}

	session, err := s.planner.SessionDetails(r.Context(), id)
	if err != nil {
		return statusErr(err)
	}

	rendered := format.SessionDetails(session)
	s.detailRespCache.Add(id, rendered)

	return s.text(w, rendered)
}

func (s *Server) getFilters(w http.ResponseWriter, r *http.Request) error {
	filters, err := s.planner.Filters(r.Context())
	if err != nil {
		return err
	}

	facet := r.URL.Query().Get("type")
	if facet == "" || facet == "all" {
		return s.text(w, format.Filters(filters))
	}

	values, ok := facetValues(filters, facet)
	if !ok {
		return cperrs.E(http.StatusBadRequest, fmt.Errorf("unknown filter type %q", facet))
	}

	return s.text(w, format.FilterValues(facet, values))
}

func facetValues(f planner.Filters, name string) ([]string, bool) {
	switch name {
	case "days":
		return f.Days, true
	case "venues":
		return f.Venues, true
	case "levels":
		return f.Levels, true
	case "services":
		return f.Services, true
	case "topics":
		return f.Topics, true
	case "types":
		return f.Types, true
	case "areas_of_interest":
		return f.Areas, true
	case "roles":
		return f.Roles, true
	case "features":
		return f.Features, true
	}
	return nil, false
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) error {
	day := mux.Vars(r)["day"]
	venue := r.URL.Query().Get("venue")

	sessions, err := s.planner.Schedule(r.Context(), day, venue)
	if err != nil {
		return err
	}

	return s.text(w, format.Schedule(day, venue, sessions))
}
