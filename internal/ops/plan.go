package ops

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/confplan/confplan/internal/confplan"
	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/confplan/confplan/internal/format"
	"github.com/confplan/confplan/internal/serverutil"
)

type CreatePersonalEventRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	Location      string `json:"location"`
	Type          string `json:"event_type"`
	Notes         string `json:"notes"`
}

func (r CreatePersonalEventRequest) Validate() error {
	var details []cperrs.Detail
	if r.Title == "" {
		details = append(details, cperrs.Detail{Field: "title", Error: "title is required"})
	}
	if r.StartDateTime == "" {
		details = append(details, cperrs.Detail{Field: "start_datetime", Error: "start_datetime is required"})
	}
	if r.EndDateTime == "" {
		details = append(details, cperrs.Detail{Field: "end_datetime", Error: "end_datetime is required"})
	}
	if len(details) > 0 {
		return cperrs.E(http.StatusBadRequest, "request was invalid", details)
	}
	return nil
}

func (s *Server) postPersonalEvent(w http.ResponseWriter, r *http.Request) error {
	req, err := serverutil.DecodeValid[CreatePersonalEventRequest](r.Body)
	if err != nil {
		return err
	}

	ev, err := s.planner.AddPersonalEvent(r.Context(), confplan.PersonalEvent{
		Title:         req.Title,
		Description:   req.Description,
		StartDateTime: req.StartDateTime,
		EndDateTime:   req.EndDateTime,
		Location:      req.Location,
		Type:          req.Type,
		Notes:         req.Notes,
	})
	if err != nil {
		return statusErr(err)
	}

	return s.text(w, format.PersonalEventAdded(ev))
}

func (s *Server) getPersonalEvents(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	events, err := s.planner.PersonalEvents(r.Context(), q.Get("day"), q.Get("type"))
	if err != nil {
		return err
	}

	return s.text(w, format.PersonalEvents(events))
}

func (s *Server) deletePersonalEvent(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return cperrs.E(http.StatusBadRequest, fmt.Errorf("id must be a number: %s", err))
	}

	title, err := s.planner.DeletePersonalEvent(r.Context(), id)
	if err != nil {
		return statusErr(err)
	}

	return s.text(w, format.PersonalEventDeleted(title))
}

type CreateFavoriteRequest struct {
	SessionID string `json:"session_id"`
	ListName  string `json:"list_name"`
	Notes     string `json:"notes"`
	Priority  int    `json:"priority"`
}

func (r CreateFavoriteRequest) Validate() error {
	var details []cperrs.Detail
	if r.SessionID == "" {
		details = append(details, cperrs.Detail{Field: "session_id", Error: "session_id is required"})
	}
	if r.ListName == "" {
		details = append(details, cperrs.Detail{Field: "list_name", Error: "list_name is required"})
	}
	if r.Priority < 0 || r.Priority > 5 {
		details = append(details, cperrs.Detail{Field: "priority", Error: "priority must be between 1 and 5"})
	}
	if len(details) > 0 {
		return cperrs.E(http.StatusBadRequest, "request was invalid", details)
	}
	return nil
}

func (s *Server) postFavorite(w http.ResponseWriter, r *http.Request) error {
	req, err := serverutil.DecodeValid[CreateFavoriteRequest](r.Body)
	if err != nil {
		return err
	}

	entry, err := s.planner.AddFavorite(r.Context(), req.SessionID, req.ListName, req.Notes, req.Priority)
	if err != nil {
		return statusErr(err)
	}

	return s.text(w, format.FavoriteAdded(entry))
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) error {
	listName := r.URL.Query().Get("list")

	favorites, err := s.planner.Favorites(r.Context(), listName)
	if err != nil {
		return err
	}

	return s.text(w, format.Favorites(listName, favorites))
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	listName := q.Get("list")
	if sessionID == "" || listName == "" {
		return cperrs.E(http.StatusBadRequest, "session_id and list are required")
	}

	title, err := s.planner.RemoveFavorite(r.Context(), sessionID, listName)
	if err != nil {
		return statusErr(err)
	}

	return s.text(w, format.FavoriteRemoved(title, listName))
}

type CreateFavoriteListRequest struct {
	ListName    string `json:"list_name"`
	Description string `json:"description"`
}

func (r CreateFavoriteListRequest) Validate() error {
	if r.ListName == "" {
		return cperrs.E(http.StatusBadRequest, "request was invalid", cperrs.Detail{
			Field: "list_name",
			Error: "list_name is required",
		})
	}
	return nil
}

func (s *Server) postFavoriteList(w http.ResponseWriter, r *http.Request) error {
	req, err := serverutil.DecodeValid[CreateFavoriteListRequest](r.Body)
	if err != nil {
		return err
	}

	if err := s.planner.CreateFavoriteList(r.Context(), req.ListName, req.Description); err != nil {
		return statusErr(err)
	}

	return s.text(w, format.FavoriteListCreated(req.ListName, req.Description))
}

type ExportRequest struct {
	ListName        string `json:"list_name"`
	IncludePersonal *bool  `json:"include_personal"`
	Filename        string `json:"filename"`
}

func (r ExportRequest) Validate() error {
	if strings.ContainsAny(r.Filename, "/\\") {
		return cperrs.E(http.StatusBadRequest, "request was invalid", cperrs.Detail{
			Field: "filename",
			Error: "filename must not contain path separators",
		})
	}
	return nil
}

func (s *Server) postExport(w http.ResponseWriter, r *http.Request) error {
	req, err := serverutil.DecodeValid[ExportRequest](r.Body)
	if err != nil {
		return err
	}

	listName := req.ListName
	if listName == "" {
		listName = "all"
	}
	filename := req.Filename
	if filename == "" {
		filename = "conference_schedule"
	}
	includePersonal := req.IncludePersonal == nil || *req.IncludePersonal

	favorites, err := s.planner.Favorites(r.Context(), listName)
	if err != nil {
		return err
	}

	var personal []confplan.PersonalEvent
	if includePersonal {
		personal, err = s.planner.PersonalEvents(r.Context(), "", "")
		if err != nil {
			return err
		}
	}

	path, count, err := s.exporter.Export(favorites, personal, listName, filename)
	if err != nil {
		return err
	}

	return s.text(w, format.Exported(path, count, listName, includePersonal))
}
