// Package planner is the read side: queries over the cached catalog and the
// local store, plus the writes a user makes against their own plan.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/confplan/confplan/internal/confplan"
	"github.com/confplan/confplan/internal/sqlite"
)

// timeLayout is the accepted input format for personal event timestamps.
const timeLayout = "2006-01-02 15:04"

// dayDates maps weekday names to conference dates, used to filter personal
// events by day.
var dayDates = map[string]string{
	"monday":    "2025-12-01",
	"tuesday":   "2025-12-02",
	"wednesday": "2025-12-03",
	"thursday":  "2025-12-04",
	"friday":    "2025-12-05",
}

// CatalogSource serves the session catalog. force bypasses any caching.
type CatalogSource interface {
	Get(ctx context.Context, force bool) ([]confplan.Session, error)
}

type Planner struct {
	repo    sqlite.Repo
	catalog CatalogSource
}

func New(repo sqlite.Repo, catalog CatalogSource) *Planner {
	return &Planner{
		repo:    repo,
		catalog: catalog,
	}
}

// SearchQuery narrows a catalog search. Zero values mean "no filter".
type SearchQuery struct {
	Query   string
	Day     string
	Venue   string
	Level   int
	Service string
	Topic   string
	Type    string
	Area    string
	Limit   int
}

// SearchSessions filters the catalog in memory. Text filters are
// case-insensitive substring matches; day and level match exactly.
func (p *Planner) SearchSessions(ctx context.Context, q SearchQuery) ([]confplan.Session, error) {
	sessions, err := p.catalog.Get(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("error fetching catalog: %s", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []confplan.Session
	for _, s := range sessions {
		if !matches(s, q) {
			continue
		}
		results = append(results, s)
		if len(results) >= limit {
			break
		}
	}

	return results, nil
}

func matches(s confplan.Session, q SearchQuery) bool {
	if q.Day != "" && !strings.EqualFold(s.Day, q.Day) {
		return false
	}
	if q.Venue != "" && !containsFold(s.Venue, q.Venue) {
		return false
	}
	if q.Level != 0 && s.Level != q.Level {
		return false
	}
	if q.Service != "" && !anyContainsFold(s.Services, q.Service) {
		return false
	}
	if q.Topic != "" && !anyContainsFold(s.Topics, q.Topic) {
		return false
	}
	if q.Type != "" && !containsFold(s.Type, q.Type) {
		return false
	}
	if q.Area != "" && !anyContainsFold(s.Areas, q.Area) {
		return false
	}
	if q.Query != "" {
		searchable := s.Title + " " + s.Abstract + " " + strings.Join(s.Speakers, " ")
		if !containsFold(searchable, q.Query) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func anyContainsFold(list []string, substr string) bool {
	for _, s := range list {
		if containsFold(s, substr) {
			return true
		}
	}
	return false
}

// SessionDetails looks a session up by either of its identifiers. The full
// id takes precedence when a value somehow matches both.
func (p *Planner) SessionDetails(ctx context.Context, id string) (confplan.Session, error) {
	sessions, err := p.catalog.Get(ctx, false)
	if err != nil {
		return confplan.Session{}, fmt.Errorf("error fetching catalog: %s", err)
	}

	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	for _, s := range sessions {
		if s.ShortID == id {
			return s, nil
		}
	}

	return confplan.Session{}, fmt.Errorf("session %s: %w", id, confplan.ErrNotFound)
}

// Filters is every distinct value the catalog currently offers per facet.
type Filters struct {
	Days     []string
	Venues   []string
	Levels   []string
	Services []string
	Topics   []string
	Types    []string
	Areas    []string
	Roles    []string
	Features []string
}

// Filters enumerates the filterable values across the whole catalog, sorted
// and with empties dropped.
func (p *Planner) Filters(ctx context.Context) (Filters, error) {
	sessions, err := p.catalog.Get(ctx, false)
	if err != nil {
		return Filters{}, fmt.Errorf("error fetching catalog: %s", err)
	}

	days := map[string]bool{}
	venues := map[string]bool{}
	levels := map[string]bool{}
	services := map[string]bool{}
	topics := map[string]bool{}
	types := map[string]bool{}
	areas := map[string]bool{}
	roles := map[string]bool{}
	features := map[string]bool{}

	for _, s := range sessions {
		days[s.Day] = true
		venues[s.Venue] = true
		if s.Level != 0 {
			levels[fmt.Sprintf("%d - %s", s.Level, s.LevelName)] = true
		}
		types[s.Type] = true
		mark(services, s.Services)
		mark(topics, s.Topics)
		mark(areas, s.Areas)
		mark(roles, s.Roles)
		mark(features, s.Features)
	}

	return Filters{
		Days:     sortedKeys(days),
		Venues:   sortedKeys(venues),
		Levels:   sortedKeys(levels),
		Services: sortedKeys(services),
		Topics:   sortedKeys(topics),
		Types:    sortedKeys(types),
		Areas:    sortedKeys(areas),
		Roles:    sortedKeys(roles),
		Features: sortedKeys(features),
	}, nil
}

func mark(set map[string]bool, values []string) {
	for _, v := range values {
		set[v] = true
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Schedule returns a day's sessions ordered by start time, optionally
// narrowed to one venue.
func (p *Planner) Schedule(ctx context.Context, day, venue string) ([]confplan.Session, error) {
	sessions, err := p.catalog.Get(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("error fetching catalog: %s", err)
	}

	var results []confplan.Session
	for _, s := range sessions {
		if !strings.EqualFold(s.Day, day) {
			continue
		}
		if venue != "" && !containsFold(s.Venue, venue) {
			continue
		}
		results = append(results, s)
	}

	// Start times are 12-hour clock labels, which do not sort as strings
	// ("10:00 AM" lands before "9:00 AM"). Compare parsed minutes instead.
	sort.SliceStable(results, func(i, j int) bool {
		return clockMinutes(results[i].StartTime) < clockMinutes(results[j].StartTime)
	})

	return results, nil
}

// clockMinutes converts a "9:00 AM" style label to minutes past midnight.
// Labels that do not parse sort to the end of the day.
func clockMinutes(label string) int {
	t, err := time.Parse("3:04 PM", label)
	if err != nil {
		return 24 * 60
	}
	return t.Hour()*60 + t.Minute()
}

// AddFavorite bookmarks a catalog session into a list. The short id and
// title are copied onto the entry so it survives the session leaving the
// catalog.
func (p *Planner) AddFavorite(ctx context.Context, sessionID, listName, notes string, priority int) (confplan.FavoriteEntry, error) {
	s, err := p.SessionDetails(ctx, sessionID)
	if err != nil {
		return confplan.FavoriteEntry{}, err
	}

	if priority <= 0 {
		priority = 1
	}

	entry := confplan.FavoriteEntry{
		ListName:       listName,
		SessionID:      s.ID,
		SessionShortID: s.ShortID,
		SessionTitle:   s.Title,
		Notes:          notes,
		Priority:       priority,
	}
	if err := p.repo.InsertFavorite(ctx, entry); err != nil {
		return confplan.FavoriteEntry{}, err
	}

	return entry, nil
}

// Favorites lists the entries of one list, or of every list when listName is
// "all" or empty.
func (p *Planner) Favorites(ctx context.Context, listName string) ([]confplan.FavoriteSession, error) {
	if listName == "all" {
		listName = ""
	}
	return p.repo.Favorites(ctx, listName)
}

// RemoveFavorite drops a session from a list and returns its stored title.
func (p *Planner) RemoveFavorite(ctx context.Context, sessionID, listName string) (string, error) {
	entry, err := p.repo.FavoriteBySession(ctx, sessionID, listName)
	if err != nil {
		return "", err
	}
	if err := p.repo.DeleteFavorite(ctx, sessionID, listName); err != nil {
		return "", err
	}
	return entry.SessionTitle, nil
}

func (p *Planner) CreateFavoriteList(ctx context.Context, name, description string) error {
	return p.repo.InsertFavoriteList(ctx, confplan.FavoriteList{
		Name:        name,
		Description: description,
	})
}

func (p *Planner) FavoriteLists(ctx context.Context) ([]confplan.FavoriteList, error) {
	return p.repo.FavoriteLists(ctx)
}

// AddPersonalEvent validates and stores a caller-owned schedule entry.
// Timestamps must use the "YYYY-MM-DD HH:MM" layout.
func (p *Planner) AddPersonalEvent(ctx context.Context, ev confplan.PersonalEvent) (confplan.PersonalEvent, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return confplan.PersonalEvent{}, fmt.Errorf("title is required: %w", confplan.ErrInvalid)
	}
	if _, err := time.Parse(timeLayout, ev.StartDateTime); err != nil {
		return confplan.PersonalEvent{}, fmt.Errorf("start_datetime %q must use format YYYY-MM-DD HH:MM: %w", ev.StartDateTime, confplan.ErrInvalid)
	}
	if _, err := time.Parse(timeLayout, ev.EndDateTime); err != nil {
		return confplan.PersonalEvent{}, fmt.Errorf("end_datetime %q must use format YYYY-MM-DD HH:MM: %w", ev.EndDateTime, confplan.ErrInvalid)
	}
	if ev.Type == "" {
		ev.Type = "personal"
	}

	return p.repo.InsertPersonalEvent(ctx, ev)
}

// PersonalEvents lists stored personal events, optionally narrowed by
// weekday name and event type. Unknown day names apply no date filter.
func (p *Planner) PersonalEvents(ctx context.Context, day, eventType string) ([]confplan.PersonalEvent, error) {
	prefix := dayDates[strings.ToLower(day)]
	return p.repo.PersonalEvents(ctx, prefix, eventType)
}

// DeletePersonalEvent removes an event and returns its title.
func (p *Planner) DeletePersonalEvent(ctx context.Context, id int64) (string, error) {
	ev, err := p.repo.PersonalEvent(ctx, id)
	if err != nil {
		return "", err
	}
	if err := p.repo.DeletePersonalEvent(ctx, id); err != nil {
		return "", err
	}
	return ev.Title, nil
}

func (p *Planner) FeedItems(ctx context.Context, category string, limit int) ([]confplan.FeedItem, error) {
	if limit <= 0 {
		limit = 10
	}
	return p.repo.FeedItems(ctx, category, limit)
}

func (p *Planner) AgendaEvents(ctx context.Context, day, eventType string, limit int) ([]confplan.AgendaEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return p.repo.AgendaEvents(ctx, day, eventType, limit)
}
