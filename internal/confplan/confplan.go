// Package confplan holds the domain types shared between the sync engine,
// the store, and the read-side planner.
package confplan

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrConflict = errors.New("resource already exists")
	ErrNotFound = errors.New("resource not found")
	ErrInvalid  = errors.New("invalid input")
)

// StringList is a []string stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("error encoding string list: %s", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), l)
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, l)
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

type (
	// Session is one catalog session. Timestamps are kept in the source's own
	// string formats; nothing downstream needs them as time values except the
	// calendar exporter, which parses on demand.
	Session struct {
		ID            string     `db:"id"`
		ShortID       string     `db:"short_id"`
		Title         string     `db:"title"`
		Abstract      string     `db:"abstract"`
		StartDateTime string     `db:"start_datetime"`
		EndDateTime   string     `db:"end_datetime"`
		Day           string     `db:"day"`
		Venue         string     `db:"venue"`
		Room          string     `db:"room"`
		Level         int        `db:"level"`
		Type          string     `db:"type"`
		Speakers      StringList `db:"speakers"`
		Services      StringList `db:"services"`
		Topics        StringList `db:"topics"`
		Areas         StringList `db:"areas_of_interest"`
		LastModified  string     `db:"last_modified"`

		// Carried only in the cached catalog, never persisted.
		StartTime       string     `db:"-"`
		EndTime         string     `db:"-"`
		LevelName       string     `db:"-"`
		SeatCapacity    int        `db:"-"`
		Roles           StringList `db:"-"`
		Features        StringList `db:"-"`
		SpeakerProfiles []Speaker  `db:"-"`
	}

	// Speaker is a session speaker as published by the catalog.
	Speaker struct {
		Name    string
		Company string
	}

	// FeedItem is one entry from the update feed. Items are immutable once
	// stored: an already-seen guid is never updated.
	FeedItem struct {
		GUID        string `db:"guid"`
		Title       string `db:"title"`
		Description string `db:"description"`
		Link        string `db:"link"`
		PubDate     string `db:"pub_date"`
		Category    string `db:"category"`
		CreatedAt   string `db:"created_at"`
	}

	// AgendaEvent is one event reconstructed from the scraped agenda page.
	// The source has no stable identifiers, so rows only live until the next
	// agenda sync replaces them.
	AgendaEvent struct {
		ID          int64  `db:"id"`
		Date        string `db:"date"`
		Time        string `db:"time"`
		Title       string `db:"title"`
		Description string `db:"description"`
		Location    string `db:"location"`
		Duration    string `db:"duration"`
		Type        string `db:"event_type"`
	}

	// SyncRecord is the ledger entry for one sync attempt, success or failure.
	SyncRecord struct {
		ID           int64  `db:"id"`
		Source       string `db:"source"`
		Kind         string `db:"sync_type"`
		Processed    int    `db:"items_processed"`
		New          int    `db:"items_new"`
		Updated      int    `db:"items_updated"`
		Status       string `db:"status"`
		ErrorMessage string `db:"error_message"`
		Timestamp    string `db:"sync_timestamp"`
	}

	// PersonalEvent is a caller-owned schedule entry, unrelated to any session.
	PersonalEvent struct {
		ID            int64  `db:"id"`
		Title         string `db:"title"`
		Description   string `db:"description"`
		StartDateTime string `db:"start_datetime"`
		EndDateTime   string `db:"end_datetime"`
		Location      string `db:"location"`
		Type          string `db:"event_type"`
		Notes         string `db:"notes"`
	}

	// FavoriteList is a named collection of favorite entries.
	FavoriteList struct {
		ID          int64  `db:"id"`
		Name        string `db:"list_name"`
		Description string `db:"description"`
	}

	// FavoriteEntry references a session from a list. The short id and title
	// are denormalized on purpose: the entry must stay displayable even after
	// the session drops out of the catalog.
	FavoriteEntry struct {
		ID             int64  `db:"id"`
		ListName       string `db:"list_name"`
		SessionID      string `db:"session_id"`
		SessionShortID string `db:"session_short_id"`
		SessionTitle   string `db:"session_title"`
		Notes          string `db:"notes"`
		Priority       int    `db:"priority"`
	}

	// FavoriteSession is a favorite entry left-joined against the stored
	// session. The session side is nil when the session no longer exists.
	FavoriteSession struct {
		FavoriteEntry

		SessionStart *string     `db:"s_start"`
		SessionEnd   *string     `db:"s_end"`
		SessionDay   *string     `db:"s_day"`
		SessionVenue *string     `db:"s_venue"`
		SessionRoom  *string     `db:"s_room"`
		SessionLevel *int        `db:"s_level"`
		Abstract     *string     `db:"s_abstract"`
		Speakers     *StringList `db:"s_speakers"`
	}

	// Reconciliation counts the outcome of merging one source batch.
	Reconciliation struct {
		Processed int
		New       int
		Updated   int
	}
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	SourceCatalog = "catalog"
	SourceFeed    = "rss"
	SourceAgenda  = "agenda"
)
