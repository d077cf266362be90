package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/confplan/confplan/internal/confplan"
)

// InsertFavorite adds a session to a list. The (list, session) pair is unique;
// a second add comes back as ErrConflict.
func (r Repo) InsertFavorite(ctx context.Context, entry confplan.FavoriteEntry) error {
	const q = `INSERT INTO favorite_sessions (list_name, session_id, session_short_id, session_title, notes, priority)
	VALUES (:list_name, :session_id, :session_short_id, :session_title, :notes, :priority);`

	_, err := r.db.NamedExecContext(ctx, q, entry)
	if isConstraintErr(err) {
		return fmt.Errorf("session already in list %s: %w", entry.ListName, confplan.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("error inserting favorite: %s", err)
	}

	return nil
}

const favoriteJoinColumns = `fs.id, fs.list_name, fs.session_id, fs.session_short_id,
	fs.session_title, fs.notes, fs.priority,
	s.start_datetime AS s_start, s.end_datetime AS s_end, s.day AS s_day,
	s.venue AS s_venue, s.room AS s_room, s.level AS s_level,
	s.abstract AS s_abstract, s.speakers AS s_speakers`

// Favorites returns the entries of one list, or of every list when listName
// is empty, each left-joined against the stored session. Entries whose
// session has vanished from the catalog still come back, with nil session
// fields.
func (r Repo) Favorites(ctx context.Context, listName string) ([]confplan.FavoriteSession, error) {
	q := `SELECT ` + favoriteJoinColumns + `
	FROM favorite_sessions fs
	LEFT JOIN sessions s ON fs.session_id = s.id`

	var args []any
	if listName != "" {
		q += ` WHERE fs.list_name = ?`
		args = append(args, listName)
	}
	q += ` ORDER BY fs.list_name, fs.priority, s.start_datetime;`

	var favorites []confplan.FavoriteSession
	if err := r.db.SelectContext(ctx, &favorites, q, args...); err != nil {
		return nil, fmt.Errorf("error selecting favorites: %s", err)
	}

	return favorites, nil
}

// FavoriteBySession finds an entry in a list by either the session's global
// id or its short id.
func (r Repo) FavoriteBySession(ctx context.Context, sessionID, listName string) (confplan.FavoriteEntry, error) {
	const q = `SELECT id, list_name, session_id, session_short_id, session_title, notes, priority
	FROM favorite_sessions
	WHERE (session_id = ? OR session_short_id = ?) AND list_name = ?;`

	var entry confplan.FavoriteEntry
	err := r.db.GetContext(ctx, &entry, q, sessionID, sessionID, listName)
	if errors.Is(err, sql.ErrNoRows) {
		return confplan.FavoriteEntry{}, confplan.ErrNotFound
	}
	if err != nil {
		return confplan.FavoriteEntry{}, fmt.Errorf("error fetching favorite: %s", err)
	}

	return entry, nil
}

// DeleteFavorite removes a session from a list, matching either id form.
func (r Repo) DeleteFavorite(ctx context.Context, sessionID, listName string) error {
	const q = `DELETE FROM favorite_sessions
	WHERE (session_id = ? OR session_short_id = ?) AND list_name = ?;`

	if _, err := r.db.ExecContext(ctx, q, sessionID, sessionID, listName); err != nil {
		return fmt.Errorf("error deleting favorite: %s", err)
	}

	return nil
}

// InsertFavoriteList creates a new named list. Names are unique; a duplicate
// comes back as ErrConflict.
func (r Repo) InsertFavoriteList(ctx context.Context, list confplan.FavoriteList) error {
	const q = `INSERT INTO favorite_lists (list_name, description) VALUES (:list_name, :description);`

	_, err := r.db.NamedExecContext(ctx, q, list)
	if isConstraintErr(err) {
		return fmt.Errorf("list %s already exists: %w", list.Name, confplan.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("error inserting favorite list: %s", err)
	}

	return nil
}

// FavoriteLists returns all lists, seeded ones included.
func (r Repo) FavoriteLists(ctx context.Context) ([]confplan.FavoriteList, error) {
	const q = `SELECT id, list_name, description FROM favorite_lists ORDER BY id;`

	var lists []confplan.FavoriteList
	if err := r.db.SelectContext(ctx, &lists, q); err != nil {
		return nil, fmt.Errorf("error selecting favorite lists: %s", err)
	}

	return lists, nil
}
