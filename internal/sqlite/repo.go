// Package sqlite implements the local store over the seven planner tables.
package sqlite

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

// Repo represents the surface for interacting with the local store. Each
// method opens one logical unit of work; batch writers wrap it in a single
// transaction.
type Repo struct {
	db *sqlx.DB
}

// New creates a new instance of Repo.
func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// sqlite primary/unique key violations come back as extended code 2067.
// Classified here so callers branch on the sentinel, never on message text.
func isConstraintErr(err error) bool {
	sqliteErr := &sqlite.Error{}
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == 2067
}
