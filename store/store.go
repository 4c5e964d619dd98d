// Package store implements the oauth.Capabilities interfaces against MySQL,
// covering the full client/scope/grant-type matrix oauth.Capabilities
// describes.
package store

import "database/sql"

// Store provides database-backed operations needed by the OAuth core.
type Store struct {
	db *sql.DB
}

// NewStore constructs a Store backed by the given sql.DB.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
