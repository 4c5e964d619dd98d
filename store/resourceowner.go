package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
)

// AuthenticateResourceOwner implements oauth.Capabilities.AuthenticateResourceOwner
// for the password grant, checking the presented password against the
// stored bcrypt hash.
func (s *Store) AuthenticateResourceOwner(ctx context.Context, username, password string) (string, bool, error) {
	var (
		userID string
		hash   string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM resource_owner
		WHERE username = ?
	`, username).Scan(&userID, &hash)
	switch {
	case err == nil:
		// fall through to the bcrypt check below
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	default:
		return "", false, logger.LogErr(fmt.Errorf("load resource owner %s: %w", username, err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", false, nil
	}
	return userID, true, nil
}

// CreateResourceOwner registers a resource owner with a bcrypt-hashed
// password. It is admin/test plumbing, not a capability the core invokes.
func (s *Store) CreateResourceOwner(ctx context.Context, id, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return logger.LogErr(fmt.Errorf("hash password for %s: %w", username, err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resource_owner (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, id, username, string(hash), time.Now().UTC())
	if err != nil {
		return logger.LogErr(fmt.Errorf("insert resource owner %s: %w", username, err))
	}
	return nil
}

// ResourceOwnerApproval implements oauth.Capabilities.ResourceOwnerApproval.
// There is no consent UI; sa-authd treats every registered client as
// pre-approved for its full allowed scope set, and simply narrows the
// grant to the intersection of what was requested and what the client is
// allowed to request.
func (s *Store) ResourceOwnerApproval(_ context.Context, _ string, client *oauth.Client, requested []oauth.Scope, _ time.Time) ([]oauth.Scope, error) {
	granted := make([]oauth.Scope, 0, len(requested))
	for _, sc := range requested {
		if oauth.ContainsScope(client.AllowedScopes, sc.Name) {
			granted = append(granted, sc)
		}
	}
	return granted, nil
}
