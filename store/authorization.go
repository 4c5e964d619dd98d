package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/stringutils"
)

// CreateAuthorization implements oauth.Capabilities.CreateAuthorization.
func (s *Store) CreateAuthorization(ctx context.Context, code, subjectID string, client *oauth.Client, now time.Time, scope []oauth.Scope, redirectURI, nonce string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authorization (code, subject_id, client_id, scope, nonce, redirect_uri, issued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		code,
		subjectID,
		client.ID,
		stringutils.JoinNonEmpty(oauth.ScopesToStrings(scope), " "),
		stringutils.NullIfBlank(nonce),
		redirectURI,
		now,
	)
	if err != nil {
		return logger.LogErr(fmt.Errorf("insert authorization for client %s: %w", client.ID, err))
	}
	return nil
}

// LoadAuthorization implements oauth.Capabilities.LoadAuthorization. It
// consumes the code atomically: the UPDATE only succeeds for a row whose
// consumed_at is still NULL, so a second concurrent call for the same code
// always observes zero rows affected. Marking the row consumed rather than
// deleting it keeps the issued_at/scope history around for auditing.
func (s *Store) LoadAuthorization(ctx context.Context, code string) (*oauth.Authorization, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, logger.LogErr(fmt.Errorf("begin authorization consume transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	var (
		subjectID   string
		clientID    string
		scope       string
		nonce       sql.NullString
		redirectURI string
		issuedAt    time.Time
	)

	err = tx.QueryRowContext(ctx, `
		SELECT subject_id, client_id, scope, nonce, redirect_uri, issued_at
		FROM authorization
		WHERE code = ? AND consumed_at IS NULL
	`, code).Scan(&subjectID, &clientID, &scope, &nonce, &redirectURI, &issuedAt)
	switch {
	case err == nil:
		// fall through to the consuming UPDATE below
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	default:
		return nil, false, logger.LogErr(fmt.Errorf("load authorization %s: %w", code, err))
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE authorization
		SET consumed_at = ?
		WHERE code = ? AND consumed_at IS NULL
	`, time.Now().UTC(), code)
	if err != nil {
		return nil, false, logger.LogErr(fmt.Errorf("consume authorization %s: %w", code, err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, logger.LogErr(fmt.Errorf("check consumed rows for authorization %s: %w", code, err))
	}
	if affected == 0 {
		// Another request consumed the code between our SELECT and UPDATE.
		return nil, false, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, false, logger.LogErr(fmt.Errorf("commit authorization consume for %s: %w", code, err))
	}

	return &oauth.Authorization{
		SubjectID:   subjectID,
		ClientID:    clientID,
		IssuedAt:    issuedAt,
		Scope:       oauth.ScopesFromStrings(stringutils.SplitNonEmpty(scope, " ")),
		Nonce:       nonce.String,
		RedirectURI: redirectURI,
	}, true, nil
}

// GenerateCode implements oauth.Capabilities.GenerateCode: 32 random bytes
// (256 bits of entropy), hex encoded so the wire value stays URL-safe
// without percent-escaping.
func (s *Store) GenerateCode(_ context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", logger.LogErr(fmt.Errorf("generate random code: %w", err))
	}
	return hex.EncodeToString(buf), nil
}
