package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSubjectNotBound indicates the session has no signed-in resource owner.
var ErrSubjectNotBound = errors.New("session has no bound subject")

// BindUser associates a session with an authenticated resource owner,
// replacing any previous binding.
func (m *Manager) BindUser(ctx context.Context, sessionToken, subjectID string) error {
	sessionID, err := m.idForToken(ctx, sessionToken)
	if err != nil {
		return err
	}

	if _, err := m.db.ExecContext(ctx, `
		DELETE FROM session_user WHERE session_id = ?
	`, sessionID); err != nil {
		return fmt.Errorf("delete session_user for session %s: %w", sessionID, err)
	}

	if _, err := m.db.ExecContext(ctx, `
		INSERT INTO session_user (session_id, user_id) VALUES (?, ?)
	`, sessionID, subjectID); err != nil {
		return fmt.Errorf("insert session_user for session %s: %w", sessionID, err)
	}

	return nil
}

// LookupUser returns the resource owner bound to sessionToken, if any.
func (m *Manager) LookupUser(ctx context.Context, sessionToken string) (string, bool, error) {
	sessionID, err := m.idForToken(ctx, sessionToken)
	if err != nil {
		return "", false, err
	}

	var userID string
	err = m.db.QueryRowContext(ctx, `
		SELECT user_id FROM session_user WHERE session_id = ?
	`, sessionID).Scan(&userID)
	switch {
	case err == nil:
		return userID, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("query session_user for session %s: %w", sessionID, err)
	}
}

func (m *Manager) idForToken(ctx context.Context, sessionToken string) (string, error) {
	var id string
	err := m.db.QueryRowContext(ctx, `
		SELECT id FROM session WHERE session_token = ?
	`, sessionToken).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: unknown session token", ErrSubjectNotBound)
		}
		return "", fmt.Errorf("resolve session id for token: %w", err)
	}
	return id, nil
}
