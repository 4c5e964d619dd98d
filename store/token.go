package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/stringutils"
)

// refreshableGrants carries a refresh token; client_credentials issues an
// access token only, since there is no resource owner session to refresh.
// GrantRefreshToken itself never appears as grantType here: a refresh
// grant's CreateAccessToken call always carries the original grant's type
// (oauth.ProcessTokenRequest's handleRefreshTokenGrant sets EffectiveType
// to grant.GrantType, not GrantRefreshToken), so rotating a refresh token
// re-evaluates against whichever of these two entries issued it.
var refreshableGrants = map[oauth.GrantType]bool{
	oauth.GrantAuthorizationCode: true,
	oauth.GrantResourceOwner:     true,
}

// CreateAccessToken implements oauth.Capabilities.CreateAccessToken across
// all five grant types, issuing a refresh token only for the two grants
// that have a resource-owner session to refresh.
func (s *Store) CreateAccessToken(ctx context.Context, subject string, client *oauth.Client, grantType oauth.GrantType, scope []oauth.Scope, now time.Time) (string, string, int64, error) {
	accessToken, err := randomOpaqueToken()
	if err != nil {
		return "", "", 0, logger.LogErr(fmt.Errorf("generate access token: %w", err))
	}

	ttl := client.AccessTokenTTL

	var refreshToken string
	if refreshableGrants[grantType] {
		refreshToken, err = randomOpaqueToken()
		if err != nil {
			return "", "", 0, logger.LogErr(fmt.Errorf("generate refresh token: %w", err))
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO access_grant (id, refresh_token_hash, subject, client_id, grant_type, scope, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			uuid.NewString(),
			hashToken(refreshToken),
			stringutils.NullIfBlank(subject),
			client.ID,
			string(grantType),
			stringutils.JoinNonEmpty(oauth.ScopesToStrings(scope), " "),
			now.Add(client.RefreshTokenTTL),
			now,
		)
		if err != nil {
			return "", "", 0, logger.LogErr(fmt.Errorf("insert access grant for client %s: %w", client.ID, err))
		}
	}

	return accessToken, refreshToken, int64(ttl.Seconds()), nil
}

// DecodeRefreshToken implements oauth.Capabilities.DecodeRefreshToken. The
// presented token is hashed and looked up by that hash; the raw refresh
// token value is never persisted.
func (s *Store) DecodeRefreshToken(ctx context.Context, client *oauth.Client, token string) (*oauth.AccessGrant, bool, error) {
	var (
		subject   sql.NullString
		clientID  string
		grantType string
		scope     string
		expiresAt time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT subject, client_id, grant_type, scope, expires_at
		FROM access_grant
		WHERE refresh_token_hash = ?
	`, hashToken(token)).Scan(&subject, &clientID, &grantType, &scope, &expiresAt)
	switch {
	case err == nil:
		// fall through
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	default:
		return nil, false, logger.LogErr(fmt.Errorf("load access grant: %w", err))
	}

	return &oauth.AccessGrant{
		Subject:   subject.String,
		ClientID:  clientID,
		GrantType: oauth.GrantType(grantType),
		Scope:     oauth.ScopesFromStrings(stringutils.SplitNonEmpty(scope, " ")),
		ExpiresAt: expiresAt,
	}, true, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
