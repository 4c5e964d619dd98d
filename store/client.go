package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/stringutils"
)

// ErrClientNotFound indicates no client is registered under the given id.
var ErrClientNotFound = errors.New("client not found")

// LoadClient implements oauth.Capabilities.LoadClient.
func (s *Store) LoadClient(ctx context.Context, clientID string) (*oauth.Client, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			id,
			secret,
			name,
			authorized_grant_types,
			redirect_uris,
			allowed_scopes,
			access_token_ttl_seconds,
			refresh_token_ttl_seconds,
			token_endpoint_auth_method,
			token_endpoint_auth_alg,
			created_at,
			updated_at
		FROM client
		WHERE id = ?
	`, clientID)

	var (
		id            string
		secret        sql.NullString
		name          string
		grantTypes    string
		redirectURIs  string
		allowedScopes string
		accessTTL     int64
		refreshTTL    int64
		authMethod    string
		authAlg       sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&id, &secret, &name, &grantTypes, &redirectURIs, &allowedScopes,
		&accessTTL, &refreshTTL, &authMethod, &authAlg, &createdAt, &updatedAt)
	switch {
	case err == nil:
		client := &oauth.Client{
			ID:                      id,
			Secret:                  secret.String,
			HasSecret:               secret.Valid && secret.String != "",
			AuthorizedGrantTypes:    grantTypesFromString(grantTypes),
			RedirectURIs:            stringutils.SplitNonEmpty(redirectURIs, ","),
			AccessTokenTTL:          time.Duration(accessTTL) * time.Second,
			RefreshTokenTTL:         time.Duration(refreshTTL) * time.Second,
			AllowedScopes:           oauth.ScopesFromStrings(stringutils.SplitNonEmpty(allowedScopes, " ")),
			TokenEndpointAuthMethod: oauth.AuthMethod(authMethod),
			TokenEndpointAuthAlg:    authAlg.String,
			Name:                    name,
			CreatedAt:               createdAt,
			UpdatedAt:               updatedAt,
		}
		return client, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	default:
		return nil, false, logger.LogErr(fmt.Errorf("load client %s: %w", clientID, err))
	}
}

func grantTypesFromString(value string) []oauth.GrantType {
	names := stringutils.SplitNonEmpty(value, ",")
	out := make([]oauth.GrantType, len(names))
	for i, n := range names {
		out[i] = oauth.GrantType(n)
	}
	return out
}
