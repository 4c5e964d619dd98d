package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// fakeBackend is an in-memory stand-in for every Capabilities function,
// used across the oauth package's tests. It is intentionally simple: the
// invariants under test live in the oauth package, not here.
type fakeBackend struct {
	clients        map[string]*Client
	authorizations map[string]*Authorization
	users          map[string]string // username -> password
	refreshTokens  map[string]*AccessGrant
	approve        func(subject string, client *Client, requested []Scope) ([]Scope, error)
	mintErr        error
	nextCode       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		clients:        map[string]*Client{},
		authorizations: map[string]*Authorization{},
		users:          map[string]string{},
		refreshTokens:  map[string]*AccessGrant{},
	}
}

func (f *fakeBackend) capabilities() Capabilities {
	return Capabilities{
		LoadClient: func(ctx context.Context, clientID string) (*Client, bool, error) {
			c, ok := f.clients[clientID]
			return c, ok, nil
		},
		CreateAuthorization: func(ctx context.Context, code, subjectID string, client *Client, now time.Time, scope []Scope, redirectURI, nonce string) error {
			f.authorizations[code] = &Authorization{
				SubjectID:   subjectID,
				ClientID:    client.ID,
				IssuedAt:    now,
				Scope:       scope,
				Nonce:       nonce,
				RedirectURI: redirectURI,
			}
			return nil
		},
		LoadAuthorization: func(ctx context.Context, code string) (*Authorization, bool, error) {
			a, ok := f.authorizations[code]
			if ok {
				delete(f.authorizations, code) // single-use
			}
			return a, ok, nil
		},
		AuthenticateResourceOwner: func(ctx context.Context, username, password string) (string, bool, error) {
			stored, ok := f.users[username]
			if !ok || stored != password {
				return "", false, nil
			}
			return "user:" + username, true, nil
		},
		ResourceOwnerApproval: func(ctx context.Context, subjectID string, client *Client, requested []Scope, now time.Time) ([]Scope, error) {
			if f.approve != nil {
				return f.approve(subjectID, client, requested)
			}
			return requested, nil
		},
		CreateAccessToken: func(ctx context.Context, subject string, client *Client, grantType GrantType, scope []Scope, now time.Time) (string, string, int64, error) {
			if f.mintErr != nil {
				return "", "", 0, f.mintErr
			}
			access := "at-" + client.ID
			refresh := ""
			if grantType == GrantAuthorizationCode || grantType == GrantResourceOwner {
				refresh = "rt-" + client.ID
				f.refreshTokens[refresh] = &AccessGrant{
					Subject:   subject,
					ClientID:  client.ID,
					GrantType: grantType,
					Scope:     scope,
					ExpiresAt: now.Add(client.RefreshTokenTTL),
				}
			}
			return access, refresh, int64(client.AccessTokenTTL.Seconds()), nil
		},
		CreateIdToken: func(ctx context.Context, subject string, client *Client, nonce string, now time.Time, accessToken, code string) (string, error) {
			return "idtok-" + subject, nil
		},
		DecodeRefreshToken: func(ctx context.Context, client *Client, token string) (*AccessGrant, bool, error) {
			g, ok := f.refreshTokens[token]
			return g, ok, nil
		},
		GenerateCode: func(ctx context.Context) (string, error) {
			f.nextCode++
			buf := make([]byte, 8)
			if _, err := rand.Read(buf); err != nil {
				return "", err
			}
			return hex.EncodeToString(buf), nil
		},
	}
}

var errBoom = errors.New("boom")
