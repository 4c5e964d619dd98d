package oauth

import (
	"context"
	"time"
)

// Capabilities is the set of side-effecting operations the core borrows
// from its caller. Every suspension point in both processors is one of
// these calls; the struct-of-funcs shape keeps the oauth package itself
// free of storage, crypto, or transport dependencies.
type Capabilities struct {
	// LoadClient loads a registered client by id. ok is false if no such
	// client exists.
	LoadClient func(ctx context.Context, clientID string) (client *Client, ok bool, err error)

	// CreateAuthorization persists a freshly issued authorization code. nonce
	// is the OpenID nonce supplied on the authorize request, if any; it must
	// be echoed back by LoadAuthorization so CreateIdToken can include it.
	CreateAuthorization func(ctx context.Context, code, subjectID string, client *Client, now time.Time, scope []Scope, redirectURI, nonce string) error

	// LoadAuthorization looks up a persisted authorization by its code. ok
	// is false if the code is unknown or already consumed; expiry is checked
	// by ProcessTokenRequest against IssuedAt, not here. Implementations must make this single-use: a second call for the same
	// code after a first successful load must return ok=false.
	LoadAuthorization func(ctx context.Context, code string) (authz *Authorization, ok bool, err error)

	// AuthenticateResourceOwner verifies a resource owner's credentials for
	// the password grant. ok is false on any authentication failure.
	AuthenticateResourceOwner func(ctx context.Context, username, password string) (subjectID string, ok bool, err error)

	// ResourceOwnerApproval asks the resource owner (already authenticated
	// by the surrounding adapter) which of the requested scopes to grant.
	// The returned set may be narrower than requested but must be a subset
	// of client.AllowedScopes.
	ResourceOwnerApproval func(ctx context.Context, subjectID string, client *Client, requested []Scope, now time.Time) (granted []Scope, err error)

	// CreateAccessToken mints an access token (and, for grant types that
	// carry one, a refresh token) for the given subject/client/grant/scope.
	// subject is empty for client-credentials grants.
	CreateAccessToken func(ctx context.Context, subject string, client *Client, grantType GrantType, scope []Scope, now time.Time) (accessToken string, refreshToken string, ttlSeconds int64, err error)

	// CreateIdToken mints an OpenID Connect ID token. accessToken and code
	// are optional hash inputs for at_hash/c_hash claims; either may be empty.
	CreateIdToken func(ctx context.Context, subject string, client *Client, nonce string, now time.Time, accessToken, code string) (idToken string, err error)

	// DecodeRefreshToken looks up a previously minted refresh token and
	// returns its grant, with the grant's true ClientID populated whether
	// or not it matches client. ok is false only if the token is malformed
	// or unknown; the caller is responsible for rejecting a grant issued to
	// a different client.
	DecodeRefreshToken func(ctx context.Context, client *Client, token string) (grant *AccessGrant, ok bool, err error)

	// GenerateCode produces fresh opaque bytes with at least 64 bits of
	// entropy, URL-safe encoded.
	GenerateCode func(ctx context.Context) (code string, err error)
}
