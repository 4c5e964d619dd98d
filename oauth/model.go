// Package oauth implements the OAuth 2.0 authorization and token endpoints
// described by RFC 6749 and the OpenID Connect Core 1.0 ID token extension.
// Every side effect — loading a client, persisting an authorization,
// minting a token, generating a code — is routed through the Capabilities
// struct injected by the caller, so the package itself holds no state and
// performs no I/O.
package oauth

import "time"

// GrantType is one of the five grant types a client may be authorized for.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantImplicit          GrantType = "implicit"
	GrantResourceOwner     GrantType = "password"
	GrantClientCredentials GrantType = "client_credentials"
	GrantRefreshToken      GrantType = "refresh_token"
)

// ResponseType is the artifact requested of the authorization endpoint.
type ResponseType string

const (
	ResponseTypeCode  ResponseType = "code"
	ResponseTypeToken ResponseType = "token"
)

// AuthMethod is how a client authenticates itself at the token endpoint.
type AuthMethod string

const (
	AuthMethodClientSecretBasic AuthMethod = "client_secret_basic"
	AuthMethodClientSecretPost  AuthMethod = "client_secret_post"
	AuthMethodClientSecretJWT   AuthMethod = "client_secret_jwt"
	AuthMethodPrivateKeyJWT     AuthMethod = "private_key_jwt"
	AuthMethodNone              AuthMethod = "none"
)

// ClientAssertionType is the literal value required in client_assertion_type
// when a client authenticates with a signed JWT.
const ClientAssertionTypeJWTBearer = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// AuthorizationCodeTTL is the fixed lifetime of an authorization code.
const AuthorizationCodeTTL = 300 * time.Second

// BearerTokenType is the literal token_type every access token response carries.
const BearerTokenType = "bearer"

// Scope is a single requested or granted capability. The predefined OpenID
// marker triggers ID token issuance; anything else is an opaque custom name.
type Scope struct {
	Name string
}

// OpenIDScope is the well-known scope that requests an OpenID Connect ID token.
const OpenIDScope = "openid"

// IsOpenID reports whether this scope is the special OpenID marker.
func (s Scope) IsOpenID() bool {
	return s.Name == OpenIDScope
}

// ScopesToStrings flattens a scope list into its wire names, preserving order.
func ScopesToStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = s.Name
	}
	return out
}

// ScopesFromStrings builds a scope list from wire names, preserving order.
func ScopesFromStrings(names []string) []Scope {
	out := make([]Scope, len(names))
	for i, n := range names {
		out[i] = Scope{Name: n}
	}
	return out
}

// ContainsScope reports whether name appears among scopes.
func ContainsScope(scopes []Scope, name string) bool {
	for _, s := range scopes {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Client is a registered OAuth application. The core borrows an immutable
// snapshot for the duration of one request; the registry that owns the
// durable record lives behind the LoadClient capability.
type Client struct {
	ID                      string
	Secret                  string
	HasSecret               bool
	AuthorizedGrantTypes    []GrantType
	RedirectURIs            []string
	AccessTokenTTL          time.Duration
	RefreshTokenTTL         time.Duration
	AllowedScopes           []Scope
	TokenEndpointAuthMethod AuthMethod
	TokenEndpointAuthAlg    string

	// Name is informational only; the core never branches on it.
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasGrantType reports whether gt is one of the client's authorized grant types.
func (c *Client) HasGrantType(gt GrantType) bool {
	for _, g := range c.AuthorizedGrantTypes {
		if g == gt {
			return true
		}
	}
	return false
}

// DefaultRedirectURI returns the client's first registered redirect URI, or
// "" if the client has none.
func (c *Client) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}

// HasRedirectURI reports whether uri exactly matches one of the client's
// registered redirect URIs.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// Authorization is the persisted record created when the authorization
// endpoint issues a code. It is looked up exactly once by the token endpoint;
// implementations of the CreateAuthorization/LoadAuthorization capabilities
// must make it single-use, by deleting it or marking it consumed on load.
type Authorization struct {
	SubjectID   string
	ClientID    string
	IssuedAt    time.Time
	Scope       []Scope
	Nonce       string
	RedirectURI string
}

// AccessGrant is the metadata carried inside a refresh token. Subject is
// empty for client-credentials grants, which have no resource owner.
type AccessGrant struct {
	Subject   string
	ClientID  string
	GrantType GrantType
	Scope     []Scope
	ExpiresAt time.Time
}

// AccessTokenResponse is the JSON body returned from a successful token request.
type AccessTokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	IDToken      string
	RefreshToken string
	Scope        []Scope
}
