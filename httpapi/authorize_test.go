package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sa-identity/authd/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizeTestClient() *oauth.Client {
	return &oauth.Client{
		ID:                   "app",
		AuthorizedGrantTypes: []oauth.GrantType{oauth.GrantAuthorizationCode},
		RedirectURIs:         []string{"https://app.example.com/callback"},
		AllowedScopes:        []oauth.Scope{{Name: "profile"}},
	}
}

func authorizeTestCapabilities(client *oauth.Client) oauth.Capabilities {
	return oauth.Capabilities{
		LoadClient: func(ctx context.Context, clientID string) (*oauth.Client, bool, error) {
			if clientID != client.ID {
				return nil, false, nil
			}
			return client, true, nil
		},
		CreateAuthorization: func(ctx context.Context, code, subjectID string, c *oauth.Client, now time.Time, scope []oauth.Scope, redirectURI, nonce string) error {
			return nil
		},
		ResourceOwnerApproval: func(ctx context.Context, subjectID string, c *oauth.Client, requested []oauth.Scope, now time.Time) ([]oauth.Scope, error) {
			return requested, nil
		},
		GenerateCode: func(ctx context.Context) (string, error) {
			return "generated-code", nil
		},
	}
}

func TestHandleAuthorize_RedirectsToLoginWhenUnauthenticated(t *testing.T) {
	s := &Server{
		LoginPath: "/login",
		SessionSubject: func(ctx context.Context, token string) (string, bool, error) {
			return "", false, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/authorize?client_id=app&response_type=code", nil)
	rec := httptest.NewRecorder()

	s.handleAuthorize(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/login?return_to="))

	parsed, err := url.Parse(loc)
	require.NoError(t, err)
	returnTo := parsed.Query().Get("return_to")
	assert.Equal(t, "/authorize?client_id=app&response_type=code", returnTo)
}

func TestHandleAuthorize_HappyPathRedirectsWithCode(t *testing.T) {
	client := authorizeTestClient()
	s := &Server{
		Capabilities: authorizeTestCapabilities(client),
		SessionSubject: func(ctx context.Context, token string) (string, bool, error) {
			return "user-1", true, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/authorize?client_id=app&response_type=code&state=xyz", nil)
	rec := httptest.NewRecorder()

	s.handleAuthorize(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "generated-code", loc.Query().Get("code"))
	assert.Equal(t, "xyz", loc.Query().Get("state"))
}

func TestHandleAuthorize_EvilClientErrorDoesNotRedirect(t *testing.T) {
	s := &Server{
		Capabilities: oauth.Capabilities{
			LoadClient: func(ctx context.Context, clientID string) (*oauth.Client, bool, error) {
				return nil, false, nil
			},
		},
		SessionSubject: func(ctx context.Context, token string) (string, bool, error) {
			return "user-1", true, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/authorize?client_id=unknown&response_type=code", nil)
	rec := httptest.NewRecorder()

	s.handleAuthorize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestHandleAuthorize_AuthorizationErrorRedirectsWithErrorCode(t *testing.T) {
	client := authorizeTestClient()
	s := &Server{
		Capabilities: authorizeTestCapabilities(client),
		SessionSubject: func(ctx context.Context, token string) (string, bool, error) {
			return "user-1", true, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/authorize?client_id=app&response_type=token&state=s1", nil)
	rec := httptest.NewRecorder()

	s.handleAuthorize(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "unsupported_response_type", loc.Query().Get("error"))
	assert.Equal(t, "s1", loc.Query().Get("state"))
}

func TestHandleAuthorize_RejectsUnknownMethod(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodDelete, "/authorize", nil)
	rec := httptest.NewRecorder()

	s.handleAuthorize(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
