package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sa-identity/authd/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *oauth.Client {
	return &oauth.Client{
		ID:                   "app",
		Secret:               "appsecret",
		HasSecret:            true,
		AuthorizedGrantTypes: []oauth.GrantType{oauth.GrantClientCredentials},
		AccessTokenTTL:       time.Hour,
		AllowedScopes:        []oauth.Scope{{Name: "profile"}},
	}
}

func testCapabilities(client *oauth.Client) oauth.Capabilities {
	return oauth.Capabilities{
		LoadClient: func(ctx context.Context, clientID string) (*oauth.Client, bool, error) {
			if clientID != client.ID {
				return nil, false, nil
			}
			return client, true, nil
		},
		CreateAccessToken: func(ctx context.Context, subject string, c *oauth.Client, grantType oauth.GrantType, scope []oauth.Scope, now time.Time) (string, string, int64, error) {
			return "access-token-value", "", int64(c.AccessTokenTTL.Seconds()), nil
		},
	}
}

func TestHandleToken_ClientCredentialsHappyPath(t *testing.T) {
	client := testClient()
	s := &Server{Capabilities: testCapabilities(client)}

	form := strings.NewReader("grant_type=client_credentials&scope=profile")
	req := httptest.NewRequest(http.MethodPost, "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("app", "appsecret")
	rec := httptest.NewRecorder()

	s.handleToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "access-token-value", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, "profile", body["scope"])
	assert.NotContains(t, body, "refresh_token")
}

func TestHandleToken_WrongSecretIsInvalidClient401(t *testing.T) {
	client := testClient()
	s := &Server{Capabilities: testCapabilities(client)}

	form := strings.NewReader("grant_type=client_credentials")
	req := httptest.NewRequest(http.MethodPost, "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("app", "wrong-secret")
	rec := httptest.NewRecorder()

	s.handleToken(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="authd"`)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_client", body["error"])
}

func TestHandleToken_UnsupportedGrantType(t *testing.T) {
	client := testClient()
	s := &Server{Capabilities: testCapabilities(client)}

	form := strings.NewReader("grant_type=not_a_real_grant")
	req := httptest.NewRequest(http.MethodPost, "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("app", "appsecret")
	rec := httptest.NewRecorder()

	s.handleToken(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unsupported_grant_type", body["error"])
}

func TestHandleToken_RejectsNonPost(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	rec := httptest.NewRecorder()

	s.handleToken(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
