package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtClient() *Client {
	return &Client{
		ID:                      "app",
		Secret:                  "appsecret",
		HasSecret:               true,
		AuthorizedGrantTypes:    []GrantType{GrantClientCredentials},
		TokenEndpointAuthMethod: AuthMethodClientSecretJWT,
		AccessTokenTTL:          time.Hour,
		AllowedScopes:           []Scope{{Name: "profile"}},
	}
}

func TestProcessTokenRequest_ClientAssertionHappyPath(t *testing.T) {
	backend := newFakeBackend()
	client := jwtClient()
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	verify := func(ctx context.Context, c *Client, assertion string) (bool, error) {
		assert.Equal(t, client, c)
		assert.Equal(t, "signed-jwt", assertion)
		return true, nil
	}

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_id":             {"app"},
		"client_assertion_type": {ClientAssertionTypeJWTBearer},
		"client_assertion":      {"signed-jwt"},
	}

	resp, err := ProcessTokenRequest(context.Background(), backend.capabilities(), verify, params, "", now)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "at-app", resp.AccessToken)
}

func TestProcessTokenRequest_ClientAssertionRejectedWhenVerifierFails(t *testing.T) {
	backend := newFakeBackend()
	client := jwtClient()
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	verify := func(ctx context.Context, c *Client, assertion string) (bool, error) {
		return false, nil
	}

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_id":             {"app"},
		"client_assertion_type": {ClientAssertionTypeJWTBearer},
		"client_assertion":      {"signed-jwt"},
	}

	_, err := ProcessTokenRequest(context.Background(), backend.capabilities(), verify, params, "", now)
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok)
	assert.Equal(t, TokenErrInvalidClient, tokenErr.Code)
}

func TestProcessTokenRequest_ClientAssertionFailsClosedWithoutVerifier(t *testing.T) {
	backend := newFakeBackend()
	client := jwtClient()
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_id":             {"app"},
		"client_assertion_type": {ClientAssertionTypeJWTBearer},
		"client_assertion":      {"signed-jwt"},
	}

	_, err := ProcessTokenRequest(context.Background(), backend.capabilities(), nil, params, "", now)
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok)
	assert.Equal(t, TokenErrInvalidClient, tokenErr.Code)
}

func TestProcessTokenRequest_ClientAssertionRejectsMalformedAssertionType(t *testing.T) {
	backend := newFakeBackend()
	client := jwtClient()
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	verify := func(ctx context.Context, c *Client, assertion string) (bool, error) {
		t.Fatal("verifier must not be invoked for an unrecognized assertion type")
		return false, nil
	}

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_id":             {"app"},
		"client_assertion_type": {"urn:unknown-assertion-type"},
		"client_assertion":      {"signed-jwt"},
	}

	_, err := ProcessTokenRequest(context.Background(), backend.capabilities(), verify, params, "", now)
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok)
	assert.Equal(t, TokenErrInvalidRequest, tokenErr.Code)
}

func TestProcessTokenRequest_ClientAssertionRejectedForClientNotRegisteredForJWTAuth(t *testing.T) {
	backend := newFakeBackend()
	client := appClient() // TokenEndpointAuthMethod is the zero value, not client_secret_jwt
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	verify := func(ctx context.Context, c *Client, assertion string) (bool, error) {
		t.Fatal("verifier must not be invoked for a client not registered for an assertion-based method")
		return false, nil
	}

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_id":             {"app"},
		"client_assertion_type": {ClientAssertionTypeJWTBearer},
		"client_assertion":      {"signed-jwt"},
	}

	_, err := ProcessTokenRequest(context.Background(), backend.capabilities(), verify, params, "", now)
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok)
	assert.Equal(t, TokenErrInvalidClient, tokenErr.Code)
}

func TestProcessTokenRequest_ClientAssertionAmbiguousWithBasicAuth(t *testing.T) {
	backend := newFakeBackend()
	client := jwtClient()
	backend.clients["app"] = client
	now := time.Unix(1400000000, 0).UTC()

	verify := func(ctx context.Context, c *Client, assertion string) (bool, error) {
		t.Fatal("verifier must not be invoked when the assertion is ambiguous with another credential source")
		return false, nil
	}

	params := Params{
		"grant_type":            {"client_credentials"},
		"client_assertion_type": {ClientAssertionTypeJWTBearer},
		"client_assertion":      {"signed-jwt"},
	}

	_, err := ProcessTokenRequest(context.Background(), backend.capabilities(), verify, params, basicAuthHeader("app", "appsecret"), now)
	require.Error(t, err)
	tokenErr, ok := err.(*TokenError)
	require.True(t, ok)
	assert.Equal(t, TokenErrInvalidRequest, tokenErr.Code)
}
