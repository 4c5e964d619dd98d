package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearOAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OAUTH_ISSUER",
		"OAUTH_SIGNING_KEY_ALG",
		"OAUTH_SIGNING_KEY_PATH",
		"OAUTH_SIGNING_KEY_SECRET",
		"OAUTH_SIGNING_KEY_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadOAuthConfigRequiresIssuer(t *testing.T) {
	clearOAuthEnv(t)
	_, err := loadOAuthConfigFromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OAUTH_ISSUER")
}

func TestLoadOAuthConfigDefaultsToRS256(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("OAUTH_ISSUER", "https://auth.example.com/")
	t.Setenv("OAUTH_SIGNING_KEY_PATH", "/etc/sa-authd/signing.pem")

	cfg, err := loadOAuthConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, "https://auth.example.com", cfg.Issuer)
	require.Equal(t, "RS256", cfg.SigningKeyAlg)
	require.Equal(t, "/etc/sa-authd/signing.pem", cfg.SigningKeyPath)
}

func TestLoadOAuthConfigHS256RequiresSecret(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("OAUTH_ISSUER", "https://auth.example.com")
	t.Setenv("OAUTH_SIGNING_KEY_ALG", "HS256")

	_, err := loadOAuthConfigFromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OAUTH_SIGNING_KEY_SECRET")
}

func TestLoadOAuthConfigRejectsUnknownAlg(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("OAUTH_ISSUER", "https://auth.example.com")
	t.Setenv("OAUTH_SIGNING_KEY_ALG", "ES256")

	_, err := loadOAuthConfigFromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported")
}

func TestLoadAuthConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_LOGIN_PATH", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL", "")

	cfg, err := loadAuthConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, defaultAuthLoginPath, cfg.LoginPath)
	require.Equal(t, defaultAccessTokenTTL, cfg.AccessTokenTTL)
	require.Equal(t, defaultRefreshTokenTTL, cfg.RefreshTokenTTL)
}

func TestLoadAuthConfigRejectsAbsoluteLoginPath(t *testing.T) {
	t.Setenv("AUTH_LOGIN_PATH", "https://elsewhere.example.com/login")

	_, err := loadAuthConfigFromEnv()
	require.Error(t, err)
}
