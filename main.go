package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/sa-identity/authd/config"
	"github.com/sa-identity/authd/db"
	"github.com/sa-identity/authd/httpapi"
	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/oauthjwt"
	"github.com/sa-identity/authd/session"
	"github.com/sa-identity/authd/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(fmt.Errorf("load config: %w", err))
	}

	sqlDB, err := db.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Errorf("init db: %w", err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.LogErr(fmt.Errorf("close db: %w", err))
		}
	}()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		logger.Fatal(fmt.Errorf("apply migrations: %w", err))
	}

	sessionManager := session.NewManager(sqlDB)

	server, err := buildServer(cfg, sqlDB, sessionManager)
	if err != nil {
		logger.Fatal(fmt.Errorf("wire http server: %w", err))
	}

	log.Println("listening on :8080")
	if err := http.ListenAndServe(":8080", server.Mux()); err != nil {
		logger.Fatal(fmt.Errorf("http server failed: %w", err))
	}
}

// buildServer wires the store's persistence capabilities, the configured
// JWT signer, and the session bridge into an httpapi.Server.
func buildServer(cfg *config.Config, sqlDB *sql.DB, sessionManager *session.Manager) (*httpapi.Server, error) {
	dataStore := store.NewStore(sqlDB)

	signer, publishJWKS, err := buildSigner(cfg.OAuth)
	if err != nil {
		return nil, err
	}

	minter := &oauthjwt.Minter{Signer: signer, Issuer: cfg.OAuth.Issuer}
	verifier := &oauthjwt.Verifier{Issuer: cfg.OAuth.Issuer}

	caps := oauth.Capabilities{
		LoadClient:                dataStore.LoadClient,
		CreateAuthorization:       dataStore.CreateAuthorization,
		LoadAuthorization:         dataStore.LoadAuthorization,
		AuthenticateResourceOwner: dataStore.AuthenticateResourceOwner,
		ResourceOwnerApproval:     dataStore.ResourceOwnerApproval,
		CreateAccessToken:         dataStore.CreateAccessToken,
		CreateIdToken:             minter.Create,
		DecodeRefreshToken:        dataStore.DecodeRefreshToken,
		GenerateCode:              dataStore.GenerateCode,
	}

	metadata := oauth.Metadata(oauth.MetadataConfig{
		Issuer:                cfg.OAuth.Issuer,
		AuthorizationEndpoint: cfg.OAuth.Issuer + "/authorize",
		TokenEndpoint:         cfg.OAuth.Issuer + "/token",
		JWKSURI:               jwksURI(cfg.OAuth, publishJWKS),
		ScopesSupported:       []string{oauth.OpenIDScope, "profile", "email", "offline_access"},
		SigningAlg:            signer.Alg(),
	})

	server := &httpapi.Server{
		Capabilities:     caps,
		VerifyAssertion:  oauth.ClientAssertionVerifier(verifier.Verify),
		Sessions:         sessionManager,
		LoginPath:        cfg.Auth.LoginPath,
		AuthenticateUser: dataStore.AuthenticateResourceOwner,
		BindSession:      sessionManager.BindUser,
		SessionSubject:   sessionManager.LookupUser,
		Metadata:         metadata,
	}

	if publishJWKS {
		rs256, ok := signer.(*oauthjwt.RS256Signer)
		if ok {
			server.PublishJWKS = oauthjwt.JWKSHandler(rs256)
		}
	}

	return server, nil
}

// buildSigner selects the Signer implementation named by cfg.SigningKeyAlg.
// publishJWKS reports whether the signing key is asymmetric and therefore
// safe to expose at /.well-known/jwks.json.
func buildSigner(cfg config.OAuthConfig) (oauthjwt.Signer, bool, error) {
	switch cfg.SigningKeyAlg {
	case "RS256":
		pemKey, err := os.ReadFile(cfg.SigningKeyPath)
		if err != nil {
			return nil, false, fmt.Errorf("read signing key %s: %w", cfg.SigningKeyPath, err)
		}
		signer, err := oauthjwt.NewRS256Signer(cfg.SigningKeyID, pemKey)
		if err != nil {
			return nil, false, fmt.Errorf("load RS256 signer: %w", err)
		}
		return signer, true, nil
	case "HS256":
		return oauthjwt.NewHS256Signer(cfg.SigningKeyID, []byte(cfg.SigningKeySecret)), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported signing key algorithm %q", cfg.SigningKeyAlg)
	}
}

func jwksURI(cfg config.OAuthConfig, publishJWKS bool) string {
	if !publishJWKS {
		return ""
	}
	return cfg.Issuer + "/.well-known/jwks.json"
}
