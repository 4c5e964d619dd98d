package oauthjwt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/sa-identity/authd/logger"
)

// PublicJWK publishes the public half of an RS256Signer's key pair as a
// JSON Web Key Set document, for the /.well-known/jwks.json endpoint. The
// set always contains exactly one key, since sa-authd rotates signing keys
// by redeploying with a new kid rather than serving multiple at once.
func PublicJWK(ctx context.Context, signer *RS256Signer) (jwk.Set, error) {
	key, err := jwk.Import(signer.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("oauthjwt: import public key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, signer.KID()); err != nil {
		return nil, fmt.Errorf("oauthjwt: set kid: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, signer.Alg()); err != nil {
		return nil, fmt.Errorf("oauthjwt: set alg: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("oauthjwt: set use: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, fmt.Errorf("oauthjwt: add key to set: %w", err)
	}
	return set, nil
}

// JWKSHandler returns an http.HandlerFunc suitable for
// httpapi.Server.PublishJWKS, serving signer's public key as a JWKS
// document. RS256 is the only signer that publishes keys; HS256
// deployments leave Server.PublishJWKS nil, since a symmetric key must
// never be exposed.
func JWKSHandler(signer *RS256Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		set, err := PublicJWK(r.Context(), signer)
		if err != nil {
			logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(set); err != nil {
			logger.Error(err)
		}
	}
}
