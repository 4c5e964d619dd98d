package oauthjwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sa-identity/authd/oauth"
)

// ErrPrivateKeyJWTUnsupported is returned for every private_key_jwt
// verification attempt. Resolving a client's registered public key needs
// a key-distribution mechanism this deployment doesn't have yet, so the
// method fails closed as a client-auth error rather than attempting (and
// likely mishandling) key resolution.
var ErrPrivateKeyJWTUnsupported = errors.New("oauthjwt: private_key_jwt verification is not implemented")

// KeyRegistry resolves the public key registered for private_key_jwt
// clients. It is unused today (see ErrPrivateKeyJWTUnsupported) but is
// defined so a future implementation has a capability to call into
// without changing Verifier's constructor signature.
type KeyRegistry interface {
	PublicKey(ctx context.Context, clientID string) (*rsa.PublicKey, error)
}

// Verifier implements oauth.ClientAssertionVerifier against
// github.com/golang-jwt/jwt/v5, per RFC 7523. client_secret_jwt verifies an
// HMAC signature using the client's shared secret; private_key_jwt is
// rejected per ErrPrivateKeyJWTUnsupported.
type Verifier struct {
	Issuer string
	Keys   KeyRegistry
}

// Verify implements oauth.ClientAssertionVerifier.
func (v *Verifier) Verify(ctx context.Context, client *oauth.Client, assertion string) (bool, error) {
	switch client.TokenEndpointAuthMethod {
	case oauth.AuthMethodClientSecretJWT:
		return v.verifyHMAC(client, assertion)
	case oauth.AuthMethodPrivateKeyJWT:
		return false, ErrPrivateKeyJWTUnsupported
	default:
		return false, fmt.Errorf("oauthjwt: client is not configured for an assertion auth method")
	}
}

func (v *Verifier) verifyHMAC(client *oauth.Client, assertion string) (bool, error) {
	if !client.HasSecret {
		return false, errors.New("oauthjwt: client_secret_jwt requires a registered client secret")
	}

	validMethods := []string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}
	if client.TokenEndpointAuthAlg != "" {
		validMethods = []string{client.TokenEndpointAuthAlg}
	}

	parser := jwt.NewParser(jwt.WithValidMethods(validMethods))

	claims := &ClientAssertionClaims{}
	token, err := parser.ParseWithClaims(assertion, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(client.Secret), nil
	})
	if err != nil {
		return false, fmt.Errorf("oauthjwt: parse client assertion: %w", err)
	}
	if !token.Valid {
		return false, errors.New("oauthjwt: client assertion failed validation")
	}

	if client.TokenEndpointAuthAlg != "" {
		alg, _ := token.Header["alg"].(string)
		if alg != client.TokenEndpointAuthAlg {
			return false, fmt.Errorf("oauthjwt: client assertion alg %q does not match the client's expected alg %q", alg, client.TokenEndpointAuthAlg)
		}
	}

	// RFC 7523 §3: iss and sub MUST both equal the asserted client id.
	if claims.Issuer != client.ID || claims.Subject != client.ID {
		return false, errors.New("oauthjwt: client assertion iss/sub must equal the client id")
	}
	if claims.ExpiresAt == nil {
		return false, errors.New("oauthjwt: client assertion is missing exp")
	}

	return true, nil
}
