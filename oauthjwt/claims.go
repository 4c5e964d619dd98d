// Package oauthjwt implements the JWS/JWT capabilities the oauth core
// borrows: minting OpenID Connect ID tokens and verifying client
// assertions (client_secret_jwt / private_key_jwt), built on
// github.com/golang-jwt/jwt/v5.
package oauthjwt

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims are the claims minted into an OpenID Connect ID token.
// RegisteredClaims carries iss/sub/aud/exp/iat; the OpenID-specific fields
// are layered on top by embedding.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	// Nonce echoes the value supplied on the authorize request, binding the
	// ID token to that specific authorization.
	Nonce string `json:"nonce,omitempty"`

	// AtHash and CHash are the base64url(SHA-256(value)[:half]) digests of
	// the access token and authorization code, per OpenID Connect Core 1.0
	// §3.1.3.6 and §3.3.2.11. Either may be empty.
	AtHash string `json:"at_hash,omitempty"`
	CHash  string `json:"c_hash,omitempty"`
}

// ClientAssertionClaims are the claims a client signs into its
// client_assertion JWT, per RFC 7523.
type ClientAssertionClaims struct {
	jwt.RegisteredClaims
}

// newJTI returns a random base32 identifier for the "jti" claim.
func newJTI() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().UTC().Format(time.RFC3339Nano)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}

// NewIDTokenClaims builds the claim set for a fresh ID token.
func NewIDTokenClaims(issuer, subject, audience, nonce, atHash, cHash string, ttl time.Duration, now time.Time) IDTokenClaims {
	return IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Nonce:  nonce,
		AtHash: atHash,
		CHash:  cHash,
	}
}
