package oauthjwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints signed ID tokens. Two implementations are provided —
// RS256Signer for a registered signing key pair, and HS256Signer for
// development/test deployments that sign with a shared secret — following
// the per-algorithm Signer split in aussiebroadwan-bartabchat/pkg/jwtx.
type Signer interface {
	Alg() string
	KID() string
	Sign(claims IDTokenClaims) (string, error)
}

// RS256Signer implements Signer using RSA SHA-256.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
	pub *rsa.PublicKey
}

// NewRS256Signer loads an RSA private key from PEM bytes. It accepts both
// PKCS1 and PKCS8 encodings.
func NewRS256Signer(kid string, pemKey []byte) (*RS256Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("oauthjwt: invalid PEM for RSA key")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("oauthjwt: parse PKCS1 key: %w", err)
		}
		key = parsed
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("oauthjwt: parse PKCS8 key: %w", err)
		}
		rk, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("oauthjwt: PKCS8 key is not RSA")
		}
		key = rk
	default:
		return nil, fmt.Errorf("oauthjwt: unsupported PEM block type %q", block.Type)
	}

	return &RS256Signer{kid: kid, key: key, pub: &key.PublicKey}, nil
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }
func (s *RS256Signer) KID() string { return s.kid }

func (s *RS256Signer) Sign(claims IDTokenClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicKey returns the RSA public key used to verify tokens from this signer.
func (s *RS256Signer) PublicKey() *rsa.PublicKey {
	return s.pub
}

// HS256Signer implements Signer using an HMAC shared secret. Intended for
// local development deployments; production deployments should register an
// RS256Signer and publish its public key at the JWKS endpoint.
type HS256Signer struct {
	kid    string
	secret []byte
}

func NewHS256Signer(kid string, secret []byte) *HS256Signer {
	return &HS256Signer{kid: kid, secret: secret}
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

func (s *HS256Signer) Sign(claims IDTokenClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}
