package oauthjwt

import (
	"context"
	"time"

	"github.com/sa-identity/authd/oauth"
)

// IDTokenTTL is the fixed lifetime of a minted ID token. OpenID Connect
// Core 1.0 leaves this to the provider; sa-auth mirrors the access token's
// default freshness window rather than introducing a second knob.
const IDTokenTTL = 5 * time.Minute

// Minter mints ID tokens against a single signing key. Its Create method
// has exactly the shape oauth.Capabilities.CreateIdToken expects, so it can
// be wired in directly: caps.CreateIdToken = minter.Create.
type Minter struct {
	Signer Signer
	Issuer string
}

// Create mints an OpenID Connect ID token for subject, including at_hash
// and c_hash digests when accessToken/code are non-empty.
func (m *Minter) Create(ctx context.Context, subject string, client *oauth.Client, nonce string, now time.Time, accessToken, code string) (string, error) {
	claims := NewIDTokenClaims(m.Issuer, subject, client.ID, nonce, halfHash(accessToken), halfHash(code), IDTokenTTL, now)
	return m.Signer.Sign(claims)
}
