package oauth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/sa-identity/authd/stringutils"
)

// errClientNotFound is an internal sentinel used only within client
// authentication; it never escapes authenticateClient, which always
// collapses it to TokenErrInvalidClient.
var errClientNotFound = errors.New("client not found")

// ClientAssertionVerifier verifies a client_assertion JWT for client and
// reports whether it is valid. It is injected separately from Capabilities because
// it is a pure verification function (no persistence), implemented by the
// oauthjwt package against golang-jwt/jwt/v5.
type ClientAssertionVerifier func(ctx context.Context, client *Client, assertion string) (ok bool, err error)

// authenticatedClient is the outcome of token-endpoint client authentication.
type authenticatedClient struct {
	Client *Client
	Method AuthMethod
}

// authenticateClient resolves exactly one client credential source from
// the request. Authentication failures never leak whether the client id,
// secret, or method mismatched — everything collapses to invalid_client
// (with a 401 and a Basic challenge only when Basic auth was attempted).
func authenticateClient(ctx context.Context, caps Capabilities, verifyAssertion ClientAssertionVerifier, params Params, authorizationHeader string) (*authenticatedClient, error) {
	basicID, basicSecret, hasBasic := parseBasicAuth(authorizationHeader)

	postID, postIDPresent, err := maybeParam(params, "client_id")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}
	postSecret, postSecretPresent, err := maybeParam(params, "client_secret")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}

	assertionType, hasAssertionType, err := maybeParam(params, "client_assertion_type")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}
	assertion, hasAssertion, err := maybeParam(params, "client_assertion")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}

	sourceCount := 0
	if hasBasic {
		sourceCount++
	}
	if postSecretPresent {
		sourceCount++
	}
	if hasAssertionType || hasAssertion {
		sourceCount++
	}

	switch {
	case sourceCount > 1:
		return nil, newTokenError(TokenErrInvalidRequest, "ambiguous client authentication", 400)

	case hasBasic:
		client, err := loadClientForAuth(ctx, caps, basicID)
		if err != nil {
			return nil, newInvalidClient401Error("client authentication failed")
		}
		if !secretMatches(client, basicSecret) {
			return nil, newInvalidClient401Error("client authentication failed")
		}
		if err := crossCheckClientID(params, client.ID); err != nil {
			return nil, err
		}
		return &authenticatedClient{Client: client, Method: AuthMethodClientSecretBasic}, nil

	case postSecretPresent:
		if !postIDPresent || postID == "" {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		client, err := loadClientForAuth(ctx, caps, postID)
		if err != nil {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		if !secretMatches(client, postSecret) {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		return &authenticatedClient{Client: client, Method: AuthMethodClientSecretPost}, nil

	case hasAssertionType || hasAssertion:
		if assertionType != ClientAssertionTypeJWTBearer || assertion == "" {
			return nil, newTokenError(TokenErrInvalidRequest, "malformed client assertion", 400)
		}
		if !postIDPresent || postID == "" {
			return nil, newInvalidClient400Error("client_id is required with a client assertion")
		}
		client, err := loadClientForAuth(ctx, caps, postID)
		if err != nil {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		if client.TokenEndpointAuthMethod != AuthMethodClientSecretJWT && client.TokenEndpointAuthMethod != AuthMethodPrivateKeyJWT {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		if verifyAssertion == nil {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		ok, err := verifyAssertion(ctx, client, assertion)
		if err != nil || !ok {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		return &authenticatedClient{Client: client, Method: client.TokenEndpointAuthMethod}, nil

	case postIDPresent && postID != "":
		client, err := loadClientForAuth(ctx, caps, postID)
		if err != nil {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		if client.TokenEndpointAuthMethod != AuthMethodNone {
			return nil, newInvalidClient400Error("client authentication failed")
		}
		return &authenticatedClient{Client: client, Method: AuthMethodNone}, nil

	default:
		return nil, newInvalidClient400Error("client authentication failed")
	}
}

func loadClientForAuth(ctx context.Context, caps Capabilities, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, errClientNotFound
	}
	client, ok, err := caps.LoadClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !ok || client == nil {
		return nil, errClientNotFound
	}
	return client, nil
}

// secretMatches performs a constant-time comparison of the presented secret
// against the client's registered secret. A client without a
// secret never matches (such clients must use AuthMethodNone).
func secretMatches(client *Client, presented string) bool {
	if !client.HasSecret {
		return false
	}
	return stringutils.ConstantTimeEquals(client.Secret, presented)
}

// crossCheckClientID enforces that if client_id was also sent as a form
// parameter alongside Basic auth, it must equal the authenticated client id.
func crossCheckClientID(params Params, authenticatedID string) error {
	formID, present, err := maybeParam(params, "client_id")
	if err != nil {
		return newTokenError(TokenErrInvalidRequest, "client_id must not be repeated", 400)
	}
	if present && formID != "" && formID != authenticatedID {
		return newTokenError(TokenErrInvalidRequest, "client_id does not match authenticated client", 400)
	}
	return nil
}

// parseBasicAuth extracts client_id/client_secret from an
// "Authorization: Basic base64(id:secret)" header without depending on
// net/http, so the core stays transport-agnostic.
func parseBasicAuth(header string) (id, secret string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
