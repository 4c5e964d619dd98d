package oauth

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrAccessDenied is the sentinel a ResourceOwnerApproval capability should
// wrap (via fmt.Errorf("%w: ...", ErrAccessDenied)) or return directly when
// the resource owner explicitly refused the request, as opposed to an
// infrastructure failure. Any other error is treated as AuthErrServerError.
var ErrAccessDenied = errors.New("access_denied")

// ProcessAuthorizationRequest drives the authorize-request state machine.
// user is the already-authenticated resource owner
// id; it is the caller's job (the adapter) to have established that
// identity before invoking this function — the core never authenticates
// the resource owner itself except via ResourceOwnerApproval's side channel.
//
// Errors returned are always *EvilClientError (the client/redirect URI
// cannot be trusted; the caller must show a local error page, never
// redirect) or *AuthorizationError (the caller must redirect to
// err.RedirectURI with err.Code/err.Description/err.State encoded).
func ProcessAuthorizationRequest(ctx context.Context, caps Capabilities, user string, params Params, now time.Time) (string, error) {
	client, redirectURI, err := resolveClientAndRedirect(ctx, caps, params)
	if err != nil {
		return "", err
	}

	// State is extracted before any error that could be reported to the
	// client, so the client can correlate its request.
	state, err := extractState(params, redirectURI)
	if err != nil {
		return "", err
	}

	responseType, err := normalizeResponseType(params, redirectURI, state)
	if err != nil {
		return "", err
	}

	if responseType != ResponseTypeCode {
		return "", newAuthorizationError(AuthErrUnsupportedResponseType, "only response_type=code is supported", redirectURI, state)
	}

	if !client.HasGrantType(GrantAuthorizationCode) {
		return "", newAuthorizationError(AuthErrUnauthorizedClient, "client is not authorized for the authorization_code grant", redirectURI, state)
	}

	requestedScope, err := parseScopeParam(params)
	if err != nil {
		return "", newAuthorizationError(AuthErrInvalidRequest, err.Error(), redirectURI, state)
	}

	scope, err := checkClientScope(client, requestedScope)
	if err != nil {
		notAllowed, _ := err.(*ErrScopeNotAllowed)
		desc := "requested scope exceeds the client's allowed scopes"
		if notAllowed != nil {
			desc = "scope not allowed: " + notAllowed.Scope
		}
		return "", newAuthorizationError(AuthErrInvalidScope, desc, redirectURI, state)
	}

	granted, err := caps.ResourceOwnerApproval(ctx, user, client, scope, now)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return "", newAuthorizationError(AuthErrAccessDenied, "resource owner denied the request", redirectURI, state)
		}
		return "", newAuthorizationError(AuthErrServerError, "resource owner approval failed", redirectURI, state)
	}

	if _, err := checkRequestedScope(client.AllowedScopes, granted); err != nil {
		return "", newAuthorizationError(AuthErrServerError, "resource owner approval exceeded the client's allowed scopes", redirectURI, state)
	}

	code, err := caps.GenerateCode(ctx)
	if err != nil {
		return "", newAuthorizationError(AuthErrServerError, "unable to generate authorization code", redirectURI, state)
	}

	nonce, _, err := maybeParam(params, "nonce")
	if err != nil {
		return "", newAuthorizationError(AuthErrInvalidRequest, err.Error(), redirectURI, state)
	}

	if err := caps.CreateAuthorization(ctx, code, user, client, now, granted, redirectURI, nonce); err != nil {
		return "", newAuthorizationError(AuthErrServerError, "unable to persist authorization", redirectURI, state)
	}

	return buildSuccessRedirect(redirectURI, code, state, granted)
}

// resolveClientAndRedirect resolves the client and its redirect URI.
// Errors here always stay with the resource owner, never redirect.
func resolveClientAndRedirect(ctx context.Context, caps Capabilities, params Params) (*Client, string, error) {
	clientID, err := requireParam(params, "client_id")
	if err != nil {
		return nil, "", newInvalidClientError("client_id is required", err)
	}

	client, ok, err := caps.LoadClient(ctx, clientID)
	if err != nil {
		return nil, "", newInvalidClientError("unable to load client", err)
	}
	if !ok || client == nil {
		return nil, "", newInvalidClientError("unknown client", nil)
	}

	rawRedirectURI, present, err := maybeParam(params, "redirect_uri")
	if err != nil {
		return nil, "", newInvalidRedirectURIError("redirect_uri must not be repeated")
	}

	if !present {
		redirectURI := client.DefaultRedirectURI()
		if redirectURI == "" {
			return nil, "", newInvalidRedirectURIError("client has no registered redirect_uri")
		}
		return client, redirectURI, nil
	}

	if strings.Contains(rawRedirectURI, "#") {
		return nil, "", newFragmentInURIError()
	}

	if !client.HasRedirectURI(rawRedirectURI) {
		return nil, "", newInvalidRedirectURIError("redirect_uri does not match a registered URI")
	}

	return client, rawRedirectURI, nil
}

// extractState pulls the optional state parameter for later echo-back.
func extractState(params Params, redirectURI string) (string, error) {
	state, present, err := maybeParam(params, "state")
	if err != nil {
		return "", newAuthorizationError(AuthErrInvalidRequest, "state must not be repeated", redirectURI, "")
	}
	if !present {
		return "", nil
	}
	return state, nil
}

// normalizeResponseType validates response_type. Tokens are sorted and lowercased before comparison, so compound response
// types like "code id_token" are recognized in an order-insensitive way even
// though only the bare "code" response is serviced today.
func normalizeResponseType(params Params, redirectURI, state string) (ResponseType, error) {
	raw, err := requireParam(params, "response_type")
	if err != nil {
		return "", newAuthorizationError(AuthErrInvalidRequest, "response_type is required", redirectURI, state)
	}

	tokens := strings.Fields(strings.ToLower(raw))
	sort.Strings(tokens)
	normalized := strings.Join(tokens, " ")

	switch normalized {
	case "code":
		return ResponseTypeCode, nil
	case "token":
		return ResponseTypeToken, nil
	default:
		return "", newAuthorizationError(AuthErrUnsupportedResponseType, "unrecognized response_type", redirectURI, state)
	}
}

// parseScopeParam parses the scope parameter. A nil
// return means scope was absent or empty; checkClientScope treats that as
// "default to the client's allowed scopes."
func parseScopeParam(params Params) ([]Scope, error) {
	raw, present, err := maybeParam(params, "scope")
	if err != nil {
		return nil, err
	}
	if !present || raw == "" {
		return nil, nil
	}
	return ScopesFromStrings(strings.Fields(raw)), nil
}
