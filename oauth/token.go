package oauth

import (
	"context"
	"time"
)

// grantOutcome is the (subject, id_token eligibility, effective grant,
// scope) tuple the per-grant-type dispatch below produces, before token
// minting happens.
type grantOutcome struct {
	Subject       string
	WantsIDToken  bool
	EffectiveType GrantType
	Scope         []Scope
	Nonce         string
	Code          string
}

// ProcessTokenRequest drives the token endpoint: authenticate the client,
// dispatch on grant_type, validate the grant-specific preconditions, and
// build the token response. verifyAssertion may be nil if the deployment
// never registers client_secret_jwt/private_key_jwt clients; any assertion
// attempt then fails closed as invalid_client.
func ProcessTokenRequest(ctx context.Context, caps Capabilities, verifyAssertion ClientAssertionVerifier, params Params, authorizationHeader string, now time.Time) (*AccessTokenResponse, error) {
	authed, err := authenticateClient(ctx, caps, verifyAssertion, params, authorizationHeader)
	if err != nil {
		return nil, err
	}
	client := authed.Client

	grantTypeRaw, err := requireParam(params, "grant_type")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "grant_type is required", 400)
	}

	grantType, ok := knownGrantType(grantTypeRaw)
	if !ok {
		return nil, newTokenError(TokenErrUnsupportedGrantType, "unrecognized grant_type", 400)
	}

	// Implicit is an authorize-endpoint-only flow; it is never accepted here
	// even though it is an enumerated grant type on the client record.
	if grantType == GrantImplicit {
		return nil, newTokenError(TokenErrInvalidGrant, "Implicit grant is not supported by the token endpoint", 400)
	}

	if !client.HasGrantType(grantType) {
		return nil, newTokenError(TokenErrUnauthorizedClient, "client is not authorized for this grant type", 400)
	}

	var outcome *grantOutcome
	switch grantType {
	case GrantAuthorizationCode:
		outcome, err = handleAuthorizationCodeGrant(ctx, caps, client, params, now)
	case GrantClientCredentials:
		outcome, err = handleClientCredentialsGrant(client, params)
	case GrantResourceOwner:
		outcome, err = handleResourceOwnerGrant(ctx, caps, client, params)
	case GrantRefreshToken:
		outcome, err = handleRefreshTokenGrant(ctx, caps, client, params, now)
	}
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, ttlSeconds, err := caps.CreateAccessToken(ctx, outcome.Subject, client, outcome.EffectiveType, outcome.Scope, now)
	if err != nil {
		return nil, newTokenError(TokenErrServerError, "unable to mint access token", 500)
	}

	response := &AccessTokenResponse{
		AccessToken:  accessToken,
		TokenType:    BearerTokenType,
		ExpiresIn:    ttlSeconds,
		RefreshToken: refreshToken,
		Scope:        outcome.Scope,
	}

	if outcome.WantsIDToken {
		idToken, err := caps.CreateIdToken(ctx, outcome.Subject, client, outcome.Nonce, now, accessToken, outcome.Code)
		if err != nil {
			return nil, newTokenError(TokenErrServerError, "unable to mint id token", 500)
		}
		response.IDToken = idToken
	}

	return response, nil
}

func knownGrantType(raw string) (GrantType, bool) {
	switch raw {
	case "authorization_code":
		return GrantAuthorizationCode, true
	case "implicit":
		return GrantImplicit, true
	case "password":
		return GrantResourceOwner, true
	case "client_credentials":
		return GrantClientCredentials, true
	case "refresh_token":
		return GrantRefreshToken, true
	default:
		return "", false
	}
}

func handleAuthorizationCodeGrant(ctx context.Context, caps Capabilities, client *Client, params Params, now time.Time) (*grantOutcome, error) {
	code, err := requireParam(params, "code")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "code is required", 400)
	}

	redirectURI, redirectPresent, err := maybeParam(params, "redirect_uri")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "redirect_uri must not be repeated", 400)
	}

	authz, ok, err := caps.LoadAuthorization(ctx, code)
	if err != nil {
		return nil, newTokenError(TokenErrServerError, "unable to load authorization code", 500)
	}
	if !ok || authz == nil {
		return nil, newTokenError(TokenErrInvalidGrant, "authorization code is invalid, expired, or already used", 400)
	}

	if authz.ClientID != client.ID {
		return nil, newTokenError(TokenErrInvalidGrant, "authorization code was not issued to this client", 400)
	}

	storedRedirect := authz.RedirectURI
	switch {
	case !redirectPresent && storedRedirect == "":
		// both absent: equal.
	case redirectPresent && redirectURI == storedRedirect:
		// equal.
	default:
		return nil, newTokenError(TokenErrInvalidGrant, "redirect_uri does not match the authorization request", 400)
	}

	age := now.Sub(authz.IssuedAt)
	if age > AuthorizationCodeTTL {
		return nil, newTokenError(TokenErrInvalidGrant, "authorization code has expired", 400)
	}

	return &grantOutcome{
		Subject:       authz.SubjectID,
		WantsIDToken:  ContainsScope(authz.Scope, OpenIDScope),
		EffectiveType: GrantAuthorizationCode,
		Scope:         authz.Scope,
		Nonce:         authz.Nonce,
		Code:          code,
	}, nil
}

func handleClientCredentialsGrant(client *Client, params Params) (*grantOutcome, error) {
	scope, err := resolveRequestedScopeAgainstClient(client, params)
	if err != nil {
		return nil, err
	}
	return &grantOutcome{
		EffectiveType: GrantClientCredentials,
		Scope:         scope,
	}, nil
}

func handleResourceOwnerGrant(ctx context.Context, caps Capabilities, client *Client, params Params) (*grantOutcome, error) {
	username, err := requireParam(params, "username")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "username is required", 400)
	}
	password, err := requireParam(params, "password")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "password is required", 400)
	}

	subject, ok, err := caps.AuthenticateResourceOwner(ctx, username, password)
	if err != nil {
		return nil, newTokenError(TokenErrServerError, "unable to authenticate resource owner", 500)
	}
	if !ok {
		return nil, newTokenError(TokenErrInvalidGrant, "authentication failed", 400)
	}

	scope, err := resolveRequestedScopeAgainstClient(client, params)
	if err != nil {
		return nil, err
	}

	return &grantOutcome{
		Subject:       subject,
		EffectiveType: GrantResourceOwner,
		Scope:         scope,
	}, nil
}

func handleRefreshTokenGrant(ctx context.Context, caps Capabilities, client *Client, params Params, now time.Time) (*grantOutcome, error) {
	token, err := requireParam(params, "refresh_token")
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, "refresh_token is required", 400)
	}

	grant, ok, err := caps.DecodeRefreshToken(ctx, client, token)
	if err != nil {
		return nil, newTokenError(TokenErrServerError, "unable to decode refresh token", 500)
	}
	if !ok || grant == nil {
		return nil, newTokenError(TokenErrInvalidGrant, "refresh token is invalid", 400)
	}

	if grant.ClientID != client.ID {
		return nil, newTokenError(TokenErrInvalidGrant, "Refresh token was issued to a different client", 400)
	}

	if grant.ExpiresAt.Before(now) {
		return nil, newTokenError(TokenErrInvalidGrant, "refresh token has expired", 400)
	}

	requestedScope, err := parseScopeParam(params)
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}

	scope, err := checkRequestedScope(grant.Scope, requestedScope)
	if err != nil {
		return nil, newTokenError(TokenErrInvalidScope, "requested scope exceeds the scope of the refresh token", 400)
	}

	return &grantOutcome{
		Subject:       grant.Subject,
		EffectiveType: grant.GrantType,
		Scope:         scope,
	}, nil
}

func resolveRequestedScopeAgainstClient(client *Client, params Params) ([]Scope, error) {
	requestedScope, err := parseScopeParam(params)
	if err != nil {
		return nil, newTokenError(TokenErrInvalidRequest, err.Error(), 400)
	}
	scope, err := checkClientScope(client, requestedScope)
	if err != nil {
		return nil, newTokenError(TokenErrInvalidScope, "requested scope exceeds the client's allowed scopes", 400)
	}
	return scope, nil
}
