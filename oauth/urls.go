package oauth

import "net/url"

// cloneURL returns a deep copy of u so callers can mutate the query/fragment
// without affecting the client's registered URI.
func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	clone := *u
	if u.User != nil {
		user := *u.User
		clone.User = &user
	}
	return &clone
}

// buildSuccessRedirect builds the success URL for a code response:
// redirect_uri?code=<code>[&state=<state>][&scope=<space-joined>].
func buildSuccessRedirect(redirectURI, code, state string, scope []Scope) (string, error) {
	base, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}

	query := base.Query()
	query.Set("code", code)
	if state != "" {
		query.Set("state", state)
	}
	if len(scope) > 0 {
		query.Set("scope", joinScopes(scope))
	}
	base.RawQuery = query.Encode()

	return base.String(), nil
}

// buildErrorRedirect builds the error URL:
// redirect_uri?error=<code>[&error_description=<d>][&state=<s>].
// When useFragment is true the same parameters are encoded after a "#"
// instead of in the query string, for a future implicit-flow response.
func buildErrorRedirect(redirectURI string, code AuthorizationErrorCode, description, state string, useFragment bool) (string, error) {
	base, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("error", string(code))
	if description != "" {
		values.Set("error_description", description)
	}
	if state != "" {
		values.Set("state", state)
	}

	if useFragment {
		encoded := values.Encode()
		decoded, unescapeErr := url.QueryUnescape(encoded)
		if unescapeErr != nil {
			return "", unescapeErr
		}
		base.Fragment = decoded
		base.RawFragment = encoded
	} else {
		base.RawQuery = values.Encode()
	}

	return base.String(), nil
}

// BuildErrorRedirect builds the full redirect URL for an AuthorizationError,
// for callers (httpapi) that need to turn the error's components into a
// Location header after ProcessAuthorizationRequest returns one.
func BuildErrorRedirect(err *AuthorizationError) (string, error) {
	return buildErrorRedirect(err.RedirectURI, err.Code, err.Description, err.State, err.UseFragment)
}

func joinScopes(scope []Scope) string {
	names := ScopesToStrings(scope)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}
