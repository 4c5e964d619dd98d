package oauth

import "fmt"

// ErrScopeNotAllowed indicates a requested scope is outside the bound a
// client or an existing grant permits.
type ErrScopeNotAllowed struct {
	Scope string
}

func (e *ErrScopeNotAllowed) Error() string {
	return fmt.Sprintf("scope %q is not allowed", e.Scope)
}

// checkClientScope enforces that requested is a subset of client.AllowedScopes.
// If requested is absent (nil), the client's full allowed set
// is returned. The narrowed result preserves request order.
func checkClientScope(client *Client, requested []Scope) ([]Scope, error) {
	if requested == nil {
		return client.AllowedScopes, nil
	}
	for _, s := range requested {
		if !ContainsScope(client.AllowedScopes, s.Name) {
			return nil, &ErrScopeNotAllowed{Scope: s.Name}
		}
	}
	return requested, nil
}

// checkRequestedScope enforces that requested is a subset of existing
// (e.g. the scope embedded in a refresh token). If requested
// is absent, existing is returned unchanged.
func checkRequestedScope(existing, requested []Scope) ([]Scope, error) {
	if requested == nil {
		return existing, nil
	}
	for _, s := range requested {
		if !ContainsScope(existing, s.Name) {
			return nil, &ErrScopeNotAllowed{Scope: s.Name}
		}
	}
	return requested, nil
}
