package oauth

// Params is the unordered multimap of string to list<string> the core reads
// request parameters from. http.Request.Form (net/url.Values) already has
// this shape; httpapi passes it straight through.
type Params map[string][]string

// ParamError reports that a required or malformed parameter made the
// request unprocessable before client/grant resolution has happened. It is
// always wrapped by the caller into the appropriate EvilClientError,
// AuthorizationError, or TokenError — it never escapes the oauth package on
// its own.
type ParamError struct {
	Name   string
	Reason string
}

func (e *ParamError) Error() string {
	return e.Name + ": " + e.Reason
}

func newParamError(name, reason string) *ParamError {
	return &ParamError{Name: name, Reason: reason}
}

// requireParam fails if name is absent, empty-valued, or multi-valued;
// otherwise it returns the single value. Calling it twice on the same input
// yields the same result — it has no side effects on params.
func requireParam(params Params, name string) (string, error) {
	values, ok := params[name]
	if !ok || len(values) == 0 {
		return "", newParamError(name, "is required")
	}
	if len(values) > 1 {
		return "", newParamError(name, "must not be repeated")
	}
	if values[0] == "" {
		return "", newParamError(name, "is required")
	}
	return values[0], nil
}

// maybeParam returns ("", false, nil) if name is absent, fails if name is
// multi-valued, else returns the single value.
func maybeParam(params Params, name string) (string, bool, error) {
	values, ok := params[name]
	if !ok || len(values) == 0 {
		return "", false, nil
	}
	if len(values) > 1 {
		return "", false, newParamError(name, "must not be repeated")
	}
	return values[0], true, nil
}
