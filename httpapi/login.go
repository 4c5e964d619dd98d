package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/session"
)

// handleLogin binds an authenticated resource owner to the current
// session, then sends the browser back to return_to (normally the
// /authorize request that redirected here). It only establishes identity;
// the authorize endpoint is re-entered afterward to actually mint a code.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sessionToken, ok := session.FromContext(r.Context())
	if !ok || sessionToken == "" {
		logger.Error(errors.New("login request missing session"))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	returnTo := sanitizeReturnTo(r.Form.Get("return_to"))

	username := r.Form.Get("username")
	password := r.Form.Get("password")

	subjectID, authenticated, err := s.AuthenticateUser(r.Context(), username, password)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !authenticated {
		http.Redirect(w, r, loginFailureTarget(s.LoginPath, returnTo), http.StatusFound)
		return
	}

	if err := s.BindSession(r.Context(), sessionToken, subjectID); err != nil {
		writeInternalError(w, err)
		return
	}

	http.Redirect(w, r, returnTo, http.StatusFound)
}

// sanitizeReturnTo only allows a same-origin path, never an absolute URL,
// so a malicious return_to cannot be used to redirect off this host.
func sanitizeReturnTo(raw string) string {
	if raw == "" {
		return "/authorize"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/authorize"
	}
	return raw
}

func loginFailureTarget(loginPath, returnTo string) string {
	target := loginPath
	if target == "" {
		target = "/login"
	}
	return target + "?return_to=" + url.QueryEscape(returnTo) + "&error=invalid_credentials"
}
