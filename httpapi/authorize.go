package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/session"
)

// handleAuthorize implements the Authorization Endpoint, dispatching the
// oauth core's two-tier error model to the wire: oauth.EvilClientError
// never redirects, oauth.AuthorizationError always does.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "unable to parse request parameters", http.StatusBadRequest)
		return
	}

	sessionToken, _ := session.FromContext(r.Context())
	subjectID, authenticated, err := s.SessionSubject(r.Context(), sessionToken)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !authenticated {
		redirectToLogin(w, r, s.LoginPath)
		return
	}

	logger.Info("authorize request: client_id=%s response_type=%s", r.Form.Get("client_id"), r.Form.Get("response_type"))

	redirect, err := oauth.ProcessAuthorizationRequest(r.Context(), s.Capabilities, subjectID, oauth.Params(r.Form), s.now())
	if err != nil {
		s.handleAuthorizeError(w, r, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) handleAuthorizeError(w http.ResponseWriter, r *http.Request, err error) {
	var evilErr *oauth.EvilClientError
	if errors.As(err, &evilErr) {
		logger.Warn("rejecting authorization request: %s", evilErr.Error())
		http.Error(w, evilErr.Error(), http.StatusBadRequest)
		return
	}

	var authErr *oauth.AuthorizationError
	if errors.As(err, &authErr) {
		redirect, buildErr := oauth.BuildErrorRedirect(authErr)
		if buildErr != nil {
			writeInternalError(w, buildErr)
			return
		}
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	writeInternalError(w, err)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if target == "" {
		target = "/login"
	}
	http.Redirect(w, r, target+"?return_to="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}
