package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
)

func joinScopeNames(scope []oauth.Scope) string {
	return strings.Join(oauth.ScopesToStrings(scope), " ")
}

// handleToken implements the Token Endpoint: same Cache-Control/Pragma
// headers on every JSON response (success or oauth.TokenError; the plain-text
// 405, 400 and 500 responses do not set them), and a WWW-Authenticate
// challenge whenever the
// oauth core reports a 401 invalid_client.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "unable to parse request parameters", http.StatusBadRequest)
		return
	}

	response, err := oauth.ProcessTokenRequest(r.Context(), s.Capabilities, s.VerifyAssertion, oauth.Params(r.Form), r.Header.Get("Authorization"), s.now())
	if err != nil {
		s.handleTokenError(w, err)
		return
	}

	body := struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
		RefreshToken string `json:"refresh_token,omitempty"`
		Scope        string `json:"scope,omitempty"`
		IDToken      string `json:"id_token,omitempty"`
	}{
		AccessToken:  response.AccessToken,
		TokenType:    response.TokenType,
		ExpiresIn:    response.ExpiresIn,
		RefreshToken: response.RefreshToken,
		Scope:        joinScopeNames(response.Scope),
		IDToken:      response.IDToken,
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(err)
	}
}

func (s *Server) handleTokenError(w http.ResponseWriter, err error) {
	var tokenErr *oauth.TokenError
	if errors.As(err, &tokenErr) {
		status := tokenErr.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		if tokenErr.WWWAuthenticate {
			w.Header().Set("WWW-Authenticate", `Basic realm="authd", error="`+string(tokenErr.Code)+`"`)
		}

		body := map[string]string{"error": string(tokenErr.Code)}
		if tokenErr.Description != "" {
			body["error_description"] = tokenErr.Description
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
			logger.Error(encErr)
		}
		return
	}

	writeInternalError(w, err)
}
