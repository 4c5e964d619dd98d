package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sa-identity/authd/logger"
)

// handleDiscovery publishes the static OpenID Provider metadata document.
// Unlike every other endpoint it has no capability dependency; it is a
// pure function of the server's configuration, built once at startup and
// cached on the Server.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Metadata); err != nil {
		logger.Error(err)
	}
}
