// Package httpapi is the thin HTTP adapter in front of the oauth core: it
// decodes net/http requests into oauth.Params, calls the two processors,
// and encodes their results (or errors) back onto the wire.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sa-identity/authd/logger"
	"github.com/sa-identity/authd/oauth"
	"github.com/sa-identity/authd/session"
)

// ResourceOwnerAuthenticator authenticates the login form submitted to
// the /login handler (handleLogin) and reports the subject id to bind into the session.
// Backed by store.Store.AuthenticateResourceOwner in production.
type ResourceOwnerAuthenticator func(ctx context.Context, username, password string) (subjectID string, ok bool, err error)

// SessionBinder attaches an authenticated subject id to a session token so
// later requests on the same cookie can resolve the signed-in resource
// owner. Backed by session.Manager.BindUser in production.
type SessionBinder func(ctx context.Context, token, subjectID string) error

// SessionSubject resolves the resource owner already bound to a session
// token, if any. Backed by session.Manager.LookupUser in production.
type SessionSubject func(ctx context.Context, token string) (subjectID string, ok bool, err error)

// Server wires the oauth core's two processors to net/http, plus the
// supplemented discovery and JWKS endpoints.
type Server struct {
	Capabilities     oauth.Capabilities
	VerifyAssertion  oauth.ClientAssertionVerifier
	Sessions         *session.Manager
	LoginPath        string
	AuthenticateUser ResourceOwnerAuthenticator
	BindSession      SessionBinder
	SessionSubject   SessionSubject
	Metadata         oauth.DiscoveryDocument
	PublishJWKS      func(w http.ResponseWriter, r *http.Request)
	Now              func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Mux builds the server's complete route table.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/authorize", s.Sessions.Middleware(http.HandlerFunc(s.handleAuthorize)))
	mux.HandleFunc("/token", s.handleToken)
	mux.Handle("/login", s.Sessions.Middleware(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("/.well-known/openid-configuration", s.handleDiscovery)
	if s.PublishJWKS != nil {
		mux.HandleFunc("/.well-known/jwks.json", s.PublishJWKS)
	}
	return mux
}

func writeInternalError(w http.ResponseWriter, err error) {
	logger.Error(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
