package webapp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskboard.org/internal/api"
)

// redirectFlash sends the browser to path with a one-shot message.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, kind, message string) {
	setFlash(w, kind, message)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// failMutation handles an error from a mutating backend call. A rejected
// credential ends the session; everything else surfaces the backend's
// message and returns the browser to back.
func (s *Server) failMutation(w http.ResponseWriter, r *http.Request, err error, back, fallback string) {
	if api.IsUnauthorized(err) {
		s.sessions.Invalidate(w)
		redirectFlash(w, r, "/login", "error", "Your session has expired. Please log in again.")
		return
	}
	redirectFlash(w, r, back, "error", api.Message(err, fallback))
}

// failPage handles an error while loading a page.
func (s *Server) failPage(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if api.IsUnauthorized(err) {
		s.sessions.Invalidate(w)
		redirectFlash(w, r, "/login", "error", "Your session has expired. Please log in again.")
		return
	}
	code := http.StatusBadGateway
	if api.IsStatus(err, http.StatusNotFound) {
		code = http.StatusNotFound
	}
	s.render(w, r, code, "error", "Error", struct{ Message string }{api.Message(err, fallback)})
}

// deny rejects a request whose identity lacks the required permission.
func (s *Server) deny(w http.ResponseWriter, r *http.Request, back string) {
	redirectFlash(w, r, back, "error", "You do not have permission to do that.")
}

// allow checks one permission for the current identity.
func (s *Server) allow(perm string) bool {
	return NewGate(s.sessions.Identity()).Allow(perm)
}

// consumeToken enforces the one-shot form token. A replayed or missing token
// bounces back without repeating the action.
func (s *Server) consumeToken(w http.ResponseWriter, r *http.Request, back string) bool {
	if s.tokens.Consume(r.FormValue("token")) {
		return true
	}
	redirectFlash(w, r, back, "info", "That action was already submitted.")
	return false
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
