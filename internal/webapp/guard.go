package webapp

import (
	"net/http"
	"strings"

	"taskboard.org/internal/session"
)

// Navigation policy. Protected prefixes need a live session; guest-only
// paths bounce an authenticated browser back to the dashboard.
var (
	protectedPrefixes = []string{"/dashboard", "/teams", "/projects", "/tasks"}
	guestOnlyPaths    = map[string]bool{"/login": true, "/register": true}
)

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// guard enforces the navigation policy. The session cookie is only a hint:
// when it disagrees with the store (stale cookie after a restart with no
// credential file) the cookie is expired and the request treated as guest.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasCookie := session.ReadCookie(r, s.sessions.CookieName()) != ""

		if hasCookie && !s.sessions.Authenticated() {
			session.ClearCookie(w, s.sessions.CookieName())
			hasCookie = false
		}

		switch {
		case isProtected(r.URL.Path) && !hasCookie:
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case guestOnlyPaths[r.URL.Path] && hasCookie:
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
