// Package webapp is the browser-facing surface: server-rendered pages over
// the backend REST API, with route guarding and permission-gated controls.
package webapp

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskboard.org/internal/api"
	"taskboard.org/internal/session"
)

// Server holds the session store, the typed backend services and the
// rendering state for the whole web client.
type Server struct {
	client   *api.Client
	sessions *session.Store
	teams    *api.TeamService
	projects *api.ProjectService
	tasks    *api.TaskService
	tokens   *actionTokens
	log      zerolog.Logger
	version  string

	loginBurst int
	loginEvery time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLoginThrottle sets the per-IP budget for credential posts.
func WithLoginThrottle(burst int, every time.Duration) Option {
	return func(s *Server) {
		if burst > 0 {
			s.loginBurst = burst
		}
		if every > 0 {
			s.loginEvery = every
		}
	}
}

// New builds the web server over an authenticated API client and its session
// store. The typed resource services are derived from the client so every
// request shares one token source.
func New(client *api.Client, store *session.Store, opts ...Option) *Server {
	s := &Server{
		client:     client,
		sessions:   store,
		teams:      api.NewTeamService(client),
		projects:   api.NewProjectService(client),
		tasks:      api.NewTaskService(client),
		tokens:     newActionTokens(10 * time.Minute),
		log:        zerolog.Nop(),
		version:    "dev",
		loginBurst: 5,
		loginEvery: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// formValue trims a posted field.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}
