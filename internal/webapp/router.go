package webapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"taskboard.org/internal/obs"
)

// Handler assembles the full middleware chain and route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(obs.RequestID)
	r.Use(obs.RequestLogger(s.log))
	r.Use(obs.Instrument)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	// Unguarded operational endpoints.
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", obs.MetricsHandler())

	// Everything the browser navigates to goes through the route guard.
	r.Group(func(g chi.Router) {
		g.Use(s.guard)

		g.Get("/", s.handleRoot)

		g.Get("/login", s.handleLoginPage)
		g.Get("/register", s.handleRegisterPage)
		g.With(loginThrottle(s)).Post("/login", s.handleLogin)
		g.With(loginThrottle(s)).Post("/register", s.handleRegister)
		g.Post("/logout", s.handleLogout)

		g.Get("/dashboard", s.handleDashboard)

		g.Get("/teams", s.handleTeamList)
		g.Post("/teams/create", s.handleTeamCreate)
		g.Get("/teams/{id}", s.handleTeamDetail)
		g.Post("/teams/{id}/update", s.handleTeamUpdate)
		g.Post("/teams/{id}/delete", s.handleTeamDelete)
		g.Post("/teams/{id}/members/add", s.handleMemberAdd)
		g.Post("/teams/{id}/members/{userID}/remove", s.handleMemberRemove)

		g.Get("/projects", s.handleProjectList)
		g.Post("/projects/create", s.handleProjectCreate)
		g.Get("/projects/{id}", s.handleProjectDetail)
		g.Post("/projects/{id}/update", s.handleProjectUpdate)
		g.Post("/projects/{id}/delete", s.handleProjectDelete)

		g.Get("/tasks", s.handleTaskList)
		g.Post("/tasks/create", s.handleTaskCreate)
		g.Post("/tasks/{id}/update", s.handleTaskUpdate)
		g.Post("/tasks/{id}/delete", s.handleTaskDelete)
		g.Post("/tasks/{id}/assign", s.handleTaskAssign)
	})

	return r
}

func loginThrottle(s *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return throttle(next, s.loginBurst, s.loginEvery)
	}
}
