package webapp

import (
	"errors"
	"net/http"

	"taskboard.org/internal/api"
	"taskboard.org/internal/session"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", "Log in", nil)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", "Register", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := formValue(r, "email")
	password := r.FormValue("password")

	err := s.sessions.Login(r.Context(), w, email, password)
	if err == nil {
		redirectFlash(w, r, "/dashboard", "success", "Welcome back.")
		return
	}
	if errors.Is(err, session.ErrMissingFields) {
		redirectFlash(w, r, "/login", "error", "Email and password are required.")
		return
	}
	redirectFlash(w, r, "/login", "error", api.Message(err, "Login failed. Please try again."))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	reg := api.Registration{
		Name:                 formValue(r, "name"),
		Email:                formValue(r, "email"),
		Password:             r.FormValue("password"),
		PasswordConfirmation: r.FormValue("password_confirmation"),
	}

	err := s.sessions.Register(r.Context(), w, reg)
	if err == nil {
		redirectFlash(w, r, "/dashboard", "success", "Account created.")
		return
	}
	switch {
	case errors.Is(err, session.ErrMissingFields):
		redirectFlash(w, r, "/register", "error", "All fields are required.")
	case errors.Is(err, session.ErrPasswordMismatch):
		redirectFlash(w, r, "/register", "error", "Passwords do not match.")
	default:
		redirectFlash(w, r, "/register", "error", api.Message(err, "Registration failed. Please try again."))
	}
}

// handleLogout always lands on the login page with a cleared session, even
// when the backend refused the logout call.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context(), w)
	redirectFlash(w, r, "/login", "info", "You have been logged out.")
}
