// Package backendtest provides an in-process fake of the remote REST
// backend, good enough for session and page-handler tests: bearer tokens
// are real HS256 JWTs, envelope wrapping can be toggled per instance, and
// failure modes can be forced.
package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard.org/internal/api"
)

const tokenTTL = 24 * time.Hour

type account struct {
	user     api.User
	password string
}

// Backend holds the fake's world state. Zero value is not usable; call New.
type Backend struct {
	mu       sync.Mutex
	secret   []byte
	nextID   int64
	users    map[int64]*account
	teams    map[int64]*api.Team
	members  map[int64][]api.TeamMember
	projects map[int64]*api.Project
	tasks    map[int64]*api.Task
	revoked  map[string]bool

	// Wrap controls whether responses use the {data, message} envelope or
	// the bare payload shape. Both occur in the wild.
	Wrap bool
	// FailLogout forces POST /logout to answer 500.
	FailLogout bool
	// Requests counts every request received.
	Requests int
}

func New() *Backend {
	return &Backend{
		secret:   []byte("backendtest-secret"),
		users:    make(map[int64]*account),
		teams:    make(map[int64]*api.Team),
		members:  make(map[int64][]api.TeamMember),
		projects: make(map[int64]*api.Project),
		tasks:    make(map[int64]*api.Task),
		revoked:  make(map[string]bool),
		Wrap:     true,
	}
}

// Start runs the fake on an httptest server torn down with the test.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// SeedUser registers an account directly in the world state.
func (b *Backend) SeedUser(name, email, password, role string) api.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := api.User{
		ID:        b.nextID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	b.users[u.ID] = &account{user: u, password: password}
	return u
}

// SeedTeam creates a team directly in the world state.
func (b *Backend) SeedTeam(name, description string) api.Team {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	team := api.Team{
		ID:        b.nextID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if description != "" {
		team.Description = &description
	}
	b.teams[team.ID] = &team
	return team
}

// SeedProject creates a project directly in the world state.
func (b *Backend) SeedProject(name string, teamID int64, status api.ProjectStatus) api.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := api.Project{
		ID:        b.nextID,
		Name:      name,
		TeamID:    teamID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	b.projects[p.ID] = &p
	return p
}

// SeedTask creates a task directly in the world state.
func (b *Backend) SeedTask(title string, projectID int64, status api.TaskStatus, priority api.TaskPriority) api.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	task := api.Task{
		ID:        b.nextID,
		Title:     title,
		ProjectID: projectID,
		Status:    status,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	b.tasks[task.ID] = &task
	return task
}

// MintToken issues a valid bearer credential for a seeded user, bypassing
// the login endpoint.
func (b *Backend) MintToken(userID int64) string {
	token, err := b.sign(userID)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) sign(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    "taskboard-backend",
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) authenticate(r *http.Request) (*api.User, string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, "", false
	}
	raw := strings.TrimSpace(header[len("Bearer "):])
	if raw == "" || b.revoked[raw] {
		return nil, "", false
	}
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return b.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, "", false
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, "", false
	}
	acct, ok := b.users[id]
	if !ok {
		return nil, "", false
	}
	user := acct.user
	return &user, raw, true
}
