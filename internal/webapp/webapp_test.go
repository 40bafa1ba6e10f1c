package webapp_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard.org/internal/api"
	"taskboard.org/internal/backendtest"
	"taskboard.org/internal/session"
	"taskboard.org/internal/webapp"
)

type fixture struct {
	backend *backendtest.Backend
	store   *session.Store
	web     *httptest.Server
	browser *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New()
	backendSrv := backend.Start(t)

	creds, err := session.NewCredentialFile(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, err)
	client := api.NewClient(backendSrv.URL, creds)
	store := session.New(api.NewAuthService(client), creds)

	web := httptest.NewServer(webapp.New(client, store).Handler())
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		store:   store,
		web:     web,
		browser: &http.Client{Jar: jar},
	}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.browser.Get(f.web.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := f.browser.PostForm(f.web.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (f *fixture) login(t *testing.T, email, password string) {
	t.Helper()
	resp, body := f.post(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, "/dashboard", resp.Request.URL.Path)
	require.Contains(t, body, "Welcome back.")
}

var tokenRE = regexp.MustCompile(`name="token" value="([0-9a-f-]+)"`)

func pageToken(t *testing.T, body string) string {
	t.Helper()
	m := tokenRE.FindStringSubmatch(body)
	require.NotNil(t, m, "page carries no action token")
	return m[1]
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/login", resp.Request.URL.Path)
	require.Contains(t, body, "Log in")
}

func TestLoginLandsOnDashboard(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	f.login(t, "mara@example.com", "secret123")

	_, body := f.get(t, "/dashboard")
	require.Contains(t, body, "Mara (manager)")
	require.Contains(t, body, "Dashboard")
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")

	resp, body := f.post(t, "/login", url.Values{
		"email":    {"mara@example.com"},
		"password": {"wrong"},
	})
	require.Equal(t, "/login", resp.Request.URL.Path)
	require.Contains(t, body, "These credentials do not match our records.")
}

func TestAuthenticatedGuestPageBouncesToDashboard(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	f.login(t, "mara@example.com", "secret123")

	resp, _ := f.get(t, "/login")
	require.Equal(t, "/dashboard", resp.Request.URL.Path)
}

// Visible controls follow the permission table: a manager sees member
// management but not team creation; an admin sees both.
func TestTeamControlsFollowRole(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	f.backend.SeedTeam("Platform", "infra work")
	f.login(t, "mara@example.com", "secret123")

	_, body := f.get(t, "/teams")
	require.Contains(t, body, "Platform")
	require.NotContains(t, body, "New team", "manager must not see the create form")

	f2 := newFixture(t)
	f2.backend.SeedUser("Ada", "ada@example.com", "secret123", "admin")
	f2.backend.SeedTeam("Platform", "infra work")
	f2.login(t, "ada@example.com", "secret123")

	_, body = f2.get(t, "/teams")
	require.Contains(t, body, "New team")
}

func TestAdminCreatesTeam(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Ada", "ada@example.com", "secret123", "admin")
	f.login(t, "ada@example.com", "secret123")

	_, listBody := f.get(t, "/teams")
	token := pageToken(t, listBody)

	resp, body := f.post(t, "/teams/create", url.Values{
		"token":       {token},
		"name":        {"Design"},
		"description": {"visual work"},
	})
	require.Contains(t, body, "Team created.")
	require.True(t, strings.HasPrefix(resp.Request.URL.Path, "/teams/"))
	require.Contains(t, body, "Design")
}

func TestActionTokenReplayDoesNotRepeat(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Ada", "ada@example.com", "secret123", "admin")
	f.login(t, "ada@example.com", "secret123")

	_, listBody := f.get(t, "/teams")
	token := pageToken(t, listBody)

	form := url.Values{"token": {token}, "name": {"Design"}}
	_, body := f.post(t, "/teams/create", form)
	require.Contains(t, body, "Team created.")

	_, body = f.post(t, "/teams/create", form)
	require.Contains(t, body, "That action was already submitted.")

	_, listBody = f.get(t, "/teams")
	require.Equal(t, 1, strings.Count(listBody, ">Design</a>"))
}

func TestMemberCannotPostTeamCreate(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Milo", "milo@example.com", "secret123", "member")
	f.login(t, "milo@example.com", "secret123")

	// A crafted post must be rejected server-side even though the form is
	// never rendered for this role.
	_, body := f.post(t, "/teams/create", url.Values{
		"token": {"forged"},
		"name":  {"Rogue"},
	})
	require.Contains(t, body, "You do not have permission to do that.")

	_, listBody := f.get(t, "/teams")
	require.NotContains(t, listBody, "Rogue")
}

func TestManagerAddsMemberByEmail(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	f.backend.SeedUser("Milo", "milo@example.com", "secret123", "member")
	team := f.backend.SeedTeam("Platform", "")
	f.login(t, "mara@example.com", "secret123")

	teamPath := "/teams/" + itoa(team.ID)
	_, detail := f.get(t, teamPath)
	token := pageToken(t, detail)

	_, body := f.post(t, teamPath+"/members/add", url.Values{
		"token": {token},
		"email": {"milo@example.com"},
	})
	require.Contains(t, body, "Milo added to the team.")
	require.Contains(t, body, "milo@example.com")
}

func TestUnknownMemberEmailSurfacesBackendMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	team := f.backend.SeedTeam("Platform", "")
	f.login(t, "mara@example.com", "secret123")

	teamPath := "/teams/" + itoa(team.ID)
	_, detail := f.get(t, teamPath)
	token := pageToken(t, detail)

	_, body := f.post(t, teamPath+"/members/add", url.Values{
		"token": {token},
		"email": {"ghost@example.com"},
	})
	require.Contains(t, body, "No user found with this email address.")
}

func TestProjectAndTaskFlow(t *testing.T) {
	f := newFixture(t)
	user := f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	team := f.backend.SeedTeam("Platform", "")
	f.login(t, "mara@example.com", "secret123")

	// Create a project from the projects page.
	_, listBody := f.get(t, "/projects")
	token := pageToken(t, listBody)
	resp, body := f.post(t, "/projects/create", url.Values{
		"token":   {token},
		"name":    {"Migration"},
		"team_id": {itoa(team.ID)},
	})
	require.Contains(t, body, "Project created.")
	projectPath := resp.Request.URL.Path

	// Create a task inside it.
	token = pageToken(t, body)
	projectID := strings.TrimPrefix(projectPath, "/projects/")
	_, body = f.post(t, "/tasks/create", url.Values{
		"token":      {token},
		"project_id": {projectID},
		"title":      {"Cut over DNS"},
		"priority":   {"high"},
	})
	require.Contains(t, body, "Task created.")
	require.Contains(t, body, "Cut over DNS")

	// Assign it. The manager holds tasks.assign; user must appear in team.
	_, body = f.post(t, "/teams/"+itoa(team.ID)+"/members/add", url.Values{
		"token": {pageToken(t, body)},
		"email": {"mara@example.com"},
	})
	require.Contains(t, body, "added to the team")

	_, projBody := f.get(t, projectPath)
	taskIDRE := regexp.MustCompile(`/tasks/(\d+)/assign`)
	m := taskIDRE.FindStringSubmatch(projBody)
	require.NotNil(t, m)
	_, body = f.post(t, "/tasks/"+m[1]+"/assign", url.Values{
		"token":       {pageToken(t, projBody)},
		"project_id":  {projectID},
		"assigned_to": {itoa(user.ID)},
	})
	require.Contains(t, body, "Task assignment updated.")
	require.Contains(t, body, "Mara")
}

func TestLogoutClearsSessionAndGuards(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "secret123", "manager")
	f.login(t, "mara@example.com", "secret123")

	resp, body := f.post(t, "/logout", nil)
	require.Equal(t, "/login", resp.Request.URL.Path)
	require.Contains(t, body, "You have been logged out.")
	require.False(t, f.store.Authenticated())

	resp, _ = f.get(t, "/teams")
	require.Equal(t, "/login", resp.Request.URL.Path)
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)

	resp, body = f.get(t, "/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"ready"`)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
