package session_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard.org/internal/api"
	"taskboard.org/internal/backendtest"
	"taskboard.org/internal/permissions"
	"taskboard.org/internal/session"
)

type fixture struct {
	backend *backendtest.Backend
	creds   *session.CredentialFile
	store   *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New()
	srv := backend.Start(t)

	creds, err := session.NewCredentialFile(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	client := api.NewClient(srv.URL, creds)
	store := session.New(api.NewAuthService(client), creds)
	return &fixture{backend: backend, creds: creds, store: store}
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) (string, bool) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value, c.MaxAge >= 0
		}
	}
	return "", false
}

func TestLoginSetsBothCredentialLocations(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")

	rec := httptest.NewRecorder()
	err := f.store.Login(context.Background(), rec, "mara@example.com", "pass1234")
	require.NoError(t, err)

	require.Equal(t, session.Authenticated, f.store.State())
	id := f.store.Identity()
	require.NotNil(t, id)
	require.Equal(t, "Mara", id.Name)
	require.Equal(t, permissions.RoleManager, id.Role)

	token := f.creds.Token()
	require.NotEmpty(t, token, "durable store must hold the credential")

	cookie, live := cookieValue(t, rec, session.DefaultCookieName)
	require.True(t, live, "cookie must be set, not expired")
	require.Equal(t, token, cookie, "cookie and durable store must agree")
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")

	rec := httptest.NewRecorder()
	err := f.store.Login(context.Background(), rec, "mara@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, "These credentials do not match our records.", api.Message(err, "fallback"))

	require.NotEqual(t, session.Authenticated, f.store.State())
	require.Nil(t, f.store.Identity())
	require.Empty(t, f.creds.Token())
	require.Empty(t, rec.Result().Cookies(), "no cookie on failed login")
}

func TestLoginValidatesPresenceBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	before := f.backend.Requests

	rec := httptest.NewRecorder()
	err := f.store.Login(context.Background(), rec, "", "")
	require.ErrorIs(t, err, session.ErrMissingFields)
	require.Equal(t, before, f.backend.Requests, "validation failures must not hit the network")
}

func TestRegisterChecksConfirmationBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	before := f.backend.Requests

	rec := httptest.NewRecorder()
	err := f.store.Register(context.Background(), rec, api.Registration{
		Name:                 "Nils",
		Email:                "nils@example.com",
		Password:             "pass1234",
		PasswordConfirmation: "pass1235",
	})
	require.ErrorIs(t, err, session.ErrPasswordMismatch)
	require.Equal(t, before, f.backend.Requests)
}

func TestRegisterEstablishesSession(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	err := f.store.Register(context.Background(), rec, api.Registration{
		Name:                 "Nils",
		Email:                "nils@example.com",
		Password:             "pass1234",
		PasswordConfirmation: "pass1234",
	})
	require.NoError(t, err)
	require.Equal(t, session.Authenticated, f.store.State())
	require.Equal(t, permissions.RoleMember, f.store.Identity().Role)
	require.NotEmpty(t, f.creds.Token())
}

func TestLogoutClearsBothLocationsEvenWhenRemoteFails(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")

	loginRec := httptest.NewRecorder()
	require.NoError(t, f.store.Login(context.Background(), loginRec, "mara@example.com", "pass1234"))

	f.backend.FailLogout = true
	rec := httptest.NewRecorder()
	f.store.Logout(context.Background(), rec)

	require.Equal(t, session.Anonymous, f.store.State())
	require.Nil(t, f.store.Identity())
	require.Empty(t, f.creds.Token(), "durable store cleared despite remote failure")

	cookie, live := cookieValue(t, rec, session.DefaultCookieName)
	require.Empty(t, cookie)
	require.False(t, live, "cookie must be expired")
}

func TestRestoreWithValidCredential(t *testing.T) {
	f := newFixture(t)
	u := f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")
	require.NoError(t, f.creds.Set(f.backend.MintToken(u.ID)))

	f.store.Restore(context.Background())

	require.Equal(t, session.Authenticated, f.store.State())
	require.Equal(t, u.Email, f.store.Identity().Email)
}

func TestRestoreWithStaleCredentialDegradesSilently(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.creds.Set("not-a-real-token"))

	f.store.Restore(context.Background())

	require.Equal(t, session.Anonymous, f.store.State())
	require.Nil(t, f.store.Identity())
	require.Empty(t, f.creds.Token(), "stale credential must be purged")
}

func TestRestoreWithoutCredential(t *testing.T) {
	f := newFixture(t)
	f.store.Restore(context.Background())
	require.Equal(t, session.Anonymous, f.store.State())
}

func TestSubscribersNotifiedOnStateChanges(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")

	var seen []session.State
	f.store.Subscribe(func() {
		seen = append(seen, f.store.State())
	})

	rec := httptest.NewRecorder()
	require.NoError(t, f.store.Login(context.Background(), rec, "mara@example.com", "pass1234"))
	f.store.Logout(context.Background(), httptest.NewRecorder())

	require.Equal(t, []session.State{session.Authenticated, session.Anonymous}, seen)
}

func TestResetReturnsToInitialState(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser("Mara", "mara@example.com", "pass1234", "manager")
	require.NoError(t, f.store.Login(context.Background(), httptest.NewRecorder(), "mara@example.com", "pass1234"))

	f.store.Reset()

	require.Equal(t, session.Unknown, f.store.State())
	require.Nil(t, f.store.Identity())
	require.Empty(t, f.creds.Token())
}
