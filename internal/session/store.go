package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"taskboard.org/internal/api"
	"taskboard.org/internal/permissions"
)

// State is the session lifecycle position.
type State int

const (
	// Unknown is the initial state, before any restore attempt.
	Unknown State = iota
	// Restoring means a persisted credential is being resolved remotely.
	Restoring
	// Authenticated means an identity is loaded and requests carry its
	// credential.
	Authenticated
	// Anonymous means no valid credential exists.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Validation failures caught before any network call.
var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Store owns the authenticated identity and the bearer credential. The
// credential lives in two places that must move together: the durable
// credential file read by the API gateway, and the cookie read by the route
// guard. Every mutation here updates both in the same operation.
//
// Construct one Store per process and inject it; Reset exists for tests.
type Store struct {
	auth       *api.AuthService
	creds      *CredentialFile
	cookieName string
	log        zerolog.Logger

	mu       sync.Mutex
	state    State
	identity *permissions.Identity
	subs     []func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCookieName overrides the credential cookie name.
func WithCookieName(name string) StoreOption {
	return func(s *Store) {
		if strings.TrimSpace(name) != "" {
			s.cookieName = name
		}
	}
}

// WithLogger attaches a logger for lifecycle events.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// New builds a session store over the auth service and the durable
// credential file backing the API gateway's token source.
func New(auth *api.AuthService, creds *CredentialFile, opts ...StoreOption) *Store {
	s := &Store{
		auth:       auth,
		creds:      creds,
		cookieName: DefaultCookieName,
		log:        zerolog.Nop(),
		state:      Unknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CookieName returns the name of the navigation-layer credential cookie.
func (s *Store) CookieName() string { return s.cookieName }

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the authenticated identity, or nil when anonymous.
func (s *Store) Identity() *permissions.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Authenticated reports whether an identity is loaded.
func (s *Store) Authenticated() bool {
	return s.State() == Authenticated
}

// Subscribe registers fn to run after every state change. Consumers re-query
// the store instead of receiving state through the callback.
func (s *Store) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Restore resolves a previously persisted credential to an identity. A
// missing credential or a rejected one degrades silently to Anonymous; on
// rejection the stale credential is removed from the durable store so the
// guard and the gateway cannot disagree. The cookie half converges on the
// next response through the route guard.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	token := s.creds.Token()
	if token == "" {
		s.state = Anonymous
		s.mu.Unlock()
		s.notify()
		return
	}
	s.state = Restoring
	s.mu.Unlock()
	s.notify()

	user, err := s.auth.CurrentUser(ctx)

	s.mu.Lock()
	if err != nil {
		if clearErr := s.creds.Clear(); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("clear stale credential")
		}
		s.identity = nil
		s.state = Anonymous
		s.mu.Unlock()
		s.log.Info().Err(err).Msg("session restore failed, degrading to anonymous")
		s.notify()
		return
	}
	s.identity = identityOf(user)
	s.state = Authenticated
	s.mu.Unlock()
	s.log.Info().Int64("user_id", user.ID).Msg("session restored")
	s.notify()
}

// Login exchanges credentials for an identity. On success the credential is
// written to both persistence locations and the identity is set in the same
// operation; on failure existing session state is untouched.
func (s *Store) Login(ctx context.Context, w http.ResponseWriter, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}
	res, err := s.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.establish(w, res)
}

// Register creates an account and starts a session with it. Field presence
// and the password confirmation are checked before any network call.
func (s *Store) Register(ctx context.Context, w http.ResponseWriter, reg api.Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return ErrMissingFields
	}
	if reg.Password != reg.PasswordConfirmation {
		return ErrPasswordMismatch
	}
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	return s.establish(w, res)
}

func (s *Store) establish(w http.ResponseWriter, res api.AuthResult) error {
	s.mu.Lock()
	if err := s.creds.Set(res.Token); err != nil {
		s.mu.Unlock()
		return err
	}
	WriteCookie(w, s.cookieName, res.Token)
	s.identity = identityOf(res.User)
	s.state = Authenticated
	s.mu.Unlock()
	s.log.Info().Int64("user_id", res.User.ID).Str("role", res.User.Role).Msg("session established")
	s.notify()
	return nil
}

// Logout ends the session. The remote call is best-effort: both credential
// locations and the identity are cleared in a deferred step whether or not
// the backend accepted the logout.
func (s *Store) Logout(ctx context.Context, w http.ResponseWriter) {
	defer func() {
		s.clearLocal(w)
		s.notify()
	}()
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
}

// Invalidate drops the session locally without a remote call. Used when the
// backend rejects the credential mid-request.
func (s *Store) Invalidate(w http.ResponseWriter) {
	s.clearLocal(w)
	s.notify()
}

func (s *Store) clearLocal(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.creds.Clear(); err != nil {
		s.log.Error().Err(err).Msg("clear credential file")
	}
	if w != nil {
		ClearCookie(w, s.cookieName)
	}
	s.identity = nil
	s.state = Anonymous
}

// Reset returns the store to its initial state. Test hook.
func (s *Store) Reset() {
	s.mu.Lock()
	_ = s.creds.Clear()
	s.identity = nil
	s.state = Unknown
	s.subs = nil
	s.mu.Unlock()
}

func identityOf(u api.User) *permissions.Identity {
	return &permissions.Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  permissions.Role(u.Role),
	}
}
