package api

import "context"

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body. PasswordConfirmation is checked
// client-side before the request is ever made.
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResult pairs the authenticated user with the bearer credential issued
// for it.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// AuthService talks to the backend auth endpoints.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var res AuthResult
	if err := s.client.Post(ctx, "/login", creds, &res); err != nil {
		return AuthResult{}, err
	}
	return res, nil
}

func (s *AuthService) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var res AuthResult
	if err := s.client.Post(ctx, "/register", reg, &res); err != nil {
		return AuthResult{}, err
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/logout", nil, nil)
}

// CurrentUser resolves the persisted credential to its identity. A failure
// here means the credential is stale and the session should degrade.
func (s *AuthService) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := s.client.Get(ctx, "/user", &user); err != nil {
		return User{}, err
	}
	return user, nil
}
