package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

// ErrNoRefreshToken is returned by Refresh when no refresh token is stored.
var ErrNoRefreshToken = errors.New("no refresh token available")

// User is the authenticated user snapshot.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// LoginInput holds login credentials. Email may also be a CPF or phone.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput holds the new-account form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// CheckUserResult reports whether an identifier is registered.
type CheckUserResult struct {
	Exists bool   `json:"exists"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// AuthService handles login, registration and password recovery.
// Auth calls are never cached.
type AuthService struct {
	client *client.Client
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(c *client.Client, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: c, logger: logger}
}

// Login authenticates and stores the returned tokens and user. Responses
// cached under a previous session are dropped.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Envelope[LoginResult], error) {
	var resp Envelope[LoginResult]
	if err := s.client.Post(ctx, "/auth/login", in, &resp); err != nil {
		return nil, err
	}

	if resp.Success && resp.Data.AccessToken != "" {
		s.client.ClearCache()
		s.client.SetToken(ctx, resp.Data.AccessToken)
		if resp.Data.RefreshToken != "" {
			s.client.SetRefreshToken(ctx, resp.Data.RefreshToken)
		}
		if resp.Data.User != nil {
			s.client.SetUser(ctx, resp.Data.User)
		}
		s.logger.Debug("Session stored", zap.Bool("has_refresh_token", resp.Data.RefreshToken != ""))
	}
	return &resp, nil
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Envelope[User], error) {
	var resp Envelope[User]
	if err := s.client.Post(ctx, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckUser reports whether identifier (email or CPF) is registered.
func (s *AuthService) CheckUser(ctx context.Context, identifier string) (*Envelope[CheckUserResult], error) {
	var resp Envelope[CheckUserResult]
	if err := s.client.Post(ctx, "/auth/check", map[string]string{"identifier": identifier}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the API and clears the local session. Local state is
// cleared even when the request fails; the request error is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Post(ctx, "/auth/logout", struct{}{}, nil)
	if err != nil {
		s.logger.Warn("Logout request failed", zap.Error(err))
	}
	s.client.ClearSession(ctx)
	return err
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var resp Envelope[struct {
		User User `json:"user"`
	}]
	if err := s.client.Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// CurrentUser returns the locally stored user snapshot without a request.
func (s *AuthService) CurrentUser(ctx context.Context) (*User, bool) {
	var u User
	if !s.client.User(ctx, &u) {
		return nil, false
	}
	return &u, true
}

// ForgotPassword requests a password reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp Envelope[struct {
		Message string `json:"message"`
	}]
	if err := s.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	if resp.Data.Message != "" {
		return resp.Data.Message, nil
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return s.client.Post(ctx, "/auth/reset-password", body, nil)
}

// VerifyResetToken reports whether a reset token is still valid.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	var resp Envelope[struct {
		Valid bool `json:"valid"`
	}]
	if err := s.client.Post(ctx, "/auth/verify-reset-token", map[string]string{"token": token}, &resp); err != nil {
		return false, err
	}
	return resp.Data.Valid, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	refresh, ok := s.client.RefreshToken(ctx)
	if !ok {
		return "", ErrNoRefreshToken
	}

	var resp Envelope[struct {
		AccessToken string `json:"access_token"`
	}]
	if err := s.client.Post(ctx, "/auth/refresh", map[string]string{"refresh_token": refresh}, &resp); err != nil {
		return "", err
	}
	if resp.Success && resp.Data.AccessToken != "" {
		s.client.SetToken(ctx, resp.Data.AccessToken)
	}
	return resp.Data.AccessToken, nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.client.IsAuthenticated(ctx)
}
