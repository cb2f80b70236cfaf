package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/internal/auth"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         storage.UserStore
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users storage.UserStore, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new business-owner account and signs it in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "username", req.Msg.Username)

	user, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "username", req.Msg.Username, "error", err)
		return nil, authError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	resp := connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token})
	s.setSessionCookie(resp.Header(), token)

	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username)
	return resp, nil
}

// Login authenticates a user, returns a JWT token and sets the session cookie.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if strings.TrimSpace(req.Msg.Username) == "" || req.Msg.Password == "" {
		return nil, ierr.WithError(auth.ErrInvalidCredentials).
			WithHint("Username and password are required").
			Mark(ierr.ErrValidation)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		return nil, authError(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	resp := connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token})
	s.setSessionCookie(resp.Header(), token)

	s.logger.Info("User logged in successfully", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return resp, nil
}

// Logout clears the session cookie. Tokens are stateless; bearer clients
// discard theirs.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	resp := connect.NewResponse(&api.LogoutResponse{})
	cookie := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	resp.Header().Add("Set-Cookie", cookie.String())
	return resp, nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The account was deleted after the token was issued.
			return nil, ierr.WithError(err).WithHint("Please log in").Mark(ierr.ErrUnauthorized)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrPersistence)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

func (s *AuthService) setSessionCookie(h http.Header, token string) {
	cookie := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtManager.TokenDuration().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	h.Add("Set-Cookie", cookie.String())
}

// authError classifies authenticator failures.
func authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ierr.WithError(err).WithHint("Invalid credentials").Mark(ierr.ErrUnauthorized)
	case errors.Is(err, auth.ErrUsernameExists):
		return ierr.WithError(err).WithHint("User already exists").Mark(ierr.ErrConflict)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidUsername):
		return ierr.WithError(err).WithHint(capitalize(err.Error())).Mark(ierr.ErrValidation)
	default:
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isAdmin(ctx context.Context) bool {
	return middleware.GetRole(ctx) == models.RoleAdmin
}
