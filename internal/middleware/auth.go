package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/internal/auth"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/models"
)

// TokenCookie is the cookie a browser session carries its token in.
const TokenCookie = "token"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UsernameKey is the context key for the authenticated username.
	UsernameKey contextKey = "username"
	// RoleKey is the context key for the authenticated user's role.
	RoleKey contextKey = "role"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetUsername extracts the username from the context.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// GetRole extracts the role from the context.
func GetRole(ctx context.Context) models.Role {
	role, _ := ctx.Value(RoleKey).(models.Role)
	return role
}

// WithClaims returns ctx carrying the identity in claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UsernameKey, claims.Username)
	return context.WithValue(ctx, RoleKey, claims.Role)
}

// CurrentOwner returns the owner every bill, profile and customer call is
// scoped to.
func CurrentOwner(ctx context.Context) (string, error) {
	if id := GetUserID(ctx); id != "" {
		return id, nil
	}
	return "", ierr.WithError(auth.ErrMissingToken).
		WithHint("Please log in").
		Mark(ierr.ErrUnauthorized)
}

// TokenFromHeader returns the bearer token, falling back to the session
// cookie. ok is false when neither is present.
func TokenFromHeader(h http.Header) (token string, ok bool, err error) {
	if authHeader := h.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", true, auth.ErrInvalidToken
		}
		return parts[1], true, nil
	}
	r := http.Request{Header: h}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, true, nil
	}
	return "", false, nil
}

func authenticate(jwtManager *auth.JWTManager, h http.Header) (*auth.Claims, error) {
	token, ok, err := TokenFromHeader(h)
	if !ok {
		return nil, auth.ErrMissingToken
	}
	if err != nil {
		return nil, err
	}
	return jwtManager.Validate(token)
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// The token comes from the Authorization header or the session cookie; the
// user ID, username and role are added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			claims, err := authenticate(jwtManager, req.Header())
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if claims, err := authenticate(jwtManager, req.Header()); err == nil {
				ctx = WithClaims(ctx, claims)
			}
			return next(ctx, req)
		}
	}
}

// RequireAdmin rejects callers whose role is not admin. It must run after
// RequireAuth.
func RequireAdmin() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if GetUserID(ctx) == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}
			if GetRole(ctx) != models.RoleAdmin {
				return nil, ierr.ToConnect(ierr.NewError("admin role required").
					WithHint("Admin access required").
					Mark(ierr.ErrPermissionDenied))
			}
			return next(ctx, req)
		}
	}
}

// HTTPAuth is RequireAuth for plain HTTP routes.
func HTTPAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(jwtManager, r.Header)
			if err != nil {
				WriteError(w, ierr.WithError(err).WithHint("Please log in").Mark(ierr.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
