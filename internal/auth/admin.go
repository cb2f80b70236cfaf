package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// AdminStorage is what seeding the admin account needs.
type AdminStorage interface {
	UserStorage
	UpdateUser(ctx context.Context, user *models.User) error
}

// EnsureAdmin makes sure an admin account with the given credentials exists.
// An existing account of that name is promoted and its password reset to
// match. An empty username disables seeding.
func EnsureAdmin(ctx context.Context, store AdminStorage, username, password, displayName string, logger *slog.Logger) (*models.User, error) {
	if logger == nil {
		logger = slog.Default()
	}
	username = NormalizeUsername(username)
	if username == "" {
		logger.Info("No admin account configured")
		return nil, nil
	}
	if err := ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("admin account: %w", err)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("admin account: %w", ErrWeakPassword)
	}

	existing, err := store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		a := NewPasswordAuthenticator(store)
		user, err := a.CreateWithRole(ctx, username, displayName, password, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
		logger.Info("Admin account created", "user_id", user.ID, "username", username)
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	changed := false
	if existing.Role != models.RoleAdmin {
		existing.Role = models.RoleAdmin
		changed = true
	}
	if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
		hashed, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hashed
		changed = true
	}
	if name := strings.TrimSpace(displayName); name != "" && name != existing.DisplayName {
		existing.DisplayName = name
		changed = true
	}
	if changed {
		if err := store.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update admin: %w", err)
		}
		logger.Info("Admin account updated", "user_id", existing.ID, "username", username)
	}
	return existing, nil
}
