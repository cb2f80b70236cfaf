package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newTestStore(t))

	user, err := a.Register(ctx, " Ravi ", "Ravi Kumar", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ravi", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := a.Register(ctx, "RAVI", "", "another-pass")
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "meena", "", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("bad username", func(t *testing.T) {
		for _, name := range []string{"", "ab", "has space", "semi;colon"} {
			_, err := a.Register(ctx, name, "", "long-enough")
			assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", name)
		}
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "Ravi", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = a.Authenticate(ctx, "ravi", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = a.Authenticate(ctx, "nobody", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	admin, err := EnsureAdmin(ctx, store, "admin", "admin-secret", "Administrator", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, err := EnsureAdmin(ctx, store, "admin", "admin-secret", "Administrator", nil)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID, "seeding is idempotent")

	// Rotating the configured password takes effect.
	_, err = EnsureAdmin(ctx, store, "admin", "rotated-secret", "", nil)
	require.NoError(t, err)
	a := NewPasswordAuthenticator(store)
	_, err = a.Authenticate(ctx, "admin", "rotated-secret")
	assert.NoError(t, err)
	_, err = a.Authenticate(ctx, "admin", "admin-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	t.Run("promotes an existing user", func(t *testing.T) {
		_, err := a.Register(ctx, "owner", "", "owner-pass")
		require.NoError(t, err)
		promoted, err := EnsureAdmin(ctx, store, "owner", "owner-pass", "", nil)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, promoted.Role)
	})

	t.Run("disabled", func(t *testing.T) {
		user, err := EnsureAdmin(ctx, store, "", "", "", nil)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	user := models.NewUser("ravi", "Ravi", "hash", models.RoleAdmin)

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ravi", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-another-secret!!", time.Hour)
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("0123456789abcdef0123456789abcdef", -time.Minute)
		token, err := expired.Generate(user)
		require.NoError(t, err)
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
