package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role carried by a user and its session token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a registered account. Business owners are users with
// RoleUser; administrators manage accounts but own no bills themselves.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the login name (unique).
	Username string

	// DisplayName is shown on rendered bills ("Generated by ...").
	DisplayName string

	// Role is admin or user.
	Role Role

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(username, displayName, passwordHash string, role Role) *User {
	now := time.Now().Unix()
	if displayName == "" {
		displayName = username
	}
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
