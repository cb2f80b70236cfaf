// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by
	// another owner.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBillNo is returned by CreateBill when (owner_id, bill_no)
	// is already taken.
	ErrDuplicateBillNo = errors.New("bill number already used for owner")

	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
)

// BillTotal is the slice of a bill needed for reporting.
type BillTotal struct {
	Date       time.Time
	GrandTotal decimal.Decimal
}

// BillStore persists bills. Every read and delete is scoped to an owner.
type BillStore interface {
	// CreateBill persists a bill and its items in one transaction.
	// bill.ID and item IDs are generated if empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill returns the owner's bill with its items, or ErrNotFound.
	GetBill(ctx context.Context, ownerID, billID string) (*models.Bill, error)

	// ListBills returns the owner's bills matching filter, highest BillNo first.
	ListBills(ctx context.Context, ownerID string, filter models.BillFilter) ([]*models.Bill, error)

	// DeleteBill removes the owner's bill, or returns ErrNotFound.
	DeleteBill(ctx context.Context, ownerID, billID string) error

	// MaxBillNumber returns the owner's highest bill number; ok is false when
	// the owner has no bills.
	MaxBillNumber(ctx context.Context, ownerID string) (max int64, ok bool, err error)

	// ListBillTotals returns date and grand total of every bill of the owner.
	ListBillTotals(ctx context.Context, ownerID string) ([]BillTotal, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ProfileStore persists one business profile per owner.
type ProfileStore interface {
	// GetProfile returns the owner's profile or ErrNotFound.
	GetProfile(ctx context.Context, ownerID string) (*models.BusinessProfile, error)

	// UpsertProfile creates the owner's profile or replaces its fields.
	// ID and CreatedAt of an existing profile are preserved and written back.
	UpsertProfile(ctx context.Context, profile *models.BusinessProfile) error
}

// CustomerStore persists an owner's saved customers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	ListCustomers(ctx context.Context, ownerID string) ([]*models.Customer, error)
}

// Store defines the full persistence surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	BillStore
	UserStore
	ProfileStore
	CustomerStore

	// Close releases any resources held by the store.
	Close() error
}
