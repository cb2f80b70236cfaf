package billing

import (
	"context"
	"strings"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// CustomerInput is a customer to save.
type CustomerInput struct {
	Name    string `validate:"required"`
	Phone   string
	Email   string `validate:"omitempty,email"`
	Address string
}

// Customers manages an owner's saved customers.
type Customers struct {
	store storage.CustomerStore
}

func NewCustomers(store storage.CustomerStore) *Customers {
	return &Customers{store: store}
}

// Create saves a customer for the owner.
func (c *Customers) Create(ctx context.Context, ownerID string, in CustomerInput) (*models.Customer, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		hint := "Customer name is required"
		if in.Name != "" {
			hint = "Customer email is not a valid address"
		}
		return nil, ierr.WithError(err).WithHint(hint).Mark(ierr.ErrValidation)
	}

	customer := &models.Customer{
		OwnerID: ownerID,
		Name:    in.Name,
		Phone:   strings.TrimSpace(in.Phone),
		Email:   in.Email,
		Address: strings.TrimSpace(in.Address),
	}
	if err := c.store.CreateCustomer(ctx, customer); err != nil {
		return nil, storeError(err, "customers")
	}
	return customer, nil
}

// List returns the owner's customers, newest first.
func (c *Customers) List(ctx context.Context, ownerID string) ([]*models.Customer, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	customers, err := c.store.ListCustomers(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "customers")
	}
	return customers, nil
}
