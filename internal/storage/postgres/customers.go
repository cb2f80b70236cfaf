package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billdesk/internal/models"
)

// CreateCustomer saves a customer for its owner.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (id, owner_id, name, phone, email, address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.OwnerID, c.Name, c.Phone, c.Email, c.Address, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// ListCustomers returns the owner's customers, newest first.
func (s *Store) ListCustomers(ctx context.Context, ownerID string) ([]*models.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, phone, email, address, created_at
		 FROM customers WHERE owner_id = $1 ORDER BY created_at DESC, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	customers, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.Customer])
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers: %w", err)
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return customers, nil
}
