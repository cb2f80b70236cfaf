package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billdesk/internal/models"
)

// CreateCustomer saves a customer for its owner.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, owner_id, name, phone, email, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Phone, c.Email, c.Address, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// ListCustomers returns the owner's customers, newest first.
func (s *SQLiteStore) ListCustomers(ctx context.Context, ownerID string) ([]*models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, phone, email, address, created_at
		 FROM customers WHERE owner_id = ?
		 ORDER BY created_at DESC, name`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}
