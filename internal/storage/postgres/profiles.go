package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// GetProfile retrieves the owner's business profile. JSONB sections decode
// straight into their structs.
func (s *Store) GetProfile(ctx context.Context, ownerID string) (*models.BusinessProfile, error) {
	p := &models.BusinessProfile{}
	var businessType string
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, business_name, owner_name, business_type, gst_number, pan_number,
		       address, contact, bank, invoice_settings, logo_url, created_at, updated_at
		FROM business_profiles WHERE owner_id = $1`, ownerID,
	).Scan(
		&p.ID, &p.OwnerID, &p.BusinessName, &p.OwnerName, &businessType, &p.GSTNumber, &p.PANNumber,
		&p.Address, &p.Contact, &p.Bank, &p.InvoiceSettings, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile for owner %s: %w", ownerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.BusinessType = models.BusinessType(businessType)
	return p, nil
}

// UpsertProfile creates or replaces the owner's business profile.
func (s *Store) UpsertProfile(ctx context.Context, p *models.BusinessProfile) error {
	now := time.Now().Unix()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	err := s.pool.QueryRow(ctx, `
		INSERT INTO business_profiles (id, owner_id, business_name, owner_name, business_type, gst_number,
			pan_number, address, contact, bank, invoice_settings, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (owner_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			owner_name = EXCLUDED.owner_name,
			business_type = EXCLUDED.business_type,
			gst_number = EXCLUDED.gst_number,
			pan_number = EXCLUDED.pan_number,
			address = EXCLUDED.address,
			contact = EXCLUDED.contact,
			bank = EXCLUDED.bank,
			invoice_settings = EXCLUDED.invoice_settings,
			logo_url = EXCLUDED.logo_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		p.ID, p.OwnerID, p.BusinessName, p.OwnerName, string(p.BusinessType), p.GSTNumber,
		p.PANNumber, p.Address, p.Contact, p.Bank, p.InvoiceSettings, p.LogoURL, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
