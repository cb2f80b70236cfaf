package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// GetProfile retrieves the owner's business profile.
func (s *SQLiteStore) GetProfile(ctx context.Context, ownerID string) (*models.BusinessProfile, error) {
	query := `
		SELECT id, owner_id, business_name, owner_name, business_type, gst_number, pan_number,
		       address, contact, bank, invoice_settings, logo_url, created_at, updated_at
		FROM business_profiles
		WHERE owner_id = ?
	`

	p := &models.BusinessProfile{}
	var businessType, address, contact, bank, settings string
	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(
		&p.ID, &p.OwnerID, &p.BusinessName, &p.OwnerName, &businessType, &p.GSTNumber, &p.PANNumber,
		&address, &contact, &bank, &settings, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile for owner %s: %w", ownerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.BusinessType = models.BusinessType(businessType)

	sections := []struct {
		raw  string
		dest interface{}
	}{
		{address, &p.Address},
		{contact, &p.Contact},
		{bank, &p.Bank},
		{settings, &p.InvoiceSettings},
	}
	for _, section := range sections {
		if err := json.Unmarshal([]byte(section.raw), section.dest); err != nil {
			return nil, fmt.Errorf("failed to decode profile section: %w", err)
		}
	}

	return p, nil
}

// UpsertProfile creates or replaces the owner's business profile.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *models.BusinessProfile) error {
	now := time.Now().Unix()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	address, err := json.Marshal(p.Address)
	if err != nil {
		return fmt.Errorf("failed to encode address: %w", err)
	}
	contact, err := json.Marshal(p.Contact)
	if err != nil {
		return fmt.Errorf("failed to encode contact: %w", err)
	}
	bank, err := json.Marshal(p.Bank)
	if err != nil {
		return fmt.Errorf("failed to encode bank details: %w", err)
	}
	settings, err := json.Marshal(p.InvoiceSettings)
	if err != nil {
		return fmt.Errorf("failed to encode invoice settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO business_profiles (id, owner_id, business_name, owner_name, business_type, gst_number,
			pan_number, address, contact, bank, invoice_settings, logo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			business_name = excluded.business_name,
			owner_name = excluded.owner_name,
			business_type = excluded.business_type,
			gst_number = excluded.gst_number,
			pan_number = excluded.pan_number,
			address = excluded.address,
			contact = excluded.contact,
			bank = excluded.bank,
			invoice_settings = excluded.invoice_settings,
			logo_url = excluded.logo_url,
			updated_at = excluded.updated_at
	`,
		p.ID, p.OwnerID, p.BusinessName, p.OwnerName, string(p.BusinessType), p.GSTNumber,
		p.PANNumber, string(address), string(contact), string(bank), string(settings), p.LogoURL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	// The row may predate this call; read back its ID and CreatedAt.
	err = s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM business_profiles WHERE owner_id = ?", p.OwnerID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to read back profile: %w", err)
	}
	return nil
}
