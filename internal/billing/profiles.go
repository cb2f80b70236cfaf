package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/filestore"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// DefaultMaxLogoBytes caps logo uploads.
const DefaultMaxLogoBytes = 2 << 20

// ProfileInput is a profile update. Nil fields keep their stored value;
// a non-nil section replaces the whole section.
type ProfileInput struct {
	BusinessName *string
	OwnerName    *string
	BusinessType *models.BusinessType
	GSTNumber    *string
	PANNumber    *string

	Address         *models.Address
	Contact         *models.Contact
	Bank            *models.BankDetails
	InvoiceSettings *models.InvoiceSettings
}

// LogoUpload is an uploaded logo image.
type LogoUpload struct {
	Filename string
	Data     []byte
}

// Profiles reads and upserts business profiles.
type Profiles struct {
	store        storage.ProfileStore
	files        filestore.Store
	cache        *cache.Cache
	maxLogoBytes int64
	logger       *slog.Logger
}

// NewProfiles creates Profiles. files may be nil, in which case logo
// uploads are rejected.
func NewProfiles(store storage.ProfileStore, files filestore.Store, maxLogoBytes int64, logger *slog.Logger) *Profiles {
	if logger == nil {
		logger = slog.Default()
	}
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultMaxLogoBytes
	}
	return &Profiles{
		store:        store,
		files:        files,
		cache:        cache.New(5*time.Minute, 10*time.Minute),
		maxLogoBytes: maxLogoBytes,
		logger:       logger,
	}
}

// Get returns the owner's profile. An owner without one gets an unsaved
// profile carrying the defaults.
func (p *Profiles) Get(ctx context.Context, ownerID string) (*models.BusinessProfile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if cached, ok := p.cache.Get(ownerID); ok {
		profile := *cached.(*models.BusinessProfile)
		return &profile, nil
	}

	profile, err := p.store.GetProfile(ctx, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewBusinessProfile(ownerID), nil
	}
	if err != nil {
		return nil, storeError(err, "profile")
	}

	p.cache.SetDefault(ownerID, profile)
	copied := *profile
	return &copied, nil
}

// Upsert applies in to the owner's profile, creating it on first use, and
// stores logo if given.
func (p *Profiles) Upsert(ctx context.Context, ownerID string, in ProfileInput, logo *LogoUpload) (*models.BusinessProfile, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := validateProfileInput(in); err != nil {
		return nil, err
	}

	profile, err := p.store.GetProfile(ctx, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		profile = models.NewBusinessProfile(ownerID)
	} else if err != nil {
		return nil, storeError(err, "profile")
	}
	applyProfileInput(profile, in)

	if logo != nil && len(logo.Data) > 0 {
		url, err := p.storeLogo(ctx, ownerID, logo)
		if err != nil {
			return nil, err
		}
		profile.LogoURL = url
	}

	if err := p.store.UpsertProfile(ctx, profile); err != nil {
		return nil, storeError(err, "profile")
	}
	p.cache.Delete(ownerID)
	p.logger.Info("Business profile saved", "owner_id", ownerID, "profile_id", profile.ID)
	return profile, nil
}

func (p *Profiles) storeLogo(ctx context.Context, ownerID string, logo *LogoUpload) (string, error) {
	if p.files == nil {
		return "", ierr.NewError("no file store configured").
			WithHint("Logo uploads are not available").
			Mark(ierr.ErrValidation)
	}
	if int64(len(logo.Data)) > p.maxLogoBytes {
		return "", ierr.NewErrorf("logo is %d bytes", len(logo.Data)).
			WithHintf("Logo must be at most %d KB", p.maxLogoBytes/1024).
			Mark(ierr.ErrValidation)
	}
	img, err := filestore.SniffImage(logo.Data)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Logo must be a PNG, JPEG, GIF or WebP image").
			Mark(ierr.ErrValidation)
	}

	key := fmt.Sprintf("logos/%s-%s.%s", ownerID, uuid.New().String(), img.Extension)
	url, err := p.files.Put(ctx, key, logo.Data, img.MIME)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Logo could not be saved, please retry").
			Mark(ierr.ErrPersistence)
	}
	p.logger.Info("Logo stored", "owner_id", ownerID, "url", url, "bytes", len(logo.Data))
	return url, nil
}

func validateProfileInput(in ProfileInput) error {
	if in.BusinessType != nil && !slices.Contains(models.BusinessTypes, *in.BusinessType) {
		return ierr.NewErrorf("unknown business type %q", *in.BusinessType).
			WithHintf("Business type must be one of %v", models.BusinessTypes).
			Mark(ierr.ErrValidation)
	}
	if s := in.InvoiceSettings; s != nil && (s.GSTPercentage < 0 || s.GSTPercentage > 100) {
		return ierr.NewErrorf("gst percentage %v out of range", s.GSTPercentage).
			WithHint("GST percentage must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	if c := in.Contact; c != nil && strings.TrimSpace(c.Email) != "" {
		if err := validate.Var(strings.TrimSpace(c.Email), "email"); err != nil {
			return ierr.WithError(err).
				WithHint("Contact email is not a valid address").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func applyProfileInput(p *models.BusinessProfile, in ProfileInput) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&p.BusinessName, in.BusinessName)
	setString(&p.OwnerName, in.OwnerName)
	setString(&p.GSTNumber, in.GSTNumber)
	setString(&p.PANNumber, in.PANNumber)
	if in.BusinessType != nil {
		p.BusinessType = *in.BusinessType
	}
	if in.Address != nil {
		p.Address = *in.Address
		if p.Address.Country == "" {
			p.Address.Country = models.DefaultCountry
		}
	}
	if in.Contact != nil {
		p.Contact = *in.Contact
	}
	if in.Bank != nil {
		p.Bank = *in.Bank
	}
	if in.InvoiceSettings != nil {
		p.InvoiceSettings = *in.InvoiceSettings
		if p.InvoiceSettings.InvoicePrefix == "" {
			p.InvoiceSettings.InvoicePrefix = models.DefaultInvoicePrefix
		}
	}
}
