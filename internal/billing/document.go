package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/billdesk/internal/filestore"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/pdf"
	"github.com/mmynk/billdesk/internal/storage"
)

// documents assembles what a rendered bill shows besides the bill itself.
// Missing pieces degrade the document rather than failing it.
type documents struct {
	store  storage.Store
	logos  LogoSource
	logger *slog.Logger
}

// renderedDoc is a document and its PDF bytes.
type renderedDoc struct {
	doc pdf.Document
	pdf []byte
}

// render assembles and renders bill. Callers run it under the render
// deadline, which covers the profile and logo reads too.
func (d *documents) render(ctx context.Context, r Renderer, bill *models.Bill) (renderedDoc, error) {
	doc := d.build(ctx, bill)
	out, err := r.Render(ctx, doc)
	if err != nil {
		return renderedDoc{}, err
	}
	return renderedDoc{doc: doc, pdf: out}, nil
}

func (d *documents) build(ctx context.Context, bill *models.Bill) pdf.Document {
	doc := pdf.Document{Bill: bill}

	profile, err := d.store.GetProfile(ctx, bill.OwnerID)
	switch {
	case err == nil:
		doc.Profile = profile
	case errors.Is(err, storage.ErrNotFound):
	default:
		d.logger.Warn("Failed to load profile for bill", "owner_id", bill.OwnerID, "bill_id", bill.ID, "error", err)
	}

	if owner, err := d.store.GetUserByID(ctx, bill.OwnerID); err == nil {
		doc.GeneratedBy = owner.DisplayName
	}

	if doc.Profile != nil && doc.Profile.LogoURL != "" && d.logos != nil {
		logo, err := d.logos.Open(ctx, doc.Profile.LogoURL)
		if err != nil {
			d.logger.Warn("Failed to load logo", "owner_id", bill.OwnerID, "url", doc.Profile.LogoURL, "error", err)
			return doc
		}
		img, err := filestore.SniffImage(logo)
		if err != nil || img.PDFType == "" {
			d.logger.Debug("Logo cannot be printed", "owner_id", bill.OwnerID, "mime", img.MIME)
			return doc
		}
		doc.Logo, doc.LogoType = logo, img.PDFType
	}
	return doc
}
