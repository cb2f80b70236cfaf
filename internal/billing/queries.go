package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mmynk/billdesk/internal/calculator"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// Queries answers owner-scoped reads over persisted bills.
type Queries struct {
	store         storage.Store
	renderer      Renderer
	docs          *documents
	renderTimeout time.Duration
	logger        *slog.Logger
}

// NewQueries creates Queries. logos may be nil.
func NewQueries(store storage.Store, renderer Renderer, logos LogoSource, renderTimeout time.Duration, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.Default()
	}
	if renderTimeout <= 0 {
		renderTimeout = DefaultRenderTimeout
	}
	return &Queries{
		store:         store,
		renderer:      renderer,
		docs:          &documents{store: store, logos: logos, logger: logger},
		renderTimeout: renderTimeout,
		logger:        logger,
	}
}

// ListBills returns the owner's bills, highest bill number first. A zero
// filter returns everything.
func (q *Queries) ListBills(ctx context.Context, ownerID string, filter models.BillFilter) ([]*models.Bill, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if filter.BillNo < 0 {
		return nil, ierr.NewError("negative bill number filter").
			WithHint("Bill number must be positive").
			Mark(ierr.ErrValidation)
	}
	filter.Customer = strings.TrimSpace(filter.Customer)

	bills, err := q.store.ListBills(ctx, ownerID, filter)
	if err != nil {
		return nil, storeError(err, "bills")
	}
	return bills, nil
}

// GetBill returns one of the owner's bills.
func (q *Queries) GetBill(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	bill, err := q.store.GetBill(ctx, ownerID, billID)
	if err != nil {
		return nil, storeError(err, "Bill")
	}
	return bill, nil
}

// DeleteBill removes one of the owner's bills.
func (q *Queries) DeleteBill(ctx context.Context, ownerID, billID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := q.store.DeleteBill(ctx, ownerID, billID); err != nil {
		return storeError(err, "Bill")
	}
	q.logger.Info("Bill deleted", "bill_id", billID, "owner_id", ownerID)
	return nil
}

// MonthlyReport aggregates the owner's bills by calendar month.
func (q *Queries) MonthlyReport(ctx context.Context, ownerID string) (*models.MonthlyReport, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	totals, err := q.store.ListBillTotals(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "bills")
	}
	return calculator.AggregateMonthly(lo.Map(totals, func(t storage.BillTotal, _ int) calculator.BillForReport {
		return calculator.BillForReport{Date: t.Date, GrandTotal: t.GrandTotal}
	})), nil
}

// RenderedPDF is a rendered bill ready to serve.
type RenderedPDF struct {
	Filename string
	Content  []byte
}

// RenderBillPDF re-renders one of the owner's bills.
func (q *Queries) RenderBillPDF(ctx context.Context, ownerID, billID string) (*RenderedPDF, error) {
	bill, err := q.GetBill(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	out, err := withTimeout(ctx, q.renderTimeout, func(ctx context.Context) (renderedDoc, error) {
		return q.docs.render(ctx, q.renderer, bill)
	})
	if err != nil {
		q.logger.Error("On-demand PDF render failed", "bill_id", bill.ID, "owner_id", ownerID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("PDF could not be generated, please retry").
			Mark(ierr.ErrRender)
	}
	return &RenderedPDF{Filename: fmt.Sprintf("bill-%d.pdf", bill.BillNo), Content: out.pdf}, nil
}
