package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/calculator"
	"github.com/mmynk/billdesk/internal/email"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/metrics"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/pdf"
	"github.com/mmynk/billdesk/internal/sentry"
	"github.com/mmynk/billdesk/internal/sequence"
	"github.com/mmynk/billdesk/internal/storage"
)

const (
	// DefaultRenderTimeout bounds assembling and rendering a bill PDF.
	DefaultRenderTimeout = 10 * time.Second
	// DefaultEmailTimeout bounds a single email attempt.
	DefaultEmailTimeout = 15 * time.Second
)

// ItemInput is one caller-supplied line item. Amount is accepted for
// compatibility and always recomputed.
type ItemInput struct {
	Particular string
	Qty        decimal.Decimal
	Rate       decimal.Decimal
	Amount     decimal.Decimal
}

// IssueRequest is a bill to issue for OwnerID.
type IssueRequest struct {
	OwnerID       string      `validate:"required"`
	CustomerName  string      `validate:"required"`
	CustomerEmail string      `validate:"omitempty,email"`
	Items         []ItemInput `validate:"min=1"`

	// Date defaults to the issue time.
	Date time.Time
}

// Delivery reports the best-effort steps run after a bill was persisted.
type Delivery struct {
	Rendered       bool
	EmailAttempted bool
	Emailed        bool

	// Errors holds one message per failed step, prefixed with the step name.
	Errors []string
}

// IssueResult is a persisted bill and what happened after persisting it.
type IssueResult struct {
	Bill *models.Bill

	// EmailSent is true only when an email with the PDF attached was
	// accepted by the dispatcher before IssueBill returned.
	EmailSent bool

	Delivery Delivery
}

// Issuer creates bills.
type Issuer struct {
	store     storage.Store
	allocator *sequence.Allocator
	renderer  Renderer
	mailer    email.Dispatcher
	docs      *documents

	renderTimeout time.Duration
	emailTimeout  time.Duration

	metrics *metrics.Metrics
	sentry  *sentry.Service
	logger  *slog.Logger
	now     func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTimeouts bounds the render and email steps.
func WithTimeouts(render, email time.Duration) IssuerOption {
	return func(i *Issuer) {
		if render > 0 {
			i.renderTimeout = render
		}
		if email > 0 {
			i.emailTimeout = email
		}
	}
}

// WithLogos lets rendered bills carry the business logo.
func WithLogos(logos LogoSource) IssuerOption {
	return func(i *Issuer) { i.docs.logos = logos }
}

// WithMetrics records issuance outcomes on m.
func WithMetrics(m *metrics.Metrics) IssuerOption {
	return func(i *Issuer) { i.metrics = m }
}

// WithSentry reports failed delivery steps to s.
func WithSentry(s *sentry.Service) IssuerOption {
	return func(i *Issuer) { i.sentry = s }
}

// WithLogger sets the logger used for issuance and delivery.
func WithLogger(logger *slog.Logger) IssuerOption {
	return func(i *Issuer) {
		if logger != nil {
			i.logger = logger
			i.docs.logger = logger
		}
	}
}

// WithClock overrides the time source used for default bill dates.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an Issuer. A nil mailer disables email.
func NewIssuer(store storage.Store, allocator *sequence.Allocator, renderer Renderer, mailer email.Dispatcher, opts ...IssuerOption) *Issuer {
	if mailer == nil {
		mailer = email.Disabled{}
	}
	i := &Issuer{
		store:         store,
		allocator:     allocator,
		renderer:      renderer,
		mailer:        mailer,
		docs:          &documents{store: store, logger: slog.Default()},
		renderTimeout: DefaultRenderTimeout,
		emailTimeout:  DefaultEmailTimeout,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueBill validates req, persists the bill under the owner's next bill
// number, then renders and emails it. Only validation and persistence
// failures fail the call; render and email failures are reported in the
// result's Delivery.
func (i *Issuer) IssueBill(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := requireOwner(req.OwnerID); err != nil {
		return nil, err
	}
	bill, err := i.prepare(req)
	if err != nil {
		return nil, err
	}

	_, err = i.allocator.Allocate(ctx, req.OwnerID, func(ctx context.Context, billNo int64) error {
		bill.BillNo = billNo
		return i.store.CreateBill(ctx, bill)
	})
	if err != nil {
		if ierr.IsConflict(err) {
			return nil, err
		}
		return nil, ierr.WithError(err).
			WithHint("Could not save the bill, please retry").
			WithReportableDetails(map[string]any{"owner_id": req.OwnerID}).
			Mark(ierr.ErrPersistence)
	}
	i.metrics.BillIssued()
	i.logger.Info("Bill issued",
		"bill_id", bill.ID,
		"bill_no", bill.BillNo,
		"owner_id", bill.OwnerID,
		"grand_total", bill.GrandTotal.String(),
	)

	// The bill is committed; finish delivery even if the caller goes away.
	delivery := i.deliver(context.WithoutCancel(ctx), bill)

	return &IssueResult{
		Bill:      bill,
		EmailSent: delivery.Emailed,
		Delivery:  delivery,
	}, nil
}

// prepare validates req and builds the unnumbered bill with derived fields.
func (i *Issuer) prepare(req IssueRequest) (*models.Bill, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	items := make([]calculator.Item, len(req.Items))
	for n, in := range req.Items {
		item := calculator.Item{
			Particular: strings.TrimSpace(in.Particular),
			Qty:        in.Qty,
			Rate:       in.Rate,
		}
		if err := calculator.ValidateItem(item); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Item %d: %s", n+1, err.Error()).
				Mark(ierr.ErrValidation)
		}
		items[n] = item
	}

	priced := calculator.PriceItems(items)
	total := calculator.GrandTotal(priced)
	words, err := calculator.AmountToWords(total)
	if err != nil {
		hint := "Bill total is invalid"
		if errors.Is(err, calculator.ErrAmountTooLarge) {
			hint = "Bill total is too large"
		}
		return nil, ierr.WithError(err).
			WithHint(hint).
			Mark(ierr.ErrValidation)
	}

	date := req.Date
	if date.IsZero() {
		date = i.now()
	}

	bill := &models.Bill{
		OwnerID:       req.OwnerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		// Stores keep millisecond precision.
		Date:          date.UTC().Truncate(time.Millisecond),
		Items:         make([]models.LineItem, len(priced)),
		GrandTotal:    total,
		AmountInWords: words,
	}
	for n, p := range priced {
		bill.Items[n] = models.LineItem{
			Particular: p.Particular,
			Qty:        p.Qty,
			Rate:       p.Rate,
			Amount:     p.Amount,
		}
	}
	return bill, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ierr.WithError(err).WithHint("Invalid bill").Mark(ierr.ErrValidation)
	}
	fe := verrs[0]
	var hint string
	switch fe.Field() {
	case "CustomerName":
		hint = "Customer name is required"
	case "CustomerEmail":
		hint = "Customer email is not a valid address"
	case "Items":
		hint = "A bill needs at least one item"
	default:
		hint = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return ierr.WithError(err).WithHint(hint).Mark(ierr.ErrValidation)
}

// deliver renders the bill and, when there is a recipient and a PDF, emails
// it. Steps run in that order; email never goes out without the PDF.
func (i *Issuer) deliver(ctx context.Context, bill *models.Bill) Delivery {
	var d Delivery
	log := i.logger.With("bill_id", bill.ID, "bill_no", bill.BillNo, "owner_id", bill.OwnerID)

	start := time.Now()
	out, err := withTimeout(ctx, i.renderTimeout, func(ctx context.Context) (renderedDoc, error) {
		return i.docs.render(ctx, i.renderer, bill)
	})
	if err != nil {
		err = ierr.WithError(err).WithHint("PDF could not be generated").Mark(ierr.ErrRender)
		d.Errors = append(d.Errors, "render: "+err.Error())
		i.metrics.ObserveStep("render", metrics.OutcomeFailed, time.Since(start))
		i.report(ctx, err, bill, "render")
		log.Error("Bill PDF render failed", "error", err)
	} else {
		d.Rendered = true
		i.metrics.ObserveStep("render", metrics.OutcomeOK, time.Since(start))
	}

	if bill.CustomerEmail == "" || !d.Rendered {
		i.metrics.ObserveStep("email", metrics.OutcomeSkipped, 0)
		return d
	}

	d.EmailAttempted = true
	start = time.Now()
	msg := email.BillMessage{
		To:           bill.CustomerEmail,
		CustomerName: bill.CustomerName,
		BillNo:       bill.BillNo,
		BusinessName: out.doc.Profile.DisplayName(),
		PDF:          out.pdf,
	}
	_, err = withTimeout(ctx, i.emailTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, i.mailer.Send(ctx, msg)
	})
	if err != nil {
		err = ierr.WithError(err).WithHint("Email could not be sent").Mark(ierr.ErrDispatch)
		d.Errors = append(d.Errors, "email: "+err.Error())
		i.metrics.ObserveStep("email", metrics.OutcomeFailed, time.Since(start))
		if !errors.Is(err, email.ErrDisabled) {
			i.report(ctx, err, bill, "email")
		}
		log.Warn("Bill email failed", "to", bill.CustomerEmail, "error", err)
		return d
	}

	d.Emailed = true
	i.metrics.ObserveStep("email", metrics.OutcomeOK, time.Since(start))
	log.Info("Bill emailed", "to", bill.CustomerEmail)
	return d
}

func (i *Issuer) report(ctx context.Context, err error, bill *models.Bill, step string) {
	i.sentry.CaptureException(ctx, err, map[string]string{
		"step":     step,
		"bill_id":  bill.ID,
		"owner_id": bill.OwnerID,
	})
}

var _ Renderer = (*pdf.Renderer)(nil)
