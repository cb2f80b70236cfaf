package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/samber/lo"

	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// BillService implements the Connect BillService.
type BillService struct {
	issuer  *billing.Issuer
	queries *billing.Queries
	logger  *slog.Logger
}

var _ apiconnect.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService.
func NewBillService(issuer *billing.Issuer, queries *billing.Queries, logger *slog.Logger) *BillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillService{issuer: issuer, queries: queries, logger: logger}
}

// CreateBill issues a bill for the caller and reports whether it was emailed.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateBill request received",
		"owner_id", ownerID,
		"customer", req.Msg.CustomerName,
		"items_count", len(req.Msg.Items),
	)

	issue := billing.IssueRequest{
		OwnerID:       ownerID,
		CustomerName:  req.Msg.CustomerName,
		CustomerEmail: req.Msg.CustomerEmail,
		Items:         toItemInputs(req.Msg.Items),
	}
	if req.Msg.Date != nil {
		issue.Date = *req.Msg.Date
	}

	result, err := s.issuer.IssueBill(ctx, issue)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.CreateBillResponse{
		Bill:      toAPIBill(result.Bill),
		EmailSent: result.EmailSent,
		Delivery: api.Delivery{
			Rendered:       result.Delivery.Rendered,
			EmailAttempted: result.Delivery.EmailAttempted,
			Emailed:        result.Delivery.Emailed,
			Errors:         result.Delivery.Errors,
		},
	}), nil
}

// ListBills returns the caller's bills, highest number first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.queries.ListBills(ctx, ownerID, models.BillFilter{
		BillNo:   req.Msg.BillNo,
		Customer: req.Msg.Customer,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ListBillsResponse{
		Bills: lo.Map(bills, func(b *models.Bill, _ int) *api.Bill { return toAPIBill(b) }),
	}), nil
}

// GetBill returns one of the caller's bills.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.queries.GetBill(ctx, ownerID, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: toAPIBill(bill)}), nil
}

// DeleteBill removes one of the caller's bills.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.queries.DeleteBill(ctx, ownerID, req.Msg.ID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// GetMonthlyReport aggregates the caller's bills by month.
func (s *BillService) GetMonthlyReport(ctx context.Context, req *connect.Request[api.GetMonthlyReportRequest]) (*connect.Response[api.GetMonthlyReportResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	report, err := s.queries.MonthlyReport(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Monthly report built",
		"owner_id", ownerID,
		"bills", report.TotalBills,
		"months", len(report.Monthly),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return connect.NewResponse(toAPIReport(report)), nil
}
