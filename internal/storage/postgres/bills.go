package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

const billColumns = "id, owner_id, bill_no, customer_name, customer_email, date, grand_total::text, amount_in_words, created_at"

// CreateBill persists a bill and its items in one transaction.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO bills (id, owner_id, bill_no, customer_name, customer_email, date, grand_total, amount_in_words, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`,
		bill.ID, bill.OwnerID, bill.BillNo, bill.CustomerName, bill.CustomerEmail,
		bill.Date.UTC(), bill.GrandTotal.String(), bill.AmountInWords, bill.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bill %d for owner %s: %w", bill.BillNo, bill.OwnerID, storage.ErrDuplicateBillNo)
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		batch.Queue(
			`INSERT INTO line_items (id, bill_id, position, particular, qty, rate, amount)
			 VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric)`,
			item.ID, bill.ID, i, item.Particular, item.Qty.String(), item.Rate.String(), item.Amount.String(),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert line items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves an owner's bill with its items.
func (s *Store) GetBill(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+billColumns+" FROM bills WHERE id = $1 AND owner_id = $2", billID, ownerID)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if err := s.attachItems(ctx, []*models.Bill{bill}); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills retrieves an owner's bills, highest bill number first.
func (s *Store) ListBills(ctx context.Context, ownerID string, filter models.BillFilter) ([]*models.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE owner_id = $1"
	args := []any{ownerID}

	if filter.BillNo != 0 {
		args = append(args, filter.BillNo)
		query += fmt.Sprintf(" AND bill_no = $%d", len(args))
	}
	if customer := strings.TrimSpace(filter.Customer); customer != "" {
		args = append(args, "%"+likeEscaper.Replace(customer)+"%")
		query += fmt.Sprintf(` AND customer_name ILIKE $%d ESCAPE '\'`, len(args))
	}
	query += " ORDER BY bill_no DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Bill, error) {
		return scanBill(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bills: %w", err)
	}
	if bills == nil {
		bills = []*models.Bill{}
	}

	if err := s.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// DeleteBill removes an owner's bill; items cascade.
func (s *Store) DeleteBill(ctx context.Context, ownerID, billID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM bills WHERE id = $1 AND owner_id = $2", billID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// MaxBillNumber returns the owner's highest bill number.
func (s *Store) MaxBillNumber(ctx context.Context, ownerID string) (int64, bool, error) {
	var max *int64
	if err := s.pool.QueryRow(ctx, "SELECT MAX(bill_no) FROM bills WHERE owner_id = $1", ownerID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to read max bill number: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// ListBillTotals returns date and grand total of each of the owner's bills.
func (s *Store) ListBillTotals(ctx context.Context, ownerID string) ([]storage.BillTotal, error) {
	rows, err := s.pool.Query(ctx, "SELECT date, grand_total::text FROM bills WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill totals: %w", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.BillTotal, error) {
		var date time.Time
		var total string
		if err := row.Scan(&date, &total); err != nil {
			return storage.BillTotal{}, err
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return storage.BillTotal{}, fmt.Errorf("invalid grand total %q: %w", total, err)
		}
		return storage.BillTotal{Date: date.UTC(), GrandTotal: amount}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bill totals: %w", err)
	}
	return totals, nil
}

func (s *Store) attachItems(ctx context.Context, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	byID := make(map[string]*models.Bill, len(bills))
	ids := make([]string, len(bills))
	for i, bill := range bills {
		byID[bill.ID] = bill
		bill.Items = []models.LineItem{}
		ids[i] = bill.ID
	}

	rows, err := s.pool.Query(ctx,
		`SELECT bill_id, id, particular, qty::text, rate::text, amount::text
		 FROM line_items WHERE bill_id = ANY($1) ORDER BY bill_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID, qty, rate, amount string
		var item models.LineItem
		if err := rows.Scan(&billID, &item.ID, &item.Particular, &qty, &rate, &amount); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.Qty, err = decimal.NewFromString(qty); err != nil {
			return fmt.Errorf("invalid qty %q: %w", qty, err)
		}
		if item.Rate, err = decimal.NewFromString(rate); err != nil {
			return fmt.Errorf("invalid rate %q: %w", rate, err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		if bill, ok := byID[billID]; ok {
			bill.Items = append(bill.Items, item)
		}
	}
	return rows.Err()
}

func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	var total string
	if err := row.Scan(&bill.ID, &bill.OwnerID, &bill.BillNo, &bill.CustomerName, &bill.CustomerEmail,
		&bill.Date, &total, &bill.AmountInWords, &bill.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("invalid grand total %q: %w", total, err)
	}
	bill.GrandTotal = amount
	bill.Date = bill.Date.UTC()
	return bill, nil
}
