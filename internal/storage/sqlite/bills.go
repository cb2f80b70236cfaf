package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

const billColumns = "id, owner_id, bill_no, customer_name, customer_email, date, grand_total, amount_in_words, created_at"

// CreateBill persists a new bill and its items in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills ("+billColumns+", customer_name_fold) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.OwnerID, bill.BillNo, bill.CustomerName, bill.CustomerEmail,
		bill.Date.UnixMilli(), bill.GrandTotal.String(), bill.AmountInWords, bill.CreatedAt,
		foldName(bill.CustomerName),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bill %d for owner %s: %w", bill.BillNo, bill.OwnerID, storage.ErrDuplicateBillNo)
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO line_items (id, bill_id, position, particular, qty, rate, amount) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.ID, bill.ID, i, item.Particular, item.Qty.String(), item.Rate.String(), item.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves an owner's bill by ID, including its items.
func (s *SQLiteStore) GetBill(ctx context.Context, ownerID, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE id = ? AND owner_id = ?",
		billID, ownerID,
	)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
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
func (s *SQLiteStore) ListBills(ctx context.Context, ownerID string, filter models.BillFilter) ([]*models.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE owner_id = ?"
	args := []interface{}{ownerID}

	if filter.BillNo != 0 {
		query += " AND bill_no = ?"
		args = append(args, filter.BillNo)
	}
	if customer := strings.TrimSpace(filter.Customer); customer != "" {
		query += ` AND customer_name_fold LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, likeEscaper.Replace(foldName(customer)))
	}
	query += " ORDER BY bill_no DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := []*models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	// Release the connection before loading items.
	rows.Close()

	if err := s.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// DeleteBill removes an owner's bill; its items cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, ownerID, billID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ? AND owner_id = ?", billID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// MaxBillNumber returns the owner's highest bill number.
func (s *SQLiteStore) MaxBillNumber(ctx context.Context, ownerID string) (int64, bool, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(bill_no) FROM bills WHERE owner_id = ?", ownerID).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read max bill number: %w", err)
	}
	return max.Int64, max.Valid, nil
}

// ListBillTotals returns the date and grand total of each of the owner's bills.
func (s *SQLiteStore) ListBillTotals(ctx context.Context, ownerID string) ([]storage.BillTotal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, grand_total FROM bills WHERE owner_id = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill totals: %w", err)
	}
	defer rows.Close()

	var totals []storage.BillTotal
	for rows.Next() {
		var dateMillis int64
		var grandTotal string
		if err := rows.Scan(&dateMillis, &grandTotal); err != nil {
			return nil, fmt.Errorf("failed to scan bill total: %w", err)
		}
		total, err := decimal.NewFromString(grandTotal)
		if err != nil {
			return nil, fmt.Errorf("invalid grand total %q: %w", grandTotal, err)
		}
		totals = append(totals, storage.BillTotal{
			Date:       time.UnixMilli(dateMillis).UTC(),
			GrandTotal: total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill totals: %w", err)
	}
	return totals, nil
}

// attachItems loads the line items of all bills in one query.
func (s *SQLiteStore) attachItems(ctx context.Context, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	byID := make(map[string]*models.Bill, len(bills))
	args := make([]interface{}, len(bills))
	for i, bill := range bills {
		byID[bill.ID] = bill
		bill.Items = []models.LineItem{}
		args[i] = bill.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bill_id, id, particular, qty, rate, amount FROM line_items
		 WHERE bill_id IN (?`+repeatPlaceholder(len(bills)-1)+`)
		 ORDER BY bill_id, position`,
		args...,
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
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate line items: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var dateMillis int64
	var grandTotal string
	if err := row.Scan(&bill.ID, &bill.OwnerID, &bill.BillNo, &bill.CustomerName, &bill.CustomerEmail,
		&dateMillis, &grandTotal, &bill.AmountInWords, &bill.CreatedAt); err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(grandTotal)
	if err != nil {
		return nil, fmt.Errorf("invalid grand total %q: %w", grandTotal, err)
	}
	bill.GrandTotal = total
	bill.Date = time.UnixMilli(dateMillis).UTC()
	return bill, nil
}
