package billing

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/models"
)

const exportSheet = "Bills"

// ExportBillsXLSX returns the owner's bills matching filter as a workbook,
// one row per line item.
func (q *Queries) ExportBillsXLSX(ctx context.Context, ownerID string, filter models.BillFilter) ([]byte, error) {
	start := time.Now()
	bills, err := q.ListBills(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, exportError(err)
	}

	headers := []string{"Bill No", "Date", "Customer", "Email", "S.No", "Particular", "Qty", "Rate", "Amount", "Grand Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, bold)
	}

	row := 2
	for _, bill := range bills {
		for n, item := range bill.Items {
			values := []any{
				bill.BillNo,
				bill.Date.UTC().Format("2006-01-02"),
				bill.CustomerName,
				bill.CustomerEmail,
				n + 1,
				item.Particular,
				item.Qty.InexactFloat64(),
				item.Rate.InexactFloat64(),
				item.Amount.InexactFloat64(),
				bill.GrandTotal.InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(exportSheet, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "B", 12)
	_ = f.SetColWidth(exportSheet, "C", "D", 28)
	_ = f.SetColWidth(exportSheet, "F", "F", 40)
	_ = f.SetColWidth(exportSheet, "G", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, exportError(err)
	}

	q.logger.Info("Bills exported",
		"owner_id", ownerID,
		"bills", len(bills),
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func exportError(err error) error {
	return ierr.WithError(err).WithHint("Export could not be generated").Mark(ierr.ErrSystem)
}
