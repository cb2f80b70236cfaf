package calculator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
)

// BillForReport is the minimal bill information needed for aggregation.
type BillForReport struct {
	Date       time.Time
	GrandTotal decimal.Decimal
}

type monthKey struct {
	year  int
	month time.Month
}

// AggregateMonthly groups bills by UTC calendar month, most recent first, and
// totals the revenue across all of them.
func AggregateMonthly(bills []BillForReport) *models.MonthlyReport {
	report := &models.MonthlyReport{
		TotalBills:   len(bills),
		TotalRevenue: decimal.Zero,
		Monthly:      []models.MonthSummary{},
	}

	buckets := make(map[monthKey]*models.MonthSummary)
	for _, bill := range bills {
		report.TotalRevenue = report.TotalRevenue.Add(bill.GrandTotal)

		date := bill.Date.UTC()
		key := monthKey{year: date.Year(), month: date.Month()}
		bucket, exists := buckets[key]
		if !exists {
			bucket = &models.MonthSummary{
				Year:    key.year,
				Month:   int(key.month),
				Label:   fmt.Sprintf("%d/%d", int(key.month), key.year),
				Revenue: decimal.Zero,
			}
			buckets[key] = bucket
		}
		bucket.BillCount++
		bucket.Revenue = bucket.Revenue.Add(bill.GrandTotal)
	}

	for _, bucket := range buckets {
		report.Monthly = append(report.Monthly, *bucket)
	}
	sort.Slice(report.Monthly, func(i, j int) bool {
		a, b := report.Monthly[i], report.Monthly[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})

	return report
}
