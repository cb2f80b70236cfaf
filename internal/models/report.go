package models

import "github.com/shopspring/decimal"

// MonthlyReport aggregates an owner's bills by calendar month.
type MonthlyReport struct {
	TotalBills   int
	TotalRevenue decimal.Decimal

	// Monthly is ordered most recent month first.
	Monthly []MonthSummary
}

// MonthSummary is one calendar month of bills.
type MonthSummary struct {
	Year  int
	Month int

	// Label is "M/YYYY", e.g. "3/2026".
	Label string

	BillCount int
	Revenue   decimal.Decimal
}
