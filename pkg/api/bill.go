package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID         string          `json:"id,omitempty"`
	Particular string          `json:"particular"`
	Qty        decimal.Decimal `json:"qty"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
}

type Bill struct {
	ID            string          `json:"id"`
	BillNo        int64           `json:"billNo"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	Date          time.Time       `json:"date"`
	Items         []LineItem      `json:"items"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	AmountInWords string          `json:"amountInWords"`
	CreatedAt     int64           `json:"createdAt"`
}

// ItemInput is a line item as submitted. Amount is recomputed server-side.
type ItemInput struct {
	Particular string          `json:"particular"`
	Qty        decimal.Decimal `json:"qty"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
}

type CreateBillRequest struct {
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	Items         []ItemInput `json:"items"`

	// Date defaults to the time of issue.
	Date *time.Time `json:"date,omitempty"`
}

// Delivery reports the render and email steps run after the bill was saved.
type Delivery struct {
	Rendered       bool     `json:"rendered"`
	EmailAttempted bool     `json:"emailAttempted"`
	Emailed        bool     `json:"emailed"`
	Errors         []string `json:"errors,omitempty"`
}

type CreateBillResponse struct {
	Bill      *Bill    `json:"bill"`
	EmailSent bool     `json:"emailSent"`
	Delivery  Delivery `json:"delivery"`
}

type ListBillsRequest struct {
	BillNo   int64  `json:"billNo,omitempty"`
	Customer string `json:"customer,omitempty"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type GetBillRequest struct {
	ID string `json:"id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

type DeleteBillRequest struct {
	ID string `json:"id"`
}

type DeleteBillResponse struct{}

type GetMonthlyReportRequest struct{}

type MonthSummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Label     string          `json:"label"`
	BillCount int             `json:"billCount"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type GetMonthlyReportResponse struct {
	TotalBills   int             `json:"totalBills"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Monthly      []MonthSummary  `json:"monthly"`
}
