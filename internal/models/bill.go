package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FirstBillNumber is the number given to an owner's first bill.
const FirstBillNumber int64 = 2501

// Bill is an issued invoice. Bills are immutable once persisted; the only
// later mutation is deletion.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// OwnerID is the user that issued the bill. Never empty.
	OwnerID string

	// BillNo is unique and strictly increasing per owner, starting at
	// FirstBillNumber.
	BillNo int64

	// CustomerName is the free-text name of the billed customer.
	CustomerName string

	// CustomerEmail is where the bill was emailed, if anywhere.
	CustomerEmail string

	// Date is the issue time. Defaults to the creation time.
	Date time.Time

	// Items are the ordered line items.
	Items []LineItem

	// GrandTotal is the sum of Items[].Amount.
	GrandTotal decimal.Decimal

	// AmountInWords renders GrandTotal, e.g. "RUPEES ONE THOUSAND TWO HUNDRED ONLY".
	AmountInWords string

	// CreatedAt is the Unix timestamp when the record was stored.
	CreatedAt int64
}

// LineItem is one row of a bill.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Particular describes the goods or service.
	Particular string

	Qty  decimal.Decimal
	Rate decimal.Decimal

	// Amount is always Qty × Rate.
	Amount decimal.Decimal
}

// BillFilter narrows an owner's bill listing. Zero values mean "no filter".
type BillFilter struct {
	// BillNo matches exactly.
	BillNo int64

	// Customer matches customer names case-insensitively as a substring.
	Customer string
}
