// Package calculator holds the pure money computations behind a bill:
// line amounts, grand totals, totals in words and monthly aggregates.
package calculator

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyParticular = errors.New("particular must not be empty")
	ErrNonPositiveQty  = errors.New("qty must be greater than zero")
	ErrNegativeRate    = errors.New("rate must not be negative")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrAmountTooLarge  = errors.New("amount is too large")
)

// Item is the caller-supplied part of a line item.
type Item struct {
	Particular string
	Qty        decimal.Decimal
	Rate       decimal.Decimal
}

// PricedItem is an Item with its derived amount.
type PricedItem struct {
	Item
	Amount decimal.Decimal
}

// LineAmount returns qty × rate.
func LineAmount(qty, rate decimal.Decimal) decimal.Decimal {
	return qty.Mul(rate)
}

// ValidateItem rejects blank particulars, qty <= 0 and rate < 0.
func ValidateItem(item Item) error {
	if strings.TrimSpace(item.Particular) == "" {
		return ErrEmptyParticular
	}
	if !item.Qty.IsPositive() {
		return ErrNonPositiveQty
	}
	if item.Rate.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}

// PriceItems derives the amount of every item, in order.
func PriceItems(items []Item) []PricedItem {
	priced := make([]PricedItem, len(items))
	for i, item := range items {
		priced[i] = PricedItem{
			Item:   item,
			Amount: LineAmount(item.Qty, item.Rate),
		}
	}
	return priced
}

// GrandTotal sums the item amounts. An empty list totals zero.
func GrandTotal(items []PricedItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
