package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billdesk/internal/models"
)

func sampleBill(items int) *models.Bill {
	bill := &models.Bill{
		ID:            "bill-1",
		OwnerID:       "owner-1",
		BillNo:        2501,
		CustomerName:  "Acme Traders",
		CustomerEmail: "accounts@acme.test",
		Date:          time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		AmountInWords: "RUPEES ONE THOUSAND TWO HUNDRED ONLY",
	}
	total := decimal.Zero
	for i := 0; i < items; i++ {
		qty := decimal.NewFromInt(int64(i%3 + 1))
		rate := decimal.RequireFromString("100.50")
		amount := qty.Mul(rate)
		total = total.Add(amount)
		bill.Items = append(bill.Items, models.LineItem{
			Particular: fmt.Sprintf("Item %d – hand-finished brass fittings with a description long enough to wrap", i+1),
			Qty:        qty,
			Rate:       rate,
			Amount:     amount,
		})
	}
	bill.GrandTotal = total
	return bill
}

func sampleProfile() *models.BusinessProfile {
	p := models.NewBusinessProfile("owner-1")
	p.BusinessName = "Sharma Hardware"
	p.OwnerName = "R. Sharma"
	p.GSTNumber = "27ABCDE1234F1Z5"
	p.Address.Line1 = "12 MG Road"
	p.Address.City = "Pune"
	p.Bank.BankName = "HDFC Bank"
	p.Bank.AccountNumber = "0012345678"
	p.InvoiceSettings.Terms = "Payment due within 30 days."
	return p
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer()
	doc := Document{Bill: sampleBill(3), Profile: sampleProfile(), GeneratedBy: "shopkeeper"}

	first, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second, "same input must render identical bytes")

	doc.Bill.CustomerName = "Someone Else"
	third, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestRender_WithoutProfile(t *testing.T) {
	out, err := NewRenderer().Render(context.Background(), Document{Bill: sampleBill(1)})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRender_OverflowingItemsAddPages(t *testing.T) {
	r := NewRenderer()

	short, err := r.build(Document{Bill: sampleBill(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, short.PageCount())

	long, err := r.build(Document{Bill: sampleBill(80)})
	require.NoError(t, err)
	assert.Greater(t, long.PageCount(), 1)
}

func TestRender_Errors(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render(context.Background(), Document{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, Document{Bill: sampleBill(1)})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.Render(context.Background(), Document{Bill: sampleBill(1), Logo: []byte("not an image"), LogoType: "PNG"})
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5.5", "5.50"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"123456", "1,23,456.00"},
		{"1234567.891", "12,34,567.89"},
		{"-25000", "-25,000.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
