package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// openTestStore connects to BILLDESK_TEST_POSTGRES_DSN or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("BILLDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BILLDESK_TEST_POSTGRES_DSN not set")
	}
	store, err := Open(context.Background(), Config{DSN: dsn, DialTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BillLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	bill := &models.Bill{
		OwnerID:      owner,
		BillNo:       models.FirstBillNumber,
		CustomerName: "Acme_Corp",
		Date:         date,
		Items: []models.LineItem{{
			Particular: "Widgets",
			Qty:        decimal.RequireFromString("2.5"),
			Rate:       decimal.RequireFromString("40"),
			Amount:     decimal.RequireFromString("100"),
		}},
		GrandTotal:    decimal.RequireFromString("100"),
		AmountInWords: "RUPEES ONE HUNDRED ONLY",
	}
	require.NoError(t, store.CreateBill(ctx, bill))

	dup := *bill
	dup.ID = ""
	dup.Items = nil
	err := store.CreateBill(ctx, &dup)
	assert.True(t, errors.Is(err, storage.ErrDuplicateBillNo), "got %v", err)

	got, err := store.GetBill(ctx, owner, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(date))
	assert.True(t, got.GrandTotal.Equal(bill.GrandTotal))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Qty.Equal(decimal.RequireFromString("2.5")))

	list, err := store.ListBills(ctx, owner, models.BillFilter{Customer: "p_c"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	max, ok, err := store.MaxBillNumber(ctx, owner)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.FirstBillNumber, max)

	_, err = store.GetBill(ctx, "someone-else", bill.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.DeleteBill(ctx, owner, bill.ID))
	assert.True(t, errors.Is(store.DeleteBill(ctx, owner, bill.ID), storage.ErrNotFound))
}

func TestStore_ProfileUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	p := models.NewBusinessProfile(owner)
	p.BusinessName = "First"
	require.NoError(t, store.UpsertProfile(ctx, p))

	again := models.NewBusinessProfile(owner)
	again.BusinessName = "Second"
	again.Bank.IFSC = "SBIN0000001"
	require.NoError(t, store.UpsertProfile(ctx, again))
	assert.Equal(t, p.ID, again.ID)

	got, err := store.GetProfile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.BusinessName)
	assert.Equal(t, "SBIN0000001", got.Bank.IFSC)
	assert.Equal(t, models.DefaultCountry, got.Address.Country)
}
