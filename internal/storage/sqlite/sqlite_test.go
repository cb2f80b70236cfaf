package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "billdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBill(ownerID string, billNo int64, customer string, date time.Time) *models.Bill {
	qty := decimal.RequireFromString("2")
	rate := decimal.RequireFromString("600.50")
	return &models.Bill{
		OwnerID:      ownerID,
		BillNo:       billNo,
		CustomerName: customer,
		Date:         date,
		Items: []models.LineItem{
			{Particular: "Consulting", Qty: qty, Rate: rate, Amount: qty.Mul(rate)},
			{Particular: "Travel", Qty: decimal.NewFromInt(1), Rate: decimal.Zero, Amount: decimal.Zero},
		},
		GrandTotal:    qty.Mul(rate),
		AmountInWords: "RUPEES ONE THOUSAND TWO HUNDRED ONE ONLY",
	}
}

func TestSQLiteStore_Bills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	t.Run("CreateBill generates IDs and round-trips", func(t *testing.T) {
		bill := testBill("owner-a", 2501, "Acme Traders", date)
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Fatal("Expected bill ID to be generated")
		}
		for i, item := range bill.Items {
			if item.ID == "" {
				t.Errorf("Expected item %d ID to be generated", i)
			}
		}

		got, err := store.GetBill(ctx, "owner-a", bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.BillNo != 2501 {
			t.Errorf("BillNo: got %d, want 2501", got.BillNo)
		}
		if !got.Date.Equal(date) {
			t.Errorf("Date: got %v, want %v", got.Date, date)
		}
		if !got.GrandTotal.Equal(decimal.RequireFromString("1201")) {
			t.Errorf("GrandTotal: got %s, want 1201", got.GrandTotal)
		}
		if len(got.Items) != 2 {
			t.Fatalf("Items: got %d, want 2", len(got.Items))
		}
		if got.Items[0].Particular != "Consulting" || got.Items[1].Particular != "Travel" {
			t.Errorf("Items out of order: %q, %q", got.Items[0].Particular, got.Items[1].Particular)
		}
		if !got.Items[0].Rate.Equal(decimal.RequireFromString("600.5")) {
			t.Errorf("Rate: got %s, want 600.5", got.Items[0].Rate)
		}
	})

	t.Run("duplicate bill number for same owner is rejected", func(t *testing.T) {
		err := store.CreateBill(ctx, testBill("owner-a", 2501, "Other", date))
		if !errors.Is(err, storage.ErrDuplicateBillNo) {
			t.Fatalf("Expected ErrDuplicateBillNo, got %v", err)
		}
	})

	t.Run("same bill number for another owner is allowed", func(t *testing.T) {
		if err := store.CreateBill(ctx, testBill("owner-b", 2501, "Acme Traders", date)); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
	})

	t.Run("GetBill hides other owners' bills", func(t *testing.T) {
		bills, err := store.ListBills(ctx, "owner-b", models.BillFilter{})
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(bills) != 1 {
			t.Fatalf("Expected 1 bill for owner-b, got %d", len(bills))
		}
		_, err = store.GetBill(ctx, "owner-a", bills[0].ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListBills orders and filters", func(t *testing.T) {
		for i, name := range []string{"Beta 100% Ltd", "acme_north", "Gamma"} {
			if err := store.CreateBill(ctx, testBill("owner-a", int64(2502+i), name, date)); err != nil {
				t.Fatalf("CreateBill failed: %v", err)
			}
		}

		all, err := store.ListBills(ctx, "owner-a", models.BillFilter{})
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("Expected 4 bills, got %d", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i-1].BillNo <= all[i].BillNo {
				t.Errorf("Bills not in descending order: %d before %d", all[i-1].BillNo, all[i].BillNo)
			}
		}
		for _, b := range all {
			if len(b.Items) != 2 {
				t.Errorf("Bill %d: expected 2 items, got %d", b.BillNo, len(b.Items))
			}
		}

		tests := []struct {
			name   string
			filter models.BillFilter
			want   []int64
		}{
			{"bill number", models.BillFilter{BillNo: 2503}, []int64{2503}},
			{"customer substring any case", models.BillFilter{Customer: "ACME"}, []int64{2503, 2501}},
			{"percent matches literally", models.BillFilter{Customer: "100%"}, []int64{2502}},
			{"underscore matches literally", models.BillFilter{Customer: "e_n"}, []int64{2503}},
			{"both filters", models.BillFilter{BillNo: 2504, Customer: "acme"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				bills, err := store.ListBills(ctx, "owner-a", tt.filter)
				if err != nil {
					t.Fatalf("ListBills failed: %v", err)
				}
				if len(bills) != len(tt.want) {
					t.Fatalf("got %d bills, want %d", len(bills), len(tt.want))
				}
				for i, b := range bills {
					if b.BillNo != tt.want[i] {
						t.Errorf("bill %d: got %d, want %d", i, b.BillNo, tt.want[i])
					}
				}
			})
		}
	})

	t.Run("MaxBillNumber", func(t *testing.T) {
		max, ok, err := store.MaxBillNumber(ctx, "owner-a")
		if err != nil {
			t.Fatalf("MaxBillNumber failed: %v", err)
		}
		if !ok || max != 2504 {
			t.Errorf("got (%d, %v), want (2504, true)", max, ok)
		}

		_, ok, err = store.MaxBillNumber(ctx, "nobody")
		if err != nil {
			t.Fatalf("MaxBillNumber failed: %v", err)
		}
		if ok {
			t.Error("Expected no max for owner without bills")
		}
	})

	t.Run("ListBillTotals", func(t *testing.T) {
		totals, err := store.ListBillTotals(ctx, "owner-b")
		if err != nil {
			t.Fatalf("ListBillTotals failed: %v", err)
		}
		if len(totals) != 1 {
			t.Fatalf("Expected 1 total, got %d", len(totals))
		}
		if !totals[0].Date.Equal(date) || !totals[0].GrandTotal.Equal(decimal.NewFromInt(1201)) {
			t.Errorf("Unexpected total: %+v", totals[0])
		}
	})

	t.Run("DeleteBill removes bill and items", func(t *testing.T) {
		bills, err := store.ListBills(ctx, "owner-a", models.BillFilter{BillNo: 2504})
		if err != nil || len(bills) != 1 {
			t.Fatalf("ListBills: %v (%d bills)", err, len(bills))
		}
		id := bills[0].ID

		if err := store.DeleteBill(ctx, "owner-b", id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting another owner's bill, got %v", err)
		}
		if err := store.DeleteBill(ctx, "owner-a", id); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, "owner-a", id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		var orphans int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM line_items WHERE bill_id = ?", id).Scan(&orphans); err != nil {
			t.Fatalf("count items: %v", err)
		}
		if orphans != 0 {
			t.Errorf("Expected items to cascade, %d left", orphans)
		}
	})
}

func TestSQLiteStore_CustomerFilterFoldsUnicode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	for i, name := range []string{"ÉMILE Traders", "Øresund Ltd", "Emile Plain"} {
		if err := store.CreateBill(ctx, testBill("owner-a", int64(2501+i), name, date)); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
	}

	tests := []struct {
		customer string
		want     []int64
	}{
		{"émile", []int64{2501}},
		{"ÉMILE", []int64{2501}},
		{"øresund", []int64{2502}},
		{"traders", []int64{2501}},
		{"emile", []int64{2503}},
	}
	for _, tt := range tests {
		t.Run(tt.customer, func(t *testing.T) {
			bills, err := store.ListBills(ctx, "owner-a", models.BillFilter{Customer: tt.customer})
			if err != nil {
				t.Fatalf("ListBills failed: %v", err)
			}
			if len(bills) != len(tt.want) {
				t.Fatalf("got %d bills, want %d", len(bills), len(tt.want))
			}
			for i, b := range bills {
				if b.BillNo != tt.want[i] {
					t.Errorf("bill %d: got %d, want %d", i, b.BillNo, tt.want[i])
				}
			}
		})
	}
}

func TestMigrations_BackfillCustomerNameFold(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	_, err = db.ExecContext(ctx, `
CREATE TABLE bills (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    bill_no INTEGER NOT NULL,
    customer_name TEXT NOT NULL,
    customer_email TEXT NOT NULL DEFAULT '',
    date INTEGER NOT NULL,
    grand_total TEXT NOT NULL,
    amount_in_words TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (owner_id, bill_no)
);
INSERT INTO bills VALUES ('bill-1', 'owner-a', 2501, 'ÉMILE Traders', '', 0, '10', 'RUPEES TEN ONLY', 0);`)
	if err != nil {
		t.Fatalf("Failed to create old schema: %v", err)
	}
	db.Close()

	store, err := New(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	bills, err := store.ListBills(ctx, "owner-a", models.BillFilter{Customer: "émile"})
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	if len(bills) != 1 || bills[0].ID != "bill-1" {
		t.Fatalf("Expected the existing bill to match, got %d bills", len(bills))
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("shopkeeper", "", "hash", models.RoleUser)
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("duplicate username", func(t *testing.T) {
		dup := models.NewUser("shopkeeper", "Other", "hash", models.RoleUser)
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrUsernameTaken) {
			t.Errorf("Expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		byName, err := store.GetUserByUsername(ctx, "shopkeeper")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if byName.ID != user.ID || byName.DisplayName != "shopkeeper" || byName.Role != models.RoleUser {
			t.Errorf("Unexpected user: %+v", byName)
		}
		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		user.Role = models.RoleAdmin
		user.DisplayName = "Head Office"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Role != models.RoleAdmin || got.DisplayName != "Head Office" {
			t.Errorf("Update not persisted: %+v", got)
		}

		users, err := store.ListUsers(ctx)
		if err != nil || len(users) != 1 {
			t.Fatalf("ListUsers: %v (%d users)", err, len(users))
		}

		if err := store.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if err := store.DeleteUser(ctx, user.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_Profiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetProfile(ctx, "owner-a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing profile, got %v", err)
	}

	p := models.NewBusinessProfile("owner-a")
	p.BusinessName = "Sharma Hardware"
	p.Address.City = "Pune"
	p.Bank.IFSC = "HDFC0001234"
	if err := store.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	firstID := p.ID

	update := models.NewBusinessProfile("owner-a")
	update.BusinessName = "Sharma Hardware & Sons"
	update.InvoiceSettings.Terms = "Net 30"
	if err := store.UpsertProfile(ctx, update); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	if update.ID != firstID {
		t.Errorf("Expected profile ID to be preserved: got %s, want %s", update.ID, firstID)
	}

	got, err := store.GetProfile(ctx, "owner-a")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.BusinessName != "Sharma Hardware & Sons" {
		t.Errorf("BusinessName: got %q", got.BusinessName)
	}
	if got.InvoiceSettings.Terms != "Net 30" || got.InvoiceSettings.InvoicePrefix != models.DefaultInvoicePrefix {
		t.Errorf("InvoiceSettings: got %+v", got.InvoiceSettings)
	}
	if got.Address.Country != models.DefaultCountry || got.Address.City != "" {
		t.Errorf("Address: got %+v", got.Address)
	}
}

func TestSQLiteStore_Customers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Acme", "Globex"} {
		if err := store.CreateCustomer(ctx, &models.Customer{OwnerID: "owner-a", Name: name}); err != nil {
			t.Fatalf("CreateCustomer failed: %v", err)
		}
	}
	if err := store.CreateCustomer(ctx, &models.Customer{OwnerID: "owner-b", Name: "Initech"}); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}

	customers, err := store.ListCustomers(ctx, "owner-a")
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("Expected 2 customers, got %d", len(customers))
	}
	for _, c := range customers {
		if c.OwnerID != "owner-a" || c.ID == "" {
			t.Errorf("Unexpected customer: %+v", c)
		}
	}
}
