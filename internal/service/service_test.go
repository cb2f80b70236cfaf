package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/auth"
	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/email"
	"github.com/mmynk/billdesk/internal/filestore"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/pdf"
	"github.com/mmynk/billdesk/internal/sequence"
	"github.com/mmynk/billdesk/internal/storage/sqlite"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

const (
	testSecret    = "test-secret-test-secret-test-secret"
	adminUsername = "admin"
	adminPassword = "admin-password"
)

// recordingMailer keeps every message it was asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.BillMessage
}

func (m *recordingMailer) Send(_ context.Context, msg email.BillMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type testClients struct {
	server    *httptest.Server
	bills     apiconnect.BillServiceClient
	profiles  apiconnect.ProfileServiceClient
	customers apiconnect.CustomerServiceClient
	auth      apiconnect.AuthServiceClient
	admin     apiconnect.AdminServiceClient
	mailer    *recordingMailer
}

// setupTestServer wires every service against a temp SQLite database and
// serves them over httptest.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := auth.EnsureAdmin(context.Background(), store, adminUsername, adminPassword, "Admin", nil); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	files, err := filestore.NewLocalStore(filepath.Join(dir, "uploads"), "/uploads")
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	renderer := pdf.NewRenderer()
	mailer := &recordingMailer{}

	issuer := billing.NewIssuer(store, sequence.NewAllocator(store, nil), renderer, mailer, billing.WithLogos(files))
	queries := billing.NewQueries(store, renderer, files, 0, nil)
	profiles := billing.NewProfiles(store, files, 0, nil)

	handlers := &Handlers{
		Bills:     NewBillService(issuer, queries, nil),
		Profiles:  NewProfileService(profiles),
		Customers: NewCustomerService(billing.NewCustomers(store)),
		Auth:      NewAuthService(authenticator, store, jwtManager, nil),
		Admin:     NewAdminService(store, authenticator, nil),
		Files:     NewFileHandlers(queries, profiles, 0, nil),
	}

	mux := http.NewServeMux()
	handlers.Mount(mux, MountOptions{
		JWT:     jwtManager,
		Limiter: middleware.NewRateLimiter(60, 5),
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testClients{
		server:    server,
		bills:     apiconnect.NewBillServiceClient(http.DefaultClient, server.URL),
		profiles:  apiconnect.NewProfileServiceClient(http.DefaultClient, server.URL),
		customers: apiconnect.NewCustomerServiceClient(http.DefaultClient, server.URL),
		auth:      apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		admin:     apiconnect.NewAdminServiceClient(http.DefaultClient, server.URL),
		mailer:    mailer,
	}
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func register(t *testing.T, c *testClients, username string) string {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		Password:    "password-" + username,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return resp.Msg.Token
}

func login(t *testing.T, c *testClients, username, password string) string {
	t.Helper()
	resp, err := c.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Username: username,
		Password: password,
	}))
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", username, err)
	}
	return resp.Msg.Token
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestAuthService(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	token := register(t, c, "ravi")

	t.Run("current user from bearer token", func(t *testing.T) {
		resp, err := c.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, token))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.Username != "ravi" || resp.Msg.User.Role != "user" {
			t.Errorf("unexpected user: %+v", resp.Msg.User)
		}
	})

	t.Run("current user from cookie", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Cookie", middleware.TokenCookie+"="+token)
		resp, err := c.auth.GetCurrentUser(ctx, req)
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.Username != "ravi" {
			t.Errorf("expected ravi, got %s", resp.Msg.User.Username)
		}
	})

	t.Run("no token", func(t *testing.T) {
		_, err := c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("login sets the session cookie", func(t *testing.T) {
		resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: "RAVI", Password: "password-ravi"}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.Token == "" {
			t.Error("expected a token")
		}
		if !strings.Contains(resp.Header().Get("Set-Cookie"), middleware.TokenCookie+"=") {
			t.Errorf("expected session cookie, got %q", resp.Header().Get("Set-Cookie"))
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: "ravi", Password: "nope-nope"}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Username: "ravi", Password: "long-enough"}))
		assertCode(t, err, connect.CodeAborted)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Username: "meena", Password: "short"}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("admin logs in like everyone else", func(t *testing.T) {
		token := login(t, c, adminUsername, adminPassword)
		resp, err := c.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, token))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.Role != "admin" {
			t.Errorf("expected admin role, got %s", resp.Msg.User.Role)
		}
	})
}

func TestLoginRateLimit(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	var lastErr error
	for i := 0; i < 10; i++ {
		_, lastErr = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: "ghost", Password: "whatever-1"}))
		if connect.CodeOf(lastErr) == connect.CodeResourceExhausted {
			break
		}
	}
	assertCode(t, lastErr, connect.CodeResourceExhausted)
}

func items(pairs ...string) []api.ItemInput {
	var out []api.ItemInput
	for i := 0; i+2 < len(pairs); i += 3 {
		out = append(out, api.ItemInput{
			Particular: pairs[i],
			Qty:        decimal.RequireFromString(pairs[i+1]),
			Rate:       decimal.RequireFromString(pairs[i+2]),
		})
	}
	return out
}

func TestBillService(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := register(t, c, "alice")
	bob := register(t, c, "bob")

	created, err := c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{
		CustomerName:  "Acme Corp",
		CustomerEmail: "accounts@acme.test",
		Items:         items("Bolts", "2", "500", "Nuts", "4", "50"),
	}, alice))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	bill := created.Msg.Bill

	if bill.BillNo != 2501 {
		t.Errorf("expected bill number 2501, got %d", bill.BillNo)
	}
	if !bill.GrandTotal.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected grand total 1200, got %s", bill.GrandTotal)
	}
	if bill.AmountInWords != "RUPEES ONE THOUSAND TWO HUNDRED ONLY" {
		t.Errorf("unexpected words: %s", bill.AmountInWords)
	}
	if !created.Msg.EmailSent || !created.Msg.Delivery.Rendered {
		t.Errorf("expected rendered and emailed, got %+v", created.Msg.Delivery)
	}
	if len(c.mailer.sent) != 1 || !bytes.HasPrefix(c.mailer.sent[0].PDF, []byte("%PDF")) {
		t.Fatalf("expected one email with a PDF attached")
	}

	t.Run("second bill increments", func(t *testing.T) {
		resp, err := c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{
			CustomerName: "Beta Ltd",
			Items:        items("Consulting", "1", "999.50"),
		}, alice))
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if resp.Msg.Bill.BillNo != 2502 {
			t.Errorf("expected 2502, got %d", resp.Msg.Bill.BillNo)
		}
		if resp.Msg.EmailSent {
			t.Error("no email address means no email")
		}
	})

	t.Run("owners number independently", func(t *testing.T) {
		resp, err := c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{
			CustomerName: "Gamma",
			Items:        items("Tea", "10", "12"),
		}, bob))
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if resp.Msg.Bill.BillNo != 2501 {
			t.Errorf("expected 2501 for a new owner, got %d", resp.Msg.Bill.BillNo)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{
			CustomerName: "  ",
			Items:        items("Bolts", "1", "1"),
		}, alice))
		assertCode(t, err, connect.CodeInvalidArgument)
		var ce *connect.Error
		if !errors.As(err, &ce) || ce.Message() != "Customer name is required" {
			t.Errorf("unexpected message: %v", err)
		}

		_, err = c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{CustomerName: "Acme"}, alice))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := c.bills.CreateBill(ctx, connect.NewRequest(&api.CreateBillRequest{
			CustomerName: "Acme",
			Items:        items("Bolts", "1", "1"),
		}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("list and filter", func(t *testing.T) {
		resp, err := c.bills.ListBills(ctx, withToken(&api.ListBillsRequest{}, alice))
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(resp.Msg.Bills) != 2 || resp.Msg.Bills[0].BillNo != 2502 {
			t.Fatalf("expected 2 bills newest first, got %+v", resp.Msg.Bills)
		}

		resp, err = c.bills.ListBills(ctx, withToken(&api.ListBillsRequest{Customer: "acme"}, alice))
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(resp.Msg.Bills) != 1 || resp.Msg.Bills[0].ID != bill.ID {
			t.Errorf("expected only the Acme bill, got %d bills", len(resp.Msg.Bills))
		}
	})

	t.Run("other owners cannot see the bill", func(t *testing.T) {
		_, err := c.bills.GetBill(ctx, withToken(&api.GetBillRequest{ID: bill.ID}, bob))
		assertCode(t, err, connect.CodeNotFound)
		_, err = c.bills.DeleteBill(ctx, withToken(&api.DeleteBillRequest{ID: bill.ID}, bob))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("monthly report", func(t *testing.T) {
		resp, err := c.bills.GetMonthlyReport(ctx, withToken(&api.GetMonthlyReportRequest{}, alice))
		if err != nil {
			t.Fatalf("GetMonthlyReport failed: %v", err)
		}
		if resp.Msg.TotalBills != 2 {
			t.Errorf("expected 2 bills, got %d", resp.Msg.TotalBills)
		}
		if !resp.Msg.TotalRevenue.Equal(decimal.RequireFromString("2199.5")) {
			t.Errorf("expected revenue 2199.5, got %s", resp.Msg.TotalRevenue)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if _, err := c.bills.DeleteBill(ctx, withToken(&api.DeleteBillRequest{ID: bill.ID}, alice)); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		_, err := c.bills.GetBill(ctx, withToken(&api.GetBillRequest{ID: bill.ID}, alice))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestProfileAndCustomerServices(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token := register(t, c, "ravi")

	resp, err := c.profiles.GetProfile(ctx, withToken(&api.GetProfileRequest{}, token))
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if resp.Msg.Profile.InvoiceSettings.InvoicePrefix != "INV" || resp.Msg.Profile.BusinessType != "Proprietor" {
		t.Errorf("expected defaults, got %+v", resp.Msg.Profile)
	}

	name := "Sharma Traders"
	updated, err := c.profiles.UpdateProfile(ctx, withToken(&api.UpdateProfileRequest{
		BusinessName: &name,
		Bank:         &api.BankDetails{BankName: "SBI", AccountNumber: "0001", IFSC: "SBIN0000001"},
	}, token))
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Msg.Profile.BusinessName != name || updated.Msg.Profile.Bank.IFSC != "SBIN0000001" {
		t.Errorf("update not applied: %+v", updated.Msg.Profile)
	}

	badType := "Cooperative"
	_, err = c.profiles.UpdateProfile(ctx, withToken(&api.UpdateProfileRequest{BusinessType: &badType}, token))
	assertCode(t, err, connect.CodeInvalidArgument)

	created, err := c.customers.CreateCustomer(ctx, withToken(&api.CreateCustomerRequest{Name: "Acme", Email: "ops@acme.test"}, token))
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	list, err := c.customers.ListCustomers(ctx, withToken(&api.ListCustomersRequest{}, token))
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(list.Msg.Customers) != 1 || list.Msg.Customers[0].ID != created.Msg.Customer.ID {
		t.Errorf("expected the created customer, got %+v", list.Msg.Customers)
	}
}

func TestAdminService(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	userToken := register(t, c, "ravi")
	adminToken := login(t, c, adminUsername, adminPassword)

	t.Run("users are forbidden", func(t *testing.T) {
		_, err := c.admin.ListUsers(ctx, withToken(&api.ListUsersRequest{}, userToken))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := c.admin.ListUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	created, err := c.admin.CreateUser(ctx, withToken(&api.CreateUserRequest{
		Username: "meena",
		Password: "meena-password",
	}, adminToken))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Msg.User.Role != "user" {
		t.Errorf("expected default role user, got %s", created.Msg.User.Role)
	}

	list, err := c.admin.ListUsers(ctx, withToken(&api.ListUsersRequest{}, adminToken))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list.Msg.Users) != 3 {
		t.Errorf("expected 3 users, got %d", len(list.Msg.Users))
	}

	t.Run("update", func(t *testing.T) {
		newName := "meenakshi"
		newPassword := "fresh-password"
		resp, err := c.admin.UpdateUser(ctx, withToken(&api.UpdateUserRequest{
			ID:       created.Msg.User.ID,
			Username: &newName,
			Password: &newPassword,
		}, adminToken))
		if err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if resp.Msg.User.Username != newName {
			t.Errorf("expected %s, got %s", newName, resp.Msg.User.Username)
		}
		login(t, c, newName, newPassword)

		_, err = c.admin.UpdateUser(ctx, withToken(&api.UpdateUserRequest{ID: created.Msg.User.ID}, adminToken))
		assertCode(t, err, connect.CodeInvalidArgument)

		_, err = c.admin.UpdateUser(ctx, withToken(&api.UpdateUserRequest{ID: "missing", Username: &newName}, adminToken))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		if _, err := c.admin.DeleteUser(ctx, withToken(&api.DeleteUserRequest{ID: created.Msg.User.ID}, adminToken)); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		_, err := c.admin.DeleteUser(ctx, withToken(&api.DeleteUserRequest{ID: created.Msg.User.ID}, adminToken))
		assertCode(t, err, connect.CodeNotFound)
	})
}

// 1x1 PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestFileRoutes(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	token := register(t, c, "ravi")

	created, err := c.bills.CreateBill(ctx, withToken(&api.CreateBillRequest{
		CustomerName: "Acme",
		Items:        items("Bolts", "3", "25"),
	}, token))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	get := func(path, token string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("pdf", func(t *testing.T) {
		resp := get("/api/bills/"+created.Msg.Bill.ID+"/pdf", token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("unexpected content type %q", ct)
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "bill-2501.pdf") {
			t.Errorf("unexpected disposition %q", cd)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.HasPrefix(body, []byte("%PDF")) {
			t.Error("body is not a PDF")
		}
	})

	t.Run("pdf needs auth", func(t *testing.T) {
		if resp := get("/api/bills/"+created.Msg.Bill.ID+"/pdf", ""); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("pdf of another owner", func(t *testing.T) {
		other := register(t, c, "bob")
		if resp := get("/api/bills/"+created.Msg.Bill.ID+"/pdf", other); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("export", func(t *testing.T) {
		resp := get("/api/bills/export.xlsx", token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
			t.Errorf("unexpected content type %q", ct)
		}
		if resp := get("/api/bills/export.xlsx?billNo=abc", token); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for a bad filter, got %d", resp.StatusCode)
		}
	})

	t.Run("multipart profile update", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("businessName", "Sharma Traders")
		_ = mw.WriteField("invoiceSettings", `{"invoicePrefix":"ST","gstPercentage":12,"terms":"Net 15"}`)
		part, _ := mw.CreateFormFile("logo", "logo.png")
		_, _ = part.Write(tinyPNG)
		_ = mw.Close()

		req, _ := http.NewRequest(http.MethodPost, c.server.URL+"/api/profile", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /api/profile failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, msg)
		}

		var profile api.BusinessProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			t.Fatalf("failed to decode profile: %v", err)
		}
		if profile.BusinessName != "Sharma Traders" || profile.InvoiceSettings.InvoicePrefix != "ST" {
			t.Errorf("fields not applied: %+v", profile)
		}
		if !strings.HasPrefix(profile.LogoURL, "/uploads/logos/") {
			t.Errorf("expected a stored logo, got %q", profile.LogoURL)
		}

		// Rendering with the logo still produces a PDF.
		if resp := get("/api/bills/"+created.Msg.Bill.ID+"/pdf", token); resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 after logo upload, got %d", resp.StatusCode)
		}
	})

	t.Run("bad section json", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("address", "{not json")
		_ = mw.Close()

		req, _ := http.NewRequest(http.MethodPost, c.server.URL+"/api/profile", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST /api/profile failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}
