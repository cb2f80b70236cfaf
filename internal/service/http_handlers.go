package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mmynk/billdesk/internal/billing"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/pkg/api"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileHandlers serves the routes that move files rather than messages.
type FileHandlers struct {
	queries      *billing.Queries
	profiles     *billing.Profiles
	maxLogoBytes int64
	logger       *slog.Logger
}

func NewFileHandlers(queries *billing.Queries, profiles *billing.Profiles, maxLogoBytes int64, logger *slog.Logger) *FileHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if maxLogoBytes <= 0 {
		maxLogoBytes = billing.DefaultMaxLogoBytes
	}
	return &FileHandlers{queries: queries, profiles: profiles, maxLogoBytes: maxLogoBytes, logger: logger}
}

// Register mounts the routes on mux behind authn.
func (h *FileHandlers) Register(mux *http.ServeMux, authn func(http.Handler) http.Handler) {
	mux.Handle("GET /api/bills/{id}/pdf", authn(http.HandlerFunc(h.BillPDF)))
	mux.Handle("GET /api/bills/export.xlsx", authn(http.HandlerFunc(h.ExportBills)))
	mux.Handle("GET /api/profile", authn(http.HandlerFunc(h.GetProfile)))
	mux.Handle("POST /api/profile", authn(http.HandlerFunc(h.UpdateProfile)))
}

// BillPDF renders one of the caller's bills.
func (h *FileHandlers) BillPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.CurrentOwner(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	out, err := h.queries.RenderBillPDF(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Content)))
	_, _ = w.Write(out.Content)
}

// ExportBills returns the caller's bills as a workbook. It takes the same
// billNo and customer filters as ListBills.
func (h *FileHandlers) ExportBills(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.CurrentOwner(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	filter := models.BillFilter{Customer: r.URL.Query().Get("customer")}
	if s := r.URL.Query().Get("billNo"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			middleware.WriteError(w, ierr.WithError(err).WithHint("Bill number must be a number").Mark(ierr.ErrValidation))
			return
		}
		filter.BillNo = n
	}

	out, err := h.queries.ExportBillsXLSX(r.Context(), ownerID, filter)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bills.xlsx"`)
	_, _ = w.Write(out)
}

// GetProfile returns the caller's profile as JSON.
func (h *FileHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.CurrentOwner(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	profile, err := h.profiles.Get(r.Context(), ownerID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIProfile(profile))
}

// UpdateProfile takes a multipart form: scalar fields, the address, contact,
// bank and invoiceSettings sections as JSON strings, and an optional logo
// file.
func (h *FileHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.CurrentOwner(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxLogoBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxLogoBytes + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		hint := "Profile form could not be read"
		if errors.As(err, &tooLarge) {
			hint = "Upload is too large"
		}
		middleware.WriteError(w, ierr.WithError(err).WithHint(hint).Mark(ierr.ErrValidation))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := profileRequestFromForm(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var logo *billing.LogoUpload
	file, header, err := r.FormFile("logo")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, h.maxLogoBytes+1))
		if err != nil {
			middleware.WriteError(w, ierr.WithError(err).WithHint("Logo could not be read").Mark(ierr.ErrValidation))
			return
		}
		logo = &billing.LogoUpload{Filename: header.Filename, Data: data}
	case errors.Is(err, http.ErrMissingFile):
	default:
		middleware.WriteError(w, ierr.WithError(err).WithHint("Logo could not be read").Mark(ierr.ErrValidation))
		return
	}

	profile, err := h.profiles.Upsert(r.Context(), ownerID, toProfileInput(req), logo)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIProfile(profile))
}

func profileRequestFromForm(r *http.Request) (*api.UpdateProfileRequest, error) {
	values := r.MultipartForm.Value
	str := func(key string) *string {
		if v, ok := values[key]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}

	req := &api.UpdateProfileRequest{
		BusinessName: str("businessName"),
		OwnerName:    str("ownerName"),
		BusinessType: str("businessType"),
		GSTNumber:    str("gstNumber"),
		PANNumber:    str("panNumber"),
	}
	sections := []struct {
		key string
		dst any
	}{
		{"address", &req.Address},
		{"contact", &req.Contact},
		{"bank", &req.Bank},
		{"invoiceSettings", &req.InvoiceSettings},
	}
	for _, s := range sections {
		raw := str(s.key)
		if raw == nil || *raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(*raw), s.dst); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("%s must be a JSON object", s.key).
				Mark(ierr.ErrValidation)
		}
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
