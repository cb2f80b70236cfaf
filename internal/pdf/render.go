// Package pdf renders bills as A4 invoices.
//
// Rendering is pure: the same Document always yields the same bytes. The
// PDF creation date is taken from the bill date and resource catalogs are
// sorted, so output can be compared byte for byte.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billdesk/internal/models"
)

// Document is everything printed on one invoice.
type Document struct {
	Bill    *models.Bill
	Profile *models.BusinessProfile

	// GeneratedBy is printed in the footer, usually the owner's display name.
	GeneratedBy string

	// Logo is the raw image and its fpdf type ("PNG", "JPG", "GIF").
	// Empty means no logo.
	Logo     []byte
	LogoType string
}

// Renderer renders Documents with fpdf.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// column widths: S.No, Particular, Qty, Rate, Amount (sum 180mm)
var columns = []struct {
	title string
	width float64
	align string
}{
	{"S.No", 14, "C"},
	{"Particular", 86, "L"},
	{"Qty", 22, "R"},
	{"Rate", 28, "R"},
	{"Amount", 30, "R"},
}

// Render returns the PDF bytes for doc.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf, err := r.build(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) build(doc Document) (*fpdf.Fpdf, error) {
	if doc.Bill == nil {
		return nil, fmt.Errorf("no bill to render")
	}
	bill := doc.Bill
	profile := doc.Profile
	if profile == nil {
		profile = models.NewBusinessProfile(bill.OwnerID)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(bill.Date)
	pdf.SetModificationDate(bill.Date)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", invoiceNumber(bill, profile)), true)
	pdf.SetAuthor(profile.DisplayName(), true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		if doc.GeneratedBy != "" {
			pdf.CellFormat(90, 5, tr("Generated by "+doc.GeneratedBy), "", 0, "L", false, 0, "")
		} else {
			pdf.CellFormat(90, 5, "", "", 0, "L", false, 0, "")
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if err := r.header(pdf, tr, doc, profile); err != nil {
		return nil, err
	}
	r.billMeta(pdf, tr, bill, profile)
	r.itemTable(pdf, tr, bill)
	r.totals(pdf, tr, bill)
	r.closing(pdf, tr, profile)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

func (r *Renderer) header(pdf *fpdf.Fpdf, tr func(string) string, doc Document, p *models.BusinessProfile) error {
	textX := pageMargin
	if len(doc.Logo) > 0 && doc.LogoType != "" {
		opts := fpdf.ImageOptions{ImageType: doc.LogoType, ReadDpi: false}
		info := pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(doc.Logo))
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("failed to load logo: %w", err)
		}
		if info != nil {
			pdf.ImageOptions("logo", pageMargin, pageMargin, 0, 22, false, opts, 0, "")
			textX = pageMargin + 22*info.Width()/info.Height() + 5
		}
	}

	pdf.SetXY(textX, pageMargin)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 9, tr(p.DisplayName()), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range headerLines(p) {
		pdf.SetX(textX)
		pdf.CellFormat(0, 4.5, tr(line), "", 2, "L", false, 0, "")
	}

	y := pdf.GetY()
	if y < pageMargin+24 {
		y = pageMargin + 24
	}
	pdf.SetDrawColor(60, 60, 60)
	pdf.Line(pageMargin, y+2, 210-pageMargin, y+2)
	pdf.SetXY(pageMargin, y+5)
	return nil
}

func headerLines(p *models.BusinessProfile) []string {
	var lines []string
	if p.OwnerName != "" {
		lines = append(lines, fmt.Sprintf("%s (%s)", p.OwnerName, p.BusinessType))
	}
	if p.Address.Line1 != "" {
		lines = append(lines, p.Address.Line1)
	}
	if place := joinNonEmpty(", ", p.Address.City, p.Address.State, p.Address.Pincode, p.Address.Country); place != "" && place != p.Address.Country {
		lines = append(lines, place)
	}
	if contact := joinNonEmpty("  |  ", p.Contact.Phone, p.Contact.Email, p.Contact.Website); contact != "" {
		lines = append(lines, contact)
	}
	var tax []string
	if p.GSTNumber != "" {
		tax = append(tax, "GSTIN: "+p.GSTNumber)
	}
	if p.PANNumber != "" {
		tax = append(tax, "PAN: "+p.PANNumber)
	}
	if len(tax) > 0 {
		lines = append(lines, strings.Join(tax, "  |  "))
	}
	return lines
}

func (r *Renderer) billMeta(pdf *fpdf.Fpdf, tr func(string) string, bill *models.Bill, p *models.BusinessProfile) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, lineHeight, tr("Bill To: "+bill.CustomerName), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Invoice No: "+invoiceNumber(bill, p), "", 1, "R", false, 0, "")
	if bill.CustomerEmail != "" {
		pdf.CellFormat(90, lineHeight, tr(bill.CustomerEmail), "", 0, "L", false, 0, "")
	} else {
		pdf.CellFormat(90, lineHeight, "", "", 0, "L", false, 0, "")
	}
	pdf.CellFormat(0, lineHeight, "Date: "+bill.Date.UTC().Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func (r *Renderer) tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
}

func (r *Renderer) itemTable(pdf *fpdf.Fpdf, tr func(string) string, bill *models.Bill) {
	r.tableHeader(pdf)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	limit := pageHeight - bottom - 20

	for i, item := range bill.Items {
		lines := pdf.SplitText(tr(item.Particular), columns[1].width-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		h := float64(len(lines)) * lineHeight

		if pdf.GetY()+h > limit {
			pdf.AddPage()
			r.tableHeader(pdf)
		}

		x, y := pdf.GetXY()
		values := []string{
			fmt.Sprintf("%d", i+1),
			"",
			item.Qty.String(),
			FormatAmount(item.Rate),
			FormatAmount(item.Amount),
		}
		for j, c := range columns {
			pdf.Rect(x, y, c.width, h, "D")
			if j == 1 {
				for k, line := range lines {
					pdf.SetXY(x+1, y+float64(k)*lineHeight)
					pdf.CellFormat(c.width-2, lineHeight, line, "", 0, "L", false, 0, "")
				}
			} else {
				pdf.SetXY(x, y)
				pdf.CellFormat(c.width, lineHeight, values[j], "", 0, c.align, false, 0, "")
			}
			x += c.width
		}
		pdf.SetXY(pageMargin, y+h)
	}
}

func (r *Renderer) totals(pdf *fpdf.Fpdf, tr func(string) string, bill *models.Bill) {
	labelWidth := 0.0
	for _, c := range columns[:len(columns)-1] {
		labelWidth += c.width
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, 8, "Grand Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(columns[len(columns)-1].width, 8, FormatAmount(bill.GrandTotal), "1", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, tr(bill.AmountInWords), "", "L", false)
	pdf.Ln(3)
}

func (r *Renderer) closing(pdf *fpdf.Fpdf, tr func(string) string, p *models.BusinessProfile) {
	if p.Bank.BankName != "" || p.Bank.AccountNumber != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Bank Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, line := range []string{
			labeled("Bank", p.Bank.BankName),
			labeled("A/C No", p.Bank.AccountNumber),
			labeled("IFSC", p.Bank.IFSC),
		} {
			if line != "" {
				pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(2)
	}
	if p.InvoiceSettings.Terms != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(p.InvoiceSettings.Terms), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("For "+p.DisplayName()), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(0, 6, "Authorised Signatory", "", 1, "R", false, 0, "")
}

func invoiceNumber(bill *models.Bill, p *models.BusinessProfile) string {
	if p != nil && p.InvoiceSettings.InvoicePrefix != "" {
		return fmt.Sprintf("%s-%d", p.InvoiceSettings.InvoicePrefix, bill.BillNo)
	}
	return fmt.Sprintf("%d", bill.BillNo)
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// FormatAmount prints a money value with two decimals and Indian digit
// grouping, e.g. 1234567.5 -> "12,34,567.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return sign + strings.Join(groups, ",") + "," + tail + frac
}
