package service

import (
	"github.com/samber/lo"

	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/pkg/api"
)

func toAPIBill(b *models.Bill) *api.Bill {
	return &api.Bill{
		ID:            b.ID,
		BillNo:        b.BillNo,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		Date:          b.Date,
		Items: lo.Map(b.Items, func(it models.LineItem, _ int) api.LineItem {
			return api.LineItem{
				ID:         it.ID,
				Particular: it.Particular,
				Qty:        it.Qty,
				Rate:       it.Rate,
				Amount:     it.Amount,
			}
		}),
		GrandTotal:    b.GrandTotal,
		AmountInWords: b.AmountInWords,
		CreatedAt:     b.CreatedAt,
	}
}

func toItemInputs(items []api.ItemInput) []billing.ItemInput {
	return lo.Map(items, func(it api.ItemInput, _ int) billing.ItemInput {
		return billing.ItemInput{
			Particular: it.Particular,
			Qty:        it.Qty,
			Rate:       it.Rate,
			Amount:     it.Amount,
		}
	})
}

func toAPIReport(r *models.MonthlyReport) *api.GetMonthlyReportResponse {
	return &api.GetMonthlyReportResponse{
		TotalBills:   r.TotalBills,
		TotalRevenue: r.TotalRevenue,
		Monthly: lo.Map(r.Monthly, func(m models.MonthSummary, _ int) api.MonthSummary {
			return api.MonthSummary{
				Year:      m.Year,
				Month:     m.Month,
				Label:     m.Label,
				BillCount: m.BillCount,
				Revenue:   m.Revenue,
			}
		}),
	}
}

func toAPIProfile(p *models.BusinessProfile) *api.BusinessProfile {
	return &api.BusinessProfile{
		ID:              p.ID,
		BusinessName:    p.BusinessName,
		OwnerName:       p.OwnerName,
		BusinessType:    string(p.BusinessType),
		GSTNumber:       p.GSTNumber,
		PANNumber:       p.PANNumber,
		Address:         api.Address(p.Address),
		Contact:         api.Contact(p.Contact),
		Bank:            api.BankDetails(p.Bank),
		InvoiceSettings: api.InvoiceSettings(p.InvoiceSettings),
		LogoURL:         p.LogoURL,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// toProfileInput converts an update message. Sections share their layout
// with the model types and convert directly.
func toProfileInput(req *api.UpdateProfileRequest) billing.ProfileInput {
	in := billing.ProfileInput{
		BusinessName: req.BusinessName,
		OwnerName:    req.OwnerName,
		GSTNumber:    req.GSTNumber,
		PANNumber:    req.PANNumber,
	}
	if req.BusinessType != nil {
		in.BusinessType = lo.ToPtr(models.BusinessType(*req.BusinessType))
	}
	if req.Address != nil {
		in.Address = lo.ToPtr(models.Address(*req.Address))
	}
	if req.Contact != nil {
		in.Contact = lo.ToPtr(models.Contact(*req.Contact))
	}
	if req.Bank != nil {
		in.Bank = lo.ToPtr(models.BankDetails(*req.Bank))
	}
	if req.InvoiceSettings != nil {
		in.InvoiceSettings = lo.ToPtr(models.InvoiceSettings(*req.InvoiceSettings))
	}
	return in
}

func toAPICustomer(c *models.Customer) *api.Customer {
	return &api.Customer{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}
