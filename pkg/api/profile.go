package api

type Address struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type BankDetails struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
}

type InvoiceSettings struct {
	InvoicePrefix string  `json:"invoicePrefix"`
	GSTPercentage float64 `json:"gstPercentage"`
	Terms         string  `json:"terms"`
}

type BusinessProfile struct {
	ID              string          `json:"id,omitempty"`
	BusinessName    string          `json:"businessName"`
	OwnerName       string          `json:"ownerName"`
	BusinessType    string          `json:"businessType"`
	GSTNumber       string          `json:"gstNumber"`
	PANNumber       string          `json:"panNumber"`
	Address         Address         `json:"address"`
	Contact         Contact         `json:"contact"`
	Bank            BankDetails     `json:"bank"`
	InvoiceSettings InvoiceSettings `json:"invoiceSettings"`
	LogoURL         string          `json:"logoUrl,omitempty"`
	CreatedAt       int64           `json:"createdAt,omitempty"`
	UpdatedAt       int64           `json:"updatedAt,omitempty"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	Profile *BusinessProfile `json:"profile"`
}

// UpdateProfileRequest changes the fields that are set; a set section
// replaces the stored section. Logos are uploaded through POST /api/profile.
type UpdateProfileRequest struct {
	BusinessName    *string          `json:"businessName,omitempty"`
	OwnerName       *string          `json:"ownerName,omitempty"`
	BusinessType    *string          `json:"businessType,omitempty"`
	GSTNumber       *string          `json:"gstNumber,omitempty"`
	PANNumber       *string          `json:"panNumber,omitempty"`
	Address         *Address         `json:"address,omitempty"`
	Contact         *Contact         `json:"contact,omitempty"`
	Bank            *BankDetails     `json:"bank,omitempty"`
	InvoiceSettings *InvoiceSettings `json:"invoiceSettings,omitempty"`
}

type UpdateProfileResponse struct {
	Profile *BusinessProfile `json:"profile"`
}
