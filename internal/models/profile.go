package models

// BusinessType is the legal form of a business.
type BusinessType string

const (
	BusinessTypeProprietor     BusinessType = "Proprietor"
	BusinessTypePartnership    BusinessType = "Partnership"
	BusinessTypePrivateLimited BusinessType = "Private Limited"
	BusinessTypeLLP            BusinessType = "LLP"
)

// BusinessTypes lists the accepted business types.
var BusinessTypes = []BusinessType{
	BusinessTypeProprietor,
	BusinessTypePartnership,
	BusinessTypePrivateLimited,
	BusinessTypeLLP,
}

// Profile defaults applied when a field has never been set.
const (
	DefaultCountry       = "India"
	DefaultInvoicePrefix = "INV"
	DefaultGSTPercentage = 18.0
)

// BusinessProfile holds the letterhead and settings of one owner's business.
// There is at most one profile per owner; it is created on first update.
type BusinessProfile struct {
	ID      string
	OwnerID string

	BusinessName string
	OwnerName    string
	BusinessType BusinessType

	GSTNumber string
	PANNumber string

	Address         Address
	Contact         Contact
	Bank            BankDetails
	InvoiceSettings InvoiceSettings

	// LogoURL points at the uploaded logo image, if any.
	LogoURL string

	CreatedAt int64
	UpdatedAt int64
}

// Address is a postal address.
type Address struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Contact holds a business's contact channels.
type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// BankDetails is printed on bills for payment.
type BankDetails struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
}

// InvoiceSettings controls how bills are presented.
type InvoiceSettings struct {
	InvoicePrefix string  `json:"invoicePrefix"`
	GSTPercentage float64 `json:"gstPercentage"`
	Terms         string  `json:"terms"`
}

// NewBusinessProfile returns a profile with defaults for ownerID.
func NewBusinessProfile(ownerID string) *BusinessProfile {
	return &BusinessProfile{
		OwnerID:      ownerID,
		BusinessType: BusinessTypeProprietor,
		Address:      Address{Country: DefaultCountry},
		InvoiceSettings: InvoiceSettings{
			InvoicePrefix: DefaultInvoicePrefix,
			GSTPercentage: DefaultGSTPercentage,
		},
	}
}

// DisplayName is the name used on emails when no business name is set.
func (p *BusinessProfile) DisplayName() string {
	if p == nil || p.BusinessName == "" {
		return "Billing App"
	}
	return p.BusinessName
}
