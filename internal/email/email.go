// Package email sends issued bills to customers.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
)

// ErrDisabled is returned by the disabled dispatcher.
var ErrDisabled = errors.New("email dispatch is disabled")

// BillMessage is one bill to deliver.
type BillMessage struct {
	To           string
	CustomerName string
	BillNo       int64
	BusinessName string
	PDF          []byte
}

// Dispatcher delivers a bill. A single attempt is made; callers record the
// outcome and do not retry.
type Dispatcher interface {
	Send(ctx context.Context, msg BillMessage) error
}

// Composed is a rendered message ready for a provider.
type Composed struct {
	FromName       string
	Subject        string
	HTML           string
	Text           string
	AttachmentName string
}

var htmlBody = template.Must(template.New("bill").Parse(
	`<p>Hi {{.CustomerName}},</p>
<p><b>{{.BusinessName}}</b> - Your invoice (Bill No: <b>{{.BillNo}}</b>) is attached.</p>
<p>Thank you for your business.</p>
`))

// Compose renders the subject and bodies of msg.
func Compose(msg BillMessage) (Composed, error) {
	var html bytes.Buffer
	if err := htmlBody.Execute(&html, msg); err != nil {
		return Composed{}, fmt.Errorf("failed to render email body: %w", err)
	}
	return Composed{
		FromName: msg.BusinessName,
		Subject:  fmt.Sprintf("%s Invoice #%d from %s", msg.CustomerName, msg.BillNo, msg.BusinessName),
		HTML:     html.String(),
		Text: fmt.Sprintf("Hi %s,\n\n%s - Your invoice (Bill No: %d) is attached.\n\nThank you for your business.\n",
			msg.CustomerName, msg.BusinessName, msg.BillNo),
		AttachmentName: fmt.Sprintf("invoice-%d.pdf", msg.BillNo),
	}, nil
}

func validate(msg BillMessage) error {
	if msg.To == "" {
		return errors.New("no recipient")
	}
	if len(msg.PDF) == 0 {
		return errors.New("no pdf attached")
	}
	return nil
}

// Disabled drops every message with ErrDisabled.
type Disabled struct{}

func (Disabled) Send(context.Context, BillMessage) error {
	return ErrDisabled
}

// Config selects and configures a provider.
type Config struct {
	Provider    string // resend, smtp or disabled
	FromAddress string
	ReplyTo     string
	APIKey      string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// New builds the dispatcher for cfg.Provider.
func New(cfg Config) (Dispatcher, error) {
	switch cfg.Provider {
	case "", "disabled":
		return Disabled{}, nil
	case "resend":
		if cfg.APIKey == "" {
			return nil, errors.New("resend provider needs an API key")
		}
		return NewResendDispatcher(cfg), nil
	case "smtp":
		return NewSMTPDispatcher(cfg)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
