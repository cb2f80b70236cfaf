package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendDispatcher sends through the Resend API.
type ResendDispatcher struct {
	client      *resend.Client
	fromAddress string
	replyTo     string
}

// NewResendDispatcher creates a Resend-backed dispatcher.
func NewResendDispatcher(cfg Config) *ResendDispatcher {
	return &ResendDispatcher{
		client:      resend.NewClient(cfg.APIKey),
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}
}

// Send delivers msg with the PDF attached.
func (d *ResendDispatcher) Send(ctx context.Context, msg BillMessage) error {
	if err := validate(msg); err != nil {
		return err
	}
	c, err := Compose(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%q <%s>", c.FromName, d.fromAddress),
		To:      []string{msg.To},
		Subject: c.Subject,
		Html:    c.HTML,
		Text:    c.Text,
		Attachments: []*resend.Attachment{{
			Content:  msg.PDF,
			Filename: c.AttachmentName,
		}},
	}
	if d.replyTo != "" {
		params.ReplyTo = d.replyTo
	}

	if _, err := d.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
