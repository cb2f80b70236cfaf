package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPDispatcher sends through an SMTP relay.
type SMTPDispatcher struct {
	client      *mail.Client
	fromAddress string
	replyTo     string
}

// NewSMTPDispatcher creates an SMTP-backed dispatcher. Authentication is
// used when a username is configured.
func NewSMTPDispatcher(cfg Config) (*SMTPDispatcher, error) {
	if cfg.SMTPHost == "" {
		return nil, errors.New("smtp provider needs a host")
	}
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.SMTPPort > 0 {
		opts = append(opts, mail.WithPort(cfg.SMTPPort))
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPass),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	from := cfg.FromAddress
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPDispatcher{client: client, fromAddress: from, replyTo: cfg.ReplyTo}, nil
}

// Send delivers msg with the PDF attached.
func (d *SMTPDispatcher) Send(ctx context.Context, msg BillMessage) error {
	m, err := d.build(msg)
	if err != nil {
		return err
	}
	if err := d.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (d *SMTPDispatcher) build(msg BillMessage) (*mail.Msg, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	c, err := Compose(msg)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.FromFormat(c.FromName, d.fromAddress); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if d.replyTo != "" {
		if err := m.ReplyTo(d.replyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	m.Subject(c.Subject)
	m.SetBodyString(mail.TypeTextPlain, c.Text)
	m.AddAlternativeString(mail.TypeTextHTML, c.HTML)
	if err := m.AttachReader(c.AttachmentName, bytes.NewReader(msg.PDF),
		mail.WithFileContentType(mail.ContentType("application/pdf"))); err != nil {
		return nil, fmt.Errorf("failed to attach pdf: %w", err)
	}
	return m, nil
}
