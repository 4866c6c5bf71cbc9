package gateway

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/config"
)

// EmailGateway delivers a transactional email to one address.
type EmailGateway interface {
	SendEmail(ctx context.Context, to string, msg models.EmailMessage) error
}

// SMTPEmailGateway sends email through the platform SMTP relay.
type SMTPEmailGateway struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPEmailGateway constructs the gateway from config.
func NewSMTPEmailGateway(cfg config.SMTPConfig) *SMTPEmailGateway {
	return &SMTPEmailGateway{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendEmail composes and sends the message. gomail dials per send; connection
// reuse is the relay's concern.
func (g *SMTPEmailGateway) SendEmail(ctx context.Context, to string, msg models.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)

	body := msg.Heading
	if msg.Subheading != "" {
		body += "\n\n" + msg.Subheading
	}
	if msg.Body != "" {
		body += "\n\n" + msg.Body
	}
	m.SetBody("text/plain", body)

	if err := g.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
