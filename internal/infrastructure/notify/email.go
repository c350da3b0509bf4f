// Package notify delivers notification email over SMTP.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/config"
)

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends mail through SMTP. Without SMTP settings it only logs.
type EmailNotifier struct {
	from   string
	sender Sender
	log    zerolog.Logger
}

// NewEmailNotifier builds a notifier from SMTP settings.
func NewEmailNotifier(cfg config.SMTPConfig, log zerolog.Logger) *EmailNotifier {
	n := &EmailNotifier{from: cfg.From, log: log}
	if cfg.Host != "" && cfg.From != "" {
		n.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	}
	return n
}

// WithSender replaces the SMTP dialer.
func (n *EmailNotifier) WithSender(s Sender) *EmailNotifier {
	n.sender = s
	return n
}

// Send implements ports.Mailer.
func (n *EmailNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		n.log.Warn().Str("subject", subject).Msg("email recipient empty, skip notification")
		return nil
	}
	if n.sender == nil {
		n.log.Info().Str("to", to).Str("subject", subject).Msg("email notification (log only; configure SMTP for real email)")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.log.Info().Str("to", to).Str("subject", subject).Msg("email notification sent")
	return nil
}

var _ ports.Mailer = (*EmailNotifier)(nil)
