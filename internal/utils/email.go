package utils

import (
	"context"
	"fmt"

	"emporium_back_end/internal/config"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Mailer sends HTML mail over SMTP. A Mailer without a host drops every
// message, so callers need no special casing in development.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      zerolog.Logger
}

func NewMailer(cfg *config.Config, log zerolog.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
		log:      log,
	}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return nil
	}
	if !m.Enabled() {
		m.log.Debug().Str("to", to).Str("subject", subject).Msg("smtp not configured, email skipped")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
