package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
)

// Mailer is the email-delivery capability the service layer depends on.
type Mailer interface {
	// SendPasswordReset delivers the recovery link to the account's email.
	SendPasswordReset(ctx context.Context, toEmail, name, resetLink string) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLSMode is one of "starttls" (default), "ssl", or "none".
	TLSMode string
}

// SMTPMailer sends mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates a new SMTP-backed mailer.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "starttls"
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendPasswordReset delivers the password reset email. A send failure is
// returned to the caller; the recovery flow must not pretend the link went out.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, toEmail, name, resetLink string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. "+
			"Use the link below within 30 minutes to choose a new password:\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		name, resetLink,
	))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>A password reset was requested for your account. `+
			`Use the link below within 30 minutes to choose a new password:</p>`+
			`<p><a href="%s">Reset password</a></p>`+
			`<p>If you did not request this, you can ignore this email.</p>`,
		name, resetLink,
	))

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}

	switch m.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = nil
	}

	if err := d.DialAndSend(msg); err != nil {
		m.logger.ErrorContext(ctx, "smtp send failed",
			slog.String("to", toEmail),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	m.logger.InfoContext(ctx, "password reset email sent", slog.String("to", toEmail))
	return nil
}
