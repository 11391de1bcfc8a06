// Package mailer sends outbound application email over SMTP.
package mailer

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"microblog/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer delivers application email using the configured SMTP server.
type Mailer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Mailer bound to the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// SendPasswordReset emails the signed reset link to the user.
func (m *Mailer) SendPasswordReset(toEmail, username, resetURL string) error {
	if m.cfg.SMTPHost == "" || m.cfg.MailFrom == "" {
		m.logger.Warn("email config missing, skip password reset email")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailFrom)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "[Microblog] Reset Your Password")
	msg.SetBody("text/html", m.buildResetBody(username, resetURL))

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("password reset email sent", slog.String("to", toEmail))
	return nil
}

func (m *Mailer) buildResetBody(username, resetURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Dear %s,</p>
    <p>To reset your password, click the link below:</p>
    <p><a href="%s">%s</a></p>
    <p>If you have not requested a password reset, simply ignore this message.</p>
    <p>The link expires in %d minutes.</p>
  </div>
</body>
</html>`, html.EscapeString(username), resetURL, resetURL, m.cfg.ResetTokenTTLMinutes)
}
