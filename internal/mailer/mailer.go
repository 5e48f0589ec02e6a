// Package mailer sends transactional mail over SMTP. The only message
// the system sends today is the password-reset code, delivered
// out-of-band so the plaintext OTP never touches the API response.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/iliyamo/gym-management/internal/config"
)

// Mailer wraps an SMTP endpoint configured from the environment.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// New builds a Mailer from the loaded configuration. When the SMTP host
// is unset, Send returns an error and callers surface it as a
// dependency failure.
func New(cfg config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.EmailFrom,
	}
}

// Send delivers a plain-text message to one recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" || m.port == "" {
		return fmt.Errorf("smtp not configured")
	}
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", to, subject, body))
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendResetCode mails the one-time password-reset code with its
// validity window.
func (m *Mailer) SendResetCode(to, code string, expireMinutes int) error {
	body := fmt.Sprintf(
		"Your password reset code is %s.\n\nIt expires in %d minutes. If you did not request a reset, ignore this mail.",
		code, expireMinutes)
	return m.Send(to, "Password reset code", body)
}
