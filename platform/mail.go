package platform

import (
	"fmt"
	"net"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends plain text mail through one SMTP relay.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewMailer returns nil when no relay is configured.
func NewMailer(cfg *Config) (*Mailer, error) {
	if cfg.SMTPAddr == "" {
		return nil, nil
	}
	host, _, err := net.SplitHostPort(cfg.SMTPAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_ADDR %q: %w", cfg.SMTPAddr, err)
	}
	m := &Mailer{addr: cfg.SMTPAddr, from: cfg.MailFrom}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, host)
	}
	return m, nil
}

func (m *Mailer) Send(to, subject, text string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	return e.Send(m.addr, m.auth)
}
