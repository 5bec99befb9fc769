package utils

import (
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/cppla/microblog/config"
)

// Mailer delivers transactional mail. The interface exists so controllers can
// be exercised without a live SMTP server.
type Mailer interface {
	Send(to, subject, bodyText, bodyHTML string) error
}

// SMTPMailer sends mail through the configured SMTP relay with text and HTML
// alternative bodies.
type SMTPMailer struct{}

// Send delivers one message. Returns an error when SMTP is unconfigured or
// the relay rejects the message.
func (SMTPMailer) Send(to, subject, bodyText, bodyHTML string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.SMTPFrom, cfg.SMTPFromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", bodyText)
	if bodyHTML != "" {
		m.AddAlternative("text/html", bodyHTML)
	}

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if cfg.SMTPTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	}
	return d.DialAndSend(m)
}

// SendAsync dispatches the message on its own goroutine so a slow relay never
// stalls the request. Delivery failures are logged, never surfaced as a
// failure of the primary state change.
func SendAsync(mailer Mailer, to, subject, bodyText, bodyHTML string) {
	go func() {
		if err := mailer.Send(to, subject, bodyText, bodyHTML); err != nil {
			Sugar.Errorf("mail delivery to %s failed: %v", to, err)
		}
	}()
}
