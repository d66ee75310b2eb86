package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	mail "github.com/go-mail/mail/v2"
)

func smtpPort() int {
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		return p
	}
	return 587
}

// MailConfigured reports whether the SMTP channel can be used at all.
func MailConfigured() bool {
	return os.Getenv("SMTP_HOST") != "" && os.Getenv("SMTP_FROM") != ""
}

// SendMail delivers an HTML email through the configured SMTP relay.
// SMTP_FROM takes a display form, e.g. "Cert System <no-reply@your.org>".
func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}

	host := os.Getenv("SMTP_HOST")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	dialer := mail.NewDialer(host, smtpPort(), os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))
	dialer.StartTLSPolicy = mail.MandatoryStartTLS
	dialer.TLSConfig = &tls.Config{
		ServerName: host,
		// Dev relays with self-signed certs can set SMTP_SKIP_TLS_VERIFY=1.
		InsecureSkipVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}

	return dialer.DialAndSend(msg)
}
