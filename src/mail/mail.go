// Package mail renders and sends the transactional email this service
// produces. Sending is synchronous and best-effort: no queue, no retry, no
// delivery guarantee.
package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"license-desk/src/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNotConfigured is returned when no outbound transport credentials are set.
var ErrNotConfigured = errors.New("email is not configured")

type Email struct {
	Name    string
	To      string
	Subject string
	Plain   string
	Html    string
}

// Sender is the outbound transport capability.
type Sender interface {
	Send(email Email) error
}

// NewSender picks a transport from the config: SendGrid when an API key is
// set, an SMTP relay when SMTP credentials are set, otherwise a sender that
// fails every call with ErrNotConfigured.
func NewSender(cfg config.Config) Sender {
	if cfg.SendgridAPIKey != "" {
		return &SendgridSender{
			APIKey:   cfg.SendgridAPIKey,
			FromName: cfg.EmailName,
			FromAddr: cfg.EmailFrom,
		}
	}
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			FromName: cfg.EmailName,
		}
	}
	return disabledSender{}
}

// Configured reports whether NewSender would return a working transport.
func Configured(cfg config.Config) bool {
	return cfg.SendgridAPIKey != "" || (cfg.SMTPUser != "" && cfg.SMTPPassword != "")
}

// SendgridSender sends through the SendGrid API.
type SendgridSender struct {
	APIKey   string
	FromName string
	FromAddr string
}

func (s *SendgridSender) Send(email Email) error {
	from := sgmail.NewEmail(s.FromName, s.FromAddr)
	to := sgmail.NewEmail(email.Name, email.To)
	message := sgmail.NewSingleEmail(from, email.Subject, to, email.Plain, email.Html)
	client := sendgrid.NewSendClient(s.APIKey)

	if _, err := client.Send(message); err != nil {
		return err
	}

	return nil
}

// SMTPSender sends through a plain SMTP relay with STARTTLS, e.g. a Gmail
// account with an app password.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

func (s *SMTPSender) Send(email Email) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	msg := buildMessage(s.FromName, s.User, email)

	return smtp.SendMail(addr, auth, s.User, []string{email.To}, msg)
}

// buildMessage assembles a multipart/alternative MIME message with a plain
// part (when present) followed by the html part.
func buildMessage(fromName, fromAddr string, email Email) []byte {
	const boundary = "license-desk-alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	if email.Plain != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(email.Plain)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(email.Html)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

type disabledSender struct{}

func (disabledSender) Send(Email) error {
	return ErrNotConfigured
}
