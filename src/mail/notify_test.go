package mail

import (
	"errors"
	"strings"
	"testing"
	"time"

	"license-desk/src/config"
	"license-desk/src/request"
	"license-desk/src/validate"
)

type fakeSender struct {
	sent []Email
	err  error
}

func (f *fakeSender) Send(email Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func sampleRequest() *request.LicenseRequest {
	return &request.LicenseRequest{
		ID:              7,
		FacilityName:    "Acme Clinic",
		FacilityContact: "Jane Doe",
		FacilityAddress: "12 Main St",
		FacilityEmail:   "jane@acme.test",
		LicenseType:     "Standard – Starter Package",
		Status:          request.StatusPending,
		SubmittedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAdminNewRequest(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "admin@licensedesk.app")

	if err := mailer.AdminNewRequest(sampleRequest()); err != nil {
		t.Fatal(err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send but got %d", len(sender.sent))
	}
	email := sender.sent[0]
	if email.To != "admin@licensedesk.app" {
		t.Errorf("expected the admin mailbox but got %q", email.To)
	}
	if !strings.Contains(email.Subject, "Acme Clinic") {
		t.Errorf("subject %q does not carry the facility name", email.Subject)
	}
	for _, want := range []string{"Acme Clinic", "Jane Doe", "jane@acme.test", "12 Main St", "Standard – Starter Package"} {
		if !strings.Contains(email.Html, want) {
			t.Errorf("body is missing %q", want)
		}
	}
}

func TestRequesterConfirmation(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "admin@licensedesk.app")

	if err := mailer.RequesterConfirmation(sampleRequest()); err != nil {
		t.Fatal(err)
	}

	email := sender.sent[0]
	if email.To != "jane@acme.test" {
		t.Errorf("expected the facility email but got %q", email.To)
	}
	if email.Subject != "We received your license request" {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	for _, want := range []string{"Acme Clinic", "Standard – Starter Package", "Jane Doe"} {
		if !strings.Contains(email.Html, want) {
			t.Errorf("body is missing %q", want)
		}
	}
}

func TestInvoice(t *testing.T) {
	inv := &validate.Invoice{
		Number:      "INV-1",
		Amount:      "500",
		Currency:    "USD",
		DueDate:     "2026-01-01",
		Description: "Annual license fee",
	}

	t.Run("renders the line item and mirrors the amount as the total", func(t *testing.T) {
		sender := &fakeSender{}
		mailer := NewMailer(sender, "admin@licensedesk.app")

		if err := mailer.Invoice(sampleRequest(), inv); err != nil {
			t.Fatal(err)
		}

		email := sender.sent[0]
		if email.To != "jane@acme.test" {
			t.Errorf("expected the facility email but got %q", email.To)
		}
		for _, want := range []string{"INV-1", "500", "USD"} {
			if !strings.Contains(email.Subject, want) {
				t.Errorf("subject %q is missing %q", email.Subject, want)
			}
		}
		if got := strings.Count(email.Html, "USD 500"); got != 2 {
			t.Errorf("expected the amount twice (line item and total) but found it %d times", got)
		}
		if !strings.Contains(email.Html, "Total Due") {
			t.Error("body is missing the total-due line")
		}
		if !strings.Contains(email.Html, "Annual license fee") {
			t.Error("body is missing the description")
		}
	})

	t.Run("includes the notes row only when notes are set", func(t *testing.T) {
		sender := &fakeSender{}
		mailer := NewMailer(sender, "admin@licensedesk.app")

		withNotes := *inv
		withNotes.Notes = "Payable net 30"
		if err := mailer.Invoice(sampleRequest(), &withNotes); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(sender.sent[0].Html, "Payable net 30") {
			t.Error("notes were set but not rendered")
		}

		if err := mailer.Invoice(sampleRequest(), inv); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(sender.sent[1].Html, "font-style:italic") {
			t.Error("notes row rendered without notes")
		}
	})

	t.Run("surfaces the transport error", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("smtp: connection refused")}
		mailer := NewMailer(sender, "admin@licensedesk.app")

		err := mailer.Invoice(sampleRequest(), inv)
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected the transport error but got %v", err)
		}
	})
}

func TestNewSender(t *testing.T) {
	t.Run("prefers sendgrid", func(t *testing.T) {
		cfg := config.Config{SendgridAPIKey: "sg-key", SMTPUser: "u", SMTPPassword: "p"}
		if _, ok := NewSender(cfg).(*SendgridSender); !ok {
			t.Errorf("expected a SendgridSender but got %T", NewSender(cfg))
		}
	})

	t.Run("falls back to smtp", func(t *testing.T) {
		cfg := config.Config{SMTPHost: "smtp.test", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "p"}
		if _, ok := NewSender(cfg).(*SMTPSender); !ok {
			t.Errorf("expected an SMTPSender but got %T", NewSender(cfg))
		}
	})

	t.Run("fails every send when unconfigured", func(t *testing.T) {
		cfg := config.Config{}
		if Configured(cfg) {
			t.Error("expected Configured to be false")
		}
		err := NewSender(cfg).Send(Email{To: "jane@acme.test"})
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured but got %v", err)
		}
	})
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("License Desk", "desk@licensedesk.app", Email{
		To:      "jane@acme.test",
		Subject: "Hello",
		Plain:   "plain part",
		Html:    "<p>html part</p>",
	}))

	for _, want := range []string{
		"From: License Desk <desk@licensedesk.app>",
		"To: jane@acme.test",
		"Subject: Hello",
		"multipart/alternative",
		"text/plain",
		"plain part",
		"text/html",
		"<p>html part</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message is missing %q", want)
		}
	}
}
