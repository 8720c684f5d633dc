package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"license-desk/src/request"
	"license-desk/src/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Mailer renders the three message kinds this service sends and hands them to
// a Sender. It holds no state between calls: the same input renders the same
// message and results in an independent transport attempt.
type Mailer struct {
	sender     Sender
	adminEmail string
}

func NewMailer(sender Sender, adminEmail string) *Mailer {
	return &Mailer{
		sender:     sender,
		adminEmail: adminEmail,
	}
}

// AdminNewRequest alerts the configured admin mailbox that a new license
// request came in.
func (m *Mailer) AdminNewRequest(req *request.LicenseRequest) error {
	html, err := render("admin_new_request.html", req)
	if err != nil {
		return err
	}

	return m.sender.Send(Email{
		Name:    m.adminEmail,
		To:      m.adminEmail,
		Subject: fmt.Sprintf("[License Desk] New License Request - %s", req.FacilityName),
		Plain: fmt.Sprintf("New license request from %s (%s) for %s\n",
			req.FacilityName, req.FacilityEmail, req.LicenseType),
		Html: html,
	})
}

// RequesterConfirmation confirms receipt to the facility that submitted the
// request.
func (m *Mailer) RequesterConfirmation(req *request.LicenseRequest) error {
	html, err := render("confirmation.html", req)
	if err != nil {
		return err
	}

	return m.sender.Send(Email{
		Name:    req.FacilityName,
		To:      req.FacilityEmail,
		Subject: "We received your license request",
		Plain: fmt.Sprintf("Thank you %s, we received your license request for %s and will be in touch at %s.\n",
			req.FacilityName, req.LicenseType, req.FacilityEmail),
		Html: html,
	})
}

// Invoice emails a payment request to the facility. The rendered total
// mirrors the single line-item amount verbatim.
func (m *Mailer) Invoice(req *request.LicenseRequest, inv *validate.Invoice) error {
	data := struct {
		Req *request.LicenseRequest
		Inv *validate.Invoice
	}{req, inv}

	html, err := render("invoice.html", data)
	if err != nil {
		return err
	}

	return m.sender.Send(Email{
		Name:    req.FacilityName,
		To:      req.FacilityEmail,
		Subject: fmt.Sprintf("[License Desk] Invoice #%s - %s %s", inv.Number, inv.Amount, inv.Currency),
		Plain: fmt.Sprintf("Invoice #%s: %s %s due %s for %s\n",
			inv.Number, inv.Currency, inv.Amount, inv.DueDate, inv.Description),
		Html: html,
	})
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
