// Package validate checks inbound payloads before anything is persisted or
// sent. Validation is purely structural: required fields must be non-empty
// after trimming and license_type must name an offered plan. No semantic
// checks (email format, numeric amounts) are applied.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"license-desk/src/request"

	"github.com/go-playground/validator/v10"
)

// LicenseTypes is the fixed set of offered plans. Changing this set does not
// retroactively invalidate stored requests.
var LicenseTypes = []string{
	"Preorder – Starter Package",
	"Standard – Starter Package",
	"Enterprise – Multi-Facility",
}

// FieldError reports a required field that was absent or empty after trimming.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required.", e.Field)
}

// ErrInvalidLicenseType is returned when license_type names no offered plan.
var ErrInvalidLicenseType = &InvalidEnumError{Value: "license_type"}

// InvalidEnumError reports a value outside its fixed set.
type InvalidEnumError struct {
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s", e.Value)
}

// Submission is the payload of a new license request.
type Submission struct {
	FacilityName    string `json:"facility_name" validate:"required"`
	FacilityContact string `json:"facility_contact" validate:"required"`
	FacilityAddress string `json:"facility_address" validate:"required"`
	FacilityEmail   string `json:"facility_email" validate:"required"`
	LicenseType     string `json:"license_type" validate:"required"`
}

// Invoice is the payload of an invoice-send action. Notes is optional and
// passed through as given.
type Invoice struct {
	Number      string `json:"number" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"required"`
	DueDate     string `json:"due_date" validate:"required"`
	Description string `json:"description" validate:"required"`
	Notes       string `json:"notes"`
}

var check = newValidator()

// Validator errors carry the json tag name so callers can surface the
// offending field verbatim.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request trims all submission fields in place, then checks presence and plan
// membership. On success the submission holds the trimmed values.
func Request(s *Submission) (request.Fields, error) {
	s.FacilityName = strings.TrimSpace(s.FacilityName)
	s.FacilityContact = strings.TrimSpace(s.FacilityContact)
	s.FacilityAddress = strings.TrimSpace(s.FacilityAddress)
	s.FacilityEmail = strings.TrimSpace(s.FacilityEmail)
	s.LicenseType = strings.TrimSpace(s.LicenseType)

	if err := firstFieldError(check.Struct(s)); err != nil {
		return request.Fields{}, err
	}

	if !validLicenseType(s.LicenseType) {
		return request.Fields{}, ErrInvalidLicenseType
	}

	return request.Fields{
		FacilityName:    s.FacilityName,
		FacilityContact: s.FacilityContact,
		FacilityAddress: s.FacilityAddress,
		FacilityEmail:   s.FacilityEmail,
		LicenseType:     s.LicenseType,
	}, nil
}

// InvoiceFields trims the required invoice fields in place and checks their
// presence. Notes is left untouched.
func InvoiceFields(inv *Invoice) error {
	inv.Number = strings.TrimSpace(inv.Number)
	inv.Amount = strings.TrimSpace(inv.Amount)
	inv.Currency = strings.TrimSpace(inv.Currency)
	inv.DueDate = strings.TrimSpace(inv.DueDate)
	inv.Description = strings.TrimSpace(inv.Description)

	return firstFieldError(check.Struct(inv))
}

func firstFieldError(err error) error {
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field()}
	}

	return err
}

func validLicenseType(t string) bool {
	for _, lt := range LicenseTypes {
		if t == lt {
			return true
		}
	}
	return false
}
