package request

import (
	"errors"
	"time"
)

// Status values a license request moves through. A request starts out pending
// and an operator can move it to any other member of the set at any time.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	// ErrNotFound is returned when no license request exists for an id.
	ErrNotFound = errors.New("license request not found")

	// ErrInvalidStatus is returned when a status is not in the valid set.
	ErrInvalidStatus = errors.New("invalid status")
)

// ValidStatus reports whether s is a member of the fixed status set.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// LicenseRequest is a facility's request for a license, as stored.
// Only Status changes after creation.
type LicenseRequest struct {
	ID              int64     `json:"id"`
	FacilityName    string    `json:"facility_name"`
	FacilityContact string    `json:"facility_contact"`
	FacilityAddress string    `json:"facility_address"`
	FacilityEmail   string    `json:"facility_email"`
	LicenseType     string    `json:"license_type"`
	Status          string    `json:"status"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Fields are the caller-supplied attributes of a new license request,
// already validated and trimmed.
type Fields struct {
	FacilityName    string
	FacilityContact string
	FacilityAddress string
	FacilityEmail   string
	LicenseType     string
}

// Counts aggregates requests by status.
type Counts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// TypeCount is the number of requests for one license type.
type TypeCount struct {
	LicenseType string `json:"license_type"`
	Count       int    `json:"count"`
}

// Store persists license requests. List and Recent order rows by submission
// time, newest first, with the reverse insertion order breaking ties.
type Store interface {
	Create(fields Fields) (*LicenseRequest, error)
	List(statusFilter string) ([]LicenseRequest, error)
	Get(id int64) (*LicenseRequest, error)
	UpdateStatus(id int64, status string) error
	Recent(n int) ([]LicenseRequest, error)
	Counts() (Counts, error)
	CountByType() ([]TypeCount, error)
}
