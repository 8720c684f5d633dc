package request

import (
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

// PGStore is the postgres-backed Store. Each call borrows a connection from
// the go-pg pool for the duration of the statement and hands it back on every
// exit path; statements autocommit individually.
type PGStore struct {
	db *pg.DB
}

func NewPGStore(db *pg.DB) *PGStore {
	return &PGStore{db: db}
}

// CreateSchema creates the license_requests table if it does not exist yet.
func (s *PGStore) CreateSchema() error {
	err := s.db.Model((*LicenseRequest)(nil)).CreateTable(&orm.CreateTableOptions{
		IfNotExists: true,
	})
	if err != nil {
		return fmt.Errorf("creating license_requests table: %w", err)
	}
	return nil
}

func (s *PGStore) Create(fields Fields) (*LicenseRequest, error) {
	req := &LicenseRequest{
		FacilityName:    fields.FacilityName,
		FacilityContact: fields.FacilityContact,
		FacilityAddress: fields.FacilityAddress,
		FacilityEmail:   fields.FacilityEmail,
		LicenseType:     fields.LicenseType,
		Status:          StatusPending,
		SubmittedAt:     time.Now().UTC(),
	}

	if _, err := s.db.Model(req).Insert(); err != nil {
		return nil, fmt.Errorf("inserting license request: %w", err)
	}

	return req, nil
}

func (s *PGStore) List(statusFilter string) ([]LicenseRequest, error) {
	var reqs []LicenseRequest

	q := s.db.Model(&reqs).Order("submitted_at DESC").Order("id DESC")
	if ValidStatus(statusFilter) {
		q = q.Where("status = ?", statusFilter)
	}

	if err := q.Select(); err != nil {
		return nil, fmt.Errorf("listing license requests: %w", err)
	}

	return reqs, nil
}

func (s *PGStore) Get(id int64) (*LicenseRequest, error) {
	req := new(LicenseRequest)

	err := s.db.Model(req).Where("id = ?", id).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching license request %d: %w", id, err)
	}

	return req, nil
}

// UpdateStatus overwrites the status column and nothing else.
func (s *PGStore) UpdateStatus(id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	res, err := s.db.Model((*LicenseRequest)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Update()
	if err != nil {
		return fmt.Errorf("updating status of license request %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PGStore) Recent(n int) ([]LicenseRequest, error) {
	var reqs []LicenseRequest

	err := s.db.Model(&reqs).
		Order("submitted_at DESC").
		Order("id DESC").
		Limit(n).
		Select()
	if err != nil {
		return nil, fmt.Errorf("listing recent license requests: %w", err)
	}

	return reqs, nil
}

func (s *PGStore) Counts() (Counts, error) {
	var counts Counts

	total, err := s.db.Model((*LicenseRequest)(nil)).Count()
	if err != nil {
		return counts, fmt.Errorf("counting license requests: %w", err)
	}
	counts.Total = total

	for _, c := range []struct {
		status string
		dst    *int
	}{
		{StatusPending, &counts.Pending},
		{StatusApproved, &counts.Approved},
		{StatusRejected, &counts.Rejected},
	} {
		n, err := s.db.Model((*LicenseRequest)(nil)).Where("status = ?", c.status).Count()
		if err != nil {
			return counts, fmt.Errorf("counting %s license requests: %w", c.status, err)
		}
		*c.dst = n
	}

	return counts, nil
}

func (s *PGStore) CountByType() ([]TypeCount, error) {
	var byType []TypeCount

	err := s.db.Model((*LicenseRequest)(nil)).
		ColumnExpr("license_type").
		ColumnExpr("count(*) AS count").
		Group("license_type").
		OrderExpr("count DESC").
		Select(&byType)
	if err != nil {
		return nil, fmt.Errorf("grouping license requests by type: %w", err)
	}

	return byType, nil
}
