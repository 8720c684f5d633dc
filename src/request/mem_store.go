package request

import (
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store with the same ordering rules as PGStore.
// It backs the handler tests and is handy for running the server without a
// database.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	reqs   []LicenseRequest
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

func (s *MemStore) Create(fields Fields) (*LicenseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := LicenseRequest{
		ID:              s.nextID,
		FacilityName:    fields.FacilityName,
		FacilityContact: fields.FacilityContact,
		FacilityAddress: fields.FacilityAddress,
		FacilityEmail:   fields.FacilityEmail,
		LicenseType:     fields.LicenseType,
		Status:          StatusPending,
		SubmittedAt:     time.Now().UTC(),
	}
	s.nextID++
	s.reqs = append(s.reqs, req)

	out := req
	return &out, nil
}

func (s *MemStore) List(statusFilter string) ([]LicenseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]LicenseRequest, 0, len(s.reqs))
	for _, r := range s.reqs {
		if ValidStatus(statusFilter) && r.Status != statusFilter {
			continue
		}
		res = append(res, r)
	}
	sortNewestFirst(res)

	return res, nil
}

func (s *MemStore) Get(id int64) (*LicenseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reqs {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}

	return nil, ErrNotFound
}

func (s *MemStore) UpdateStatus(id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reqs {
		if s.reqs[i].ID == id {
			s.reqs[i].Status = status
			return nil
		}
	}

	return ErrNotFound
}

func (s *MemStore) Recent(n int) ([]LicenseRequest, error) {
	all, err := s.List("")
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *MemStore) Counts() (Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts Counts
	counts.Total = len(s.reqs)
	for _, r := range s.reqs {
		switch r.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		}
	}

	return counts, nil
}

func (s *MemStore) CountByType() ([]TypeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally := make(map[string]int)
	for _, r := range s.reqs {
		tally[r.LicenseType]++
	}

	byType := make([]TypeCount, 0, len(tally))
	for t, n := range tally {
		byType = append(byType, TypeCount{LicenseType: t, Count: n})
	}
	sort.SliceStable(byType, func(i, j int) bool {
		if byType[i].Count != byType[j].Count {
			return byType[i].Count > byType[j].Count
		}
		return byType[i].LicenseType < byType[j].LicenseType
	})

	return byType, nil
}

func sortNewestFirst(reqs []LicenseRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.After(reqs[j].SubmittedAt)
		}
		return reqs[i].ID > reqs[j].ID
	})
}
