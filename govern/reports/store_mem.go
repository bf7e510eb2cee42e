package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemReportStore keeps reports in process memory. Used in tests and when no
// database is configured.
type MemReportStore struct {
	mtx  sync.RWMutex
	data map[string]Report
}

func NewMemReportStore() *MemReportStore {
	return &MemReportStore{
		data: make(map[string]Report),
	}
}

func (s *MemReportStore) Create(ctx context.Context, report *Report) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, ok := s.data[report.ID]; ok {
		return fmt.Errorf("report ID already exists: %s", report.ID)
	}
	s.data[report.ID] = *report
	return nil
}

func (s *MemReportStore) Get(ctx context.Context, id string) (*Report, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	r, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	return &r, nil
}

func (s *MemReportStore) ListByContent(ctx context.Context, contentID string) ([]Report, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var out []Report
	for _, r := range s.data {
		if r.ContentID == contentID {
			out = append(out, r)
		}
	}
	// report IDs are time-orderable, so ID order is creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemReportStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	r, ok := s.data[id]
	if !ok {
		return fmt.Errorf("report not found: %s", id)
	}
	r.Status = status
	s.data[id] = r
	return nil
}
