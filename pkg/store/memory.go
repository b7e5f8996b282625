package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tkoester/pinset/pkg/audit"
)

// MemoryStore keeps reports in process memory. It backs the API server
// when no MongoDB is configured; reports vanish on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*audit.Report
}

// NewMemoryStore creates an empty in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*audit.Report)}
}

func (s *MemoryStore) Save(ctx context.Context, report *audit.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*audit.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return report, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*audit.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ ReportStore = (*MemoryStore)(nil)
