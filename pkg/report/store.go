package report

import (
	"context"
	"sort"
	"sync"

	"github.com/texscale/texscale/pkg/errors"
)

// Store persists reports.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a report, overwriting any existing report with the same ID.
	Save(ctx context.Context, r *Report) error

	// Get retrieves a report by ID. Returns a NOT_FOUND coded error when
	// no report with that ID exists.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns up to limit reports, newest first. A limit of 0 or
	// less returns all reports.
	List(ctx context.Context, limit int) ([]*Report, error)

	// Delete removes a report by ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// MemoryStore is an in-memory Store for tests and single-run usage.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*Report)}
}

// Save stores the report keyed by its ID.
func (s *MemoryStore) Save(_ context.Context, r *Report) error {
	if r == nil || r.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "report has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	return nil
}

// Get retrieves a report by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "report not found: %s", id)
	}
	return r, nil
}

// List returns reports newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Report, 0, len(s.reports))
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

// Delete removes a report by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
