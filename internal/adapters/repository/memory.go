package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const defaultCapacity = 100

// MemoryStore keeps the most recent runs in memory, in start order.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Run
	order    []uuid.UUID
	capacity int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:     make(map[uuid.UUID]*Run),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of the run header; the dataset slices are shared and
// must not be mutated after saving.
func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	if run == nil || run.ID == uuid.Nil {
		return ErrInvalidRun
	}
	cp := *run

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[run.ID]; !ok {
		if len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.byID, oldest)
		}
		s.order = append(s.order, run.ID)
	}
	s.byID[run.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) Latest(_ context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil, ErrNotFound
	}
	cp := *s.byID[s.order[len(s.order)-1]]
	return &cp, nil
}

func (s *MemoryStore) LatestSucceeded(_ context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		if r := s.byID[s.order[i]]; r.Status == StatusSucceeded {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.order))
	out := make([]*Run, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		cp := *s.byID[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
