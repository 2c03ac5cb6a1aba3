package workflow

import (
	"context"
	"sync"

	"github.com/laporwarga/backend/pkg/client"
)

// ComplaintStore caches a complaint list between screens. Create one per
// session at the composition root and hand it to the flows that share it.
type ComplaintStore struct {
	mu     sync.Mutex
	items  []client.Complaint
	loaded bool
}

func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{}
}

// Get returns the cached list and whether it has been filled.
func (s *ComplaintStore) Get() ([]client.Complaint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	return append([]client.Complaint(nil), s.items...), true
}

func (s *ComplaintStore) Set(items []client.Complaint) {
	s.mu.Lock()
	s.items = append([]client.Complaint(nil), items...)
	s.loaded = true
	s.mu.Unlock()
}

func (s *ComplaintStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.loaded = false
	s.mu.Unlock()
}

// Load returns the cached list, calling fetch only when the store is empty.
// The lock is held across fetch so concurrent callers share one request.
func (s *ComplaintStore) Load(ctx context.Context, fetch func(context.Context) ([]client.Complaint, error)) ([]client.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return append([]client.Complaint(nil), s.items...), nil
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items
	s.loaded = true
	return append([]client.Complaint(nil), items...), nil
}
