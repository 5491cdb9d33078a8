package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/recoverly/flowedit/pkg/domain"
)

// Store implements ports.AutomationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Automation
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Automation),
	}
}

// Save keeps a deep copy of the automation.
func (s *Store) Save(ctx context.Context, a *domain.Automation) error {
	copied := a.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[a.ID] = copied
	return nil
}

// Load returns a copy so the caller can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, id string) (*domain.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[id]
	if !ok {
		return nil, domain.ErrAutomationNotFound
	}
	return a.Clone(), nil
}

// Delete removes the automation.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored automation IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
