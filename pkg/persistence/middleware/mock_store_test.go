package middleware_test

import (
	"context"
	"errors"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/ports"
)

var errBackend = errors.New("backend down")

// MockStore is a map-based store that keeps pointers as given and can be told to fail.
type MockStore struct {
	data  map[string]*domain.Automation
	fail  bool
	calls int
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.Automation)}
}

func (s *MockStore) Save(ctx context.Context, a *domain.Automation) error {
	s.calls++
	if s.fail {
		return errBackend
	}
	s.data[a.ID] = a
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*domain.Automation, error) {
	s.calls++
	if s.fail {
		return nil, errBackend
	}
	a, ok := s.data[id]
	if !ok {
		return nil, domain.ErrAutomationNotFound
	}
	return a, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	s.calls++
	if s.fail {
		return errBackend
	}
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.calls++
	if s.fail {
		return nil, errBackend
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.AutomationStore = (*MockStore)(nil)
