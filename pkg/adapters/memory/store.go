package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/macrograph/pkg/domain"
)

// Store implements ports.MacroStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Macro
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store seeded with macros.
func NewStore(macros ...*domain.Macro) *Store {
	s := &Store{
		data: make(map[string]*domain.Macro, len(macros)),
	}
	for _, m := range macros {
		s.data[m.Name] = m.Clone()
	}
	return s
}

// Save persists a copy of the macro, replacing any macro with the same name.
func (s *Store) Save(ctx context.Context, macro *domain.Macro) error {
	copied := macro.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[macro.Name] = copied
	return nil
}

// Load retrieves a copy of the macro so callers can't mutate the store through the pointer.
func (s *Store) Load(ctx context.Context, name string) (*domain.Macro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	macro, ok := s.data[name]
	if !ok {
		return nil, domain.ErrMacroNotFound
	}
	return macro.Clone(), nil
}

// Delete removes the macro.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored macro names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
