package entity

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateID is returned by [Seen.Admit] when the uuid was already
// admitted.
var ErrDuplicateID = errors.New("entity with that uuid already exists")

// Seen tracks the uuids admitted during one archive scan. It keeps only the
// ids, never entity content. The zero value is ready to use and it is safe
// for concurrent use.
type Seen struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSeen returns an empty [Seen] sized for about n entities.
func NewSeen(n int) *Seen {
	return &Seen{ids: make(map[string]struct{}, max(n, 0))}
}

// Admit validates e and records its uuid. A malformed entity yields the
// [Validate] error and a repeated uuid yields [ErrDuplicateID]; neither is
// recorded.
func (s *Seen) Admit(e RawEntity) error {
	if err := Validate(e); err != nil {
		return fmt.Errorf("entity: admit %q: %w", e.UUID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, dup := s.ids[e.UUID]; dup {
		return fmt.Errorf("entity: admit %q: %w", e.UUID, ErrDuplicateID)
	}
	s.ids[e.UUID] = struct{}{}
	return nil
}

// Has reports whether uuid was admitted.
func (s *Seen) Has(uuid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[uuid]
	return ok
}

// Len returns the number of admitted uuids.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
