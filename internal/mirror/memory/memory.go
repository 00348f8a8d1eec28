package memory

import (
	"context"
	"fmt"
	"sync"

	"boutique/internal/core"
)

// Store is an in-memory mirror for development and tests.
type Store struct {
	mu     sync.Mutex
	items  []core.PurchaseRecord
	months map[string][]core.PurchaseRecord
}

func New() *Store {
	return &Store{months: make(map[string][]core.PurchaseRecord)}
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rec core.PurchaseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ReplaceMonth overwrites the stored rows for one YYYY-MM key.
func (s *Store) ReplaceMonth(_ context.Context, month string, records []core.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months[month] = append([]core.PurchaseRecord(nil), records...)
	return nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.PurchaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PurchaseRecord(nil), s.items...)
}

// Month returns a copy of the last full push for one YYYY-MM key.
func (s *Store) Month(month string) []core.PurchaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PurchaseRecord(nil), s.months[month]...)
}
