// Package memory is an in-process sheet mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"expensetracker/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
	seen map[string]struct{}
}

var (
	_ sheets.RowWriter = (*Store)(nil)
	_ sheets.RowLister = (*Store)(nil)
)

func New() *Store {
	return &Store{seen: make(map[string]struct{})}
}

func (s *Store) AppendRow(_ context.Context, row sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	if row.MessageID != "" {
		s.seen[row.MessageID] = struct{}{}
	}
	return nil
}

func (s *Store) HasMessage(_ context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[messageID]
	return ok, nil
}

// Rows returns a copy of the appended rows.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
