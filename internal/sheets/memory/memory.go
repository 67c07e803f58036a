// Package memory is an in-process sheets.RowWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	ports "fintrack/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

var _ ports.RowWriter = (*Store)(nil)

func New() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

func (s *Store) ReplaceRows(_ context.Context, sheet string, rows [][]string) error {
	cp := make([][]string, len(rows))
	for i, row := range rows {
		cp[i] = append([]string(nil), row...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = cp
	return nil
}

// Rows returns the current content of sheet, or nil when never written.
func (s *Store) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheets[sheet]
}
