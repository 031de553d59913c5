// Package memory is an in-process table store used by tests and as a
// throwaway dev backend. Contents vanish on restart.
package memory

import (
	"context"
	"sync"

	"tally/internal/store"
)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
}

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

func (s *Store) Load(_ context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyRows(rows), nil
}

func (s *Store) Save(_ context.Context, table string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = copyRows(rows)
	return nil
}

func (s *Store) Append(_ context.Context, table string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], copyRows(rows)...)
	return nil
}

func (s *Store) Exists(_ context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	return ok && len(rows) > 0, nil
}

func (s *Store) Delete(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, table)
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
