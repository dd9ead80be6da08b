// Package memory is an in-process backing store for tests and local
// development. It holds the same grid shape the real stores persist.
package memory

import (
	"context"
	"sync"

	"gagebu/internal/core"
	"gagebu/internal/table"
)

type Store struct {
	mu   sync.Mutex
	grid [][]string

	// FailNextWrite makes the next Write fail with table.ErrPersistence,
	// emulating a locked or unreachable store.
	FailNextWrite bool

	writes int
}

var _ table.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Seed replaces the grid with the given raw rows.
func (s *Store) Seed(rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = cloneGrid(rows)
}

// SeedRows seeds the store with a well-formed grid: title, header, then the
// serialized rows.
func (s *Store) SeedRows(rows []core.Row) {
	s.Seed(append(table.HeaderRows(), table.Serialize(rows)...))
}

// Name implements table.Store.
func (s *Store) Name() string {
	return "memory"
}

// Load implements table.Loader.
func (s *Store) Load(_ context.Context) (table.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return table.RawTable{Rows: cloneGrid(s.grid), HeaderRow: -1}, nil
}

// Write implements table.Writer. The grid is swapped whole, so a failed
// write leaves the previous contents untouched.
func (s *Store) Write(_ context.Context, rows []core.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNextWrite {
		s.FailNextWrite = false
		return table.ErrPersistence
	}
	s.grid = append(table.HeaderRows(), table.Serialize(rows)...)
	s.writes++
	return nil
}

// Writes returns how many writes succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneGrid(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
