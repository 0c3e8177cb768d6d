package dataset

import "sync"

// Store hands out the current table to request handlers and lets the
// watcher swap in a freshly loaded one. Readers always see a complete
// table, never a partially loaded one.
type Store struct {
	mu     sync.RWMutex
	table  *Table
	onSwap []func(*Table)
}

func NewStore(table *Table) *Store {
	return &Store{table: table}
}

// Get returns the current table. May be nil before the first load.
func (s *Store) Get() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// OnSwap registers a hook to run after every Swap, so caches keyed on
// the old table can be invalidated.
func (s *Store) OnSwap(fn func(*Table)) {
	s.mu.Lock()
	s.onSwap = append(s.onSwap, fn)
	s.mu.Unlock()
}

// Swap replaces the current table and runs the registered hooks.
func (s *Store) Swap(table *Table) {
	s.mu.Lock()
	s.table = table
	hooks := s.onSwap
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(table)
	}
}
