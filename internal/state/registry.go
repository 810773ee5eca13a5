package state

import (
	"path/filepath"
	"sync"
)

// Registry hands out one shared Store per project directory so that
// components rendering and mutating the same ledger go through the same
// lock. It is owned by the caller rather than being process-global, which
// keeps tests isolated.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get returns the store for the given project directory, creating it on
// first use. Paths are cleaned so equivalent spellings share an instance.
func (r *Registry) Get(projectDir string) *Store {
	key := filepath.Clean(projectDir)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[key]; ok {
		return s
	}
	s := New(key)
	r.stores[key] = s
	return s
}

// Len returns the number of distinct stores held
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
