package config

import "sync"

// Visited is the set of files already resolved within one resolution tree.
// The same *Visited must be shared by every recursive call so that a file
// reached through several includes is resolved once and include cycles
// terminate. It is safe for concurrent use.
type Visited struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewVisited() *Visited {
	return &Visited{seen: make(map[string]struct{})}
}

// Add inserts path and reports whether it was not present before. The
// check and the insert happen atomically.
func (v *Visited) Add(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[path]; ok {
		return false
	}
	v.seen[path] = struct{}{}
	v.order = append(v.order, path)
	return true
}

func (v *Visited) Has(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, ok := v.seen[path]
	return ok
}

// Paths returns the visited paths in insertion order.
func (v *Visited) Paths() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]string(nil), v.order...)
}
