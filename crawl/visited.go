package crawl

import "sync"

// VisitedSet is the deduplication ledger for a crawl run. URLs are compared
// by exact string identity. Snapshot returns URLs in insertion order.
// It is safe for concurrent use by multiple goroutines.
type VisitedSet struct {
	mu    sync.RWMutex
	index map[string]struct{}
	order []string
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{index: make(map[string]struct{})}
}

// Contains reports whether url has been inserted.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.index[url]
	return ok
}

// Insert adds url and reports whether it was new.
// The membership test and insertion happen atomically.
func (v *VisitedSet) Insert(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[url]; ok {
		return false
	}
	v.index[url] = struct{}{}
	v.order = append(v.order, url)
	return true
}

// Len returns the number of distinct URLs inserted.
func (v *VisitedSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.order)
}

// Snapshot returns a copy of the URLs in insertion order.
func (v *VisitedSet) Snapshot() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.order...)
}
