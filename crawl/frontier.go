package crawl

import (
	"sync"

	"github.com/fwojciec/sitecrawl"
)

// Frontier is a FIFO queue of admitted targets waiting to be fetched, which
// gives the crawl its breadth-first order. It does not deduplicate; admission
// is decided by the Scheduler against its VisitedSet.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	queue []sitecrawl.Target
	head  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends a target to the back of the queue.
func (f *Frontier) Push(t sitecrawl.Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, t)
}

// Pop removes and returns the oldest target.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (sitecrawl.Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return sitecrawl.Target{}, false
	}
	t := f.queue[f.head]
	f.queue[f.head] = sitecrawl.Target{}
	f.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if f.head >= 64 && f.head*2 >= len(f.queue) {
		n := copy(f.queue, f.queue[f.head:])
		f.queue = f.queue[:n]
		f.head = 0
	}
	return t, true
}

// Len returns the number of queued targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}
