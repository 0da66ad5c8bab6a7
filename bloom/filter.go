// Package bloom provides approximate URL membership using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a space-bounded approximate set of URLs. Membership tests may
// report false positives but never false negatives, so it only suits
// decisions where a wrong "seen" answer is harmless.
// Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestOrAdd adds the URL and reports whether it might already have been present.
func (f *Filter) TestOrAdd(url string) bool {
	return f.f.TestOrAddString(url)
}
