package cache

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// ExistenceFilter is a bloom filter over thread ids. It short-circuits
// lookups for ids that were never created, so junk requests skip the
// database. False positives fall through to a normal query.
type ExistenceFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewExistenceFilter sizes the filter for n expected entries at fp false
// positive rate.
func NewExistenceFilter(n uint, fp float64) *ExistenceFilter {
	return &ExistenceFilter{
		filter: bloom.NewWithEstimates(n, fp),
	}
}

// Add records an id as existing.
func (f *ExistenceFilter) Add(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(fmt.Sprintf("%d", id))
}

// MayExist reports whether an id might exist. A false result is definitive.
func (f *ExistenceFilter) MayExist(id uint) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(fmt.Sprintf("%d", id))
}

// Reset clears the filter and reloads it from ids.
func (f *ExistenceFilter) Reset(ids []uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.ClearAll()
	for _, id := range ids {
		f.filter.AddString(fmt.Sprintf("%d", id))
	}
}
