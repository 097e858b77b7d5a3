package game

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 64

// stripedMutex serializes work per key using a fixed pool of mutexes.
// Distinct keys may share a stripe; that only costs some parallelism.
type stripedMutex struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe for key and returns its unlock function
func (m *stripedMutex) lock(key string) func() {
	mu := &m.stripes[xxhash.Sum64String(key)%lockStripes]
	mu.Lock()
	return mu.Unlock
}
