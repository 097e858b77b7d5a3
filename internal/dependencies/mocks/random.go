package mocks

import (
	"sync"

	"github.com/mcoot/ladder/internal/dependencies/random"
)

// MockRandom replays queued results. Once a queue runs dry Intn returns 0
// and String returns "". Queued Intn values are clamped into [0, n) so a
// script written for one call site cannot index out of range at another.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int

	stringResults []string
	stringIndex   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || r.intnIndex >= len(r.intnResults) {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++

	switch {
	case result < 0:
		return 0
	case result >= n:
		return n - 1
	}
	return result
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stringIndex >= len(r.stringResults) {
		return ""
	}
	result := r.stringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults, r.intnIndex = nil, 0
	r.stringResults, r.stringIndex = nil, 0
}
