package mocks

import (
	"sync"

	"github.com/mcoot/omnigram/internal/dependencies/random"
)

// MockRandom returns queued picks so tests choose which omnigram a session gets.
// It is safe for use from concurrent request handlers.
type MockRandom struct {
	mu      sync.Mutex
	queue   []int
	history []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with an empty queue
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued value modulo n. An empty queue yields 0.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := 0
	if len(r.queue) > 0 && n > 0 {
		v = r.queue[0] % n
		r.queue = r.queue[1:]
	}
	r.history = append(r.history, n)
	return v
}

// QueueIntn appends values to the pick queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}

// Calls returns the n passed to each Intn call so far, i.e. the pool sizes drawn from
func (r *MockRandom) Calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.history...)
}
