package cache

import (
	"context"
	"sync"
)

// InMemorySequenceReserver keeps sequence counters in process memory.
// It only protects concurrent requests within one instance.
type InMemorySequenceReserver struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewInMemorySequenceReserver creates an empty in-memory reserver
func NewInMemorySequenceReserver() *InMemorySequenceReserver {
	return &InMemorySequenceReserver{counters: make(map[string]int)}
}

// Reserve returns the next candidate for yearPrefix, never less than floor+1
func (r *InMemorySequenceReserver) Reserve(ctx context.Context, yearPrefix string, floor int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := max(r.counters[yearPrefix], floor) + 1
	r.counters[yearPrefix] = next
	return next, nil
}

// Close is a no-op
func (r *InMemorySequenceReserver) Close() error {
	return nil
}
