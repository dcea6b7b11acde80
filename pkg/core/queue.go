package core

import (
	"fmt"
	"sync/atomic"
)

// QueueStore holds the number of waiting cars per direction.
// Increments and decrements on the same direction are linearizable and a
// count can never go below zero.
type QueueStore struct {
	counts [NumDirections]atomic.Int64
}

// NewQueueStore creates a store with every queue empty
func NewQueueStore() *QueueStore {
	return &QueueStore{}
}

// Add adds n arriving cars to the direction and returns the new count
func (q *QueueStore) Add(d Direction, n int) (int, error) {
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: add %d to %s", ErrNegativeCount, n, d)
	}
	return int(q.counts[d].Add(int64(n))), nil
}

// TryDecrement removes one car if the queue is non-empty.
// It returns the new count and whether a car was removed.
func (q *QueueStore) TryDecrement(d Direction) (int, bool) {
	if !d.Valid() {
		return 0, false
	}

	c := &q.counts[d]
	for {
		current := c.Load()
		if current <= 0 {
			return 0, false
		}
		if c.CompareAndSwap(current, current-1) {
			return int(current - 1), true
		}
	}
}

// Count returns the current count of a direction
func (q *QueueStore) Count(d Direction) int {
	if !d.Valid() {
		return 0
	}
	return int(q.counts[d].Load())
}

// Set overwrites the count of a direction
func (q *QueueStore) Set(d Direction, n int) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if n < 0 {
		return fmt.Errorf("%w: set %s to %d", ErrNegativeCount, d, n)
	}
	q.counts[d].Store(int64(n))
	return nil
}

// Snapshot returns a possibly stale copy of every count
func (q *QueueStore) Snapshot() map[Direction]int {
	result := make(map[Direction]int, NumDirections)
	for _, d := range Rotation {
		result[d] = int(q.counts[d].Load())
	}
	return result
}

// Total returns the sum of all queues
func (q *QueueStore) Total() int {
	total := 0
	for _, d := range Rotation {
		total += int(q.counts[d].Load())
	}
	return total
}

// Reset empties every queue
func (q *QueueStore) Reset() {
	for _, d := range Rotation {
		q.counts[d].Store(0)
	}
}
