package world

import "sync"

// Queue is the synchronized hand-off between command producers and the single
// consumer in the mutation phase. Submit never blocks on a full buffer and never
// drops: order is the order in which producers acquired the lock.
type Queue struct {
	mu      sync.Mutex
	pending []Command
	spare   []Command
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		pending: make([]Command, 0, capacity),
		spare:   make([]Command, 0, capacity),
	}
}

// Submit enqueues cmd. Safe for concurrent use.
func (q *Queue) Submit(cmd Command) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()
}

// Len returns the number of commands waiting for the next drain.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// take hands everything pending to the consumer and swaps in an empty buffer.
// The returned slice is valid until the matching release.
func (q *Queue) take() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.spare = nil
	return batch
}

// release returns a drained batch buffer for reuse.
func (q *Queue) release(batch []Command) {
	clear(batch)
	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
}
