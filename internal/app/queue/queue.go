package queue

import (
	"context"
	"sync"

	"prover/internal/app/errors"
)

// Fifo is an unbounded first-in first-out queue with a blocking, cancellable Take
type Fifo[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
	done   chan struct{}
	closed bool
}

// New creates an empty queue
func New[T any]() *Fifo[T] {
	return &Fifo[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Put appends an item, reporting false when the queue is already closed
func (q *Fifo[T]) Put(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, item)
	q.signal()

	return true
}

// Take removes the oldest item, blocking until one is available, the context ends or the queue is closed and drained
func (q *Fifo[T]) Take(ctx context.Context) (T, error) {
	for {
		if item, ok, closed := q.pop(); ok {
			return item, nil
		} else if closed {
			var zero T
			return zero, errors.ErrQueueClosed
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryTake removes the oldest item without blocking
func (q *Fifo[T]) TryTake() (T, bool) {
	item, ok, _ := q.pop()
	return item, ok
}

// Len returns the number of pending items
func (q *Fifo[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Close stops accepting new items; pending items remain available to Take
func (q *Fifo[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.done)
}

func (q *Fifo[T]) pop() (item T, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return item, false, q.closed
	}

	item = q.items[0]

	var zero T
	q.items[0] = zero
	q.items = q.items[1:]

	// hand the wakeup on to the next waiting consumer
	if len(q.items) > 0 {
		q.signal()
	}

	return item, true, q.closed
}

func (q *Fifo[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
