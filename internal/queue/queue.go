package queue

import (
	"sync"
	"time"
)

// Queue is safe for concurrent use. The zero value is not usable; call New.
type Queue[T any] struct {
	mutex sync.Mutex
	items []T
	// ready holds at most one wakeup token. It is refilled on every Push and
	// whenever a consumer leaves items behind, so a waiting consumer cannot
	// miss an item.
	ready chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends v to the tail of the queue.
func (q *Queue[T]) Push(v T) {
	q.mutex.Lock()
	q.items = append(q.items, v)
	q.mutex.Unlock()

	q.notify()
}

// TryPop removes and returns the head of the queue, waiting up to timeout
// for one to arrive. It returns false if the queue stayed empty.
func (q *Queue[T]) TryPop(timeout time.Duration) (T, bool) {
	if v, ok := q.pop(); ok {
		return v, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.ready:
			if v, ok := q.pop(); ok {
				return v, true
			}
		case <-timer.C:
			return q.pop()
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

func (q *Queue[T]) pop() (T, bool) {
	var zero T

	q.mutex.Lock()
	if len(q.items) == 0 {
		q.mutex.Unlock()
		return zero, false
	}

	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	remaining := len(q.items)
	q.mutex.Unlock()

	if remaining > 0 {
		q.notify()
	}

	return v, true
}

func (q *Queue[T]) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
