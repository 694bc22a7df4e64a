// Package queue implements an unbounded multi-producer, multi-consumer FIFO
// with a bounded wait on the consumer side.
//
// Push never blocks. TryPop waits at most the given timeout for an item, so
// a consumer can interleave waiting with other checks (such as a
// cancellation flag) without ever blocking forever. Waiting consumers do not
// hold the queue lock; the lock only guards the backing slice.
package queue
