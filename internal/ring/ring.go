// Package ring provides a bounded wait-free single-producer
// single-consumer queue. It is the only synchronization primitive used
// on the audio-processing path: per-node parameter channels and the
// sub-graph audio bridges are both built on it.
package ring

import (
	"sync/atomic"
)

// Queue is a bounded SPSC queue. One goroutine may call Push, one
// goroutine may call Pop; neither ever blocks or allocates. Positions
// are free-running counters, the buffer length is a power of two.
type Queue[T any] struct {
	buf  []T
	mask uint64
	// head is advanced by the consumer, tail by the producer.
	head atomic.Uint64
	tail atomic.Uint64
}

// New returns a queue that holds at least capacity elements. Capacity
// is rounded up to the next power of two and is at least 2.
func New[T any](capacity int) *Queue[T] {
	size := nextPowerOfTwo(capacity)
	return &Queue[T]{
		buf:  make([]T, size),
		mask: uint64(size) - 1,
	}
}

// Push appends v to the queue. It reports false when the queue is full
// and the value was not enqueued.
func (q *Queue[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes and returns the oldest element. It reports false when the
// queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		var zero T
		return zero, false
	}
	v := q.buf[head&q.mask]
	// drop the reference so consumed values can be collected
	var zero T
	q.buf[head&q.mask] = zero
	q.head.Store(head + 1)
	return v, true
}

// Len returns the number of queued elements. It is exact for the caller
// that owns one end of the queue and a snapshot for anyone else.
func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the total capacity of the queue.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Free returns the number of unoccupied slots.
func (q *Queue[T]) Free() int {
	return q.Cap() - q.Len()
}

func nextPowerOfTwo(n int) int {
	size := 2
	for size < n {
		size <<= 1
	}
	return size
}
