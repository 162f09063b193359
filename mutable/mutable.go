// Package mutable implements the parameter channel that carries node
// state changes from any goroutine into the audio-processing goroutine.
// Changes are expressed as mutations: closures built by node methods
// and executed right before the owning node processes its next block,
// so node state is only ever touched from the processing goroutine.
package mutable

import (
	"errors"

	"github.com/dwbrite/klingt/internal/ring"
)

// DefaultCapacity is the number of pending mutations a channel holds
// when no explicit capacity was requested.
const DefaultCapacity = 64

// ErrChannelFull is returned by Send when the channel has no room for
// another mutation. The channel never blocks the sender; callers decide
// whether to retry, drop, or use a larger capacity.
var ErrChannelFull = errors.New("mutable: channel is full")

// Mutation mutates the state of a single node. It must only be
// executed by the processing goroutine.
type Mutation func()

type (
	// Sender is the producer half of a parameter channel. It is owned
	// by exactly one goroutine at a time; concurrent sends to the same
	// Sender require external coordination, sends to different Senders
	// do not.
	Sender struct {
		q *ring.Queue[Mutation]
	}

	// Receiver is the consumer half, owned by the graph that hosts the
	// paired node.
	Receiver struct {
		q *ring.Queue[Mutation]
	}
)

// NewChannel returns the linked halves of a parameter channel. Capacity
// zero or below falls back to DefaultCapacity.
func NewChannel(capacity int) (*Sender, *Receiver) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := ring.New[Mutation](capacity)
	return &Sender{q: q}, &Receiver{q: q}
}

// Send enqueues the mutation without blocking. ErrChannelFull is
// returned when the channel is full and the mutation was not delivered.
func (s *Sender) Send(m Mutation) error {
	if !s.q.Push(m) {
		return ErrChannelFull
	}
	return nil
}

// Drain executes all pending mutations in FIFO order. Called once at
// the start of the owning node's block.
func (r *Receiver) Drain() {
	if r == nil {
		return
	}
	for {
		m, ok := r.q.Pop()
		if !ok {
			return
		}
		m()
	}
}

// Pending returns the number of queued mutations.
func (r *Receiver) Pending() int {
	if r == nil {
		return 0
	}
	return r.q.Len()
}
