// Package slew provides a slew rate limiter node. It bounds how fast
// the signal may change per sample, smoothing control signals and harsh
// transients or creating portamento effects.
package slew

import (
	"math"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// Limiter clamps the per-sample delta of its input to a maximum rate.
type Limiter struct {
	channels int
	rate     float64
	last     []float64
	// rate expressed per second, recalculated against the block's
	// sample rate when set
	ratePerSecond float64
}

// Option provides a way to set functional parameters to the limiter.
type Option func(*Limiter)

// New returns a stereo limiter allowing at most rate change per sample.
func New(rate float64, options ...Option) *Limiter {
	l := &Limiter{
		channels: 2,
		rate:     math.Abs(rate),
	}
	for _, option := range options {
		option(l)
	}
	l.last = make([]float64, l.channels)
	return l
}

// WithChannels sets the channel count of the node.
func WithChannels(channels int) Option {
	return func(l *Limiter) {
		l.channels = channels
	}
}

// SetRate returns a mutation changing the maximum change per sample.
func (l *Limiter) SetRate(rate float64) mutable.Mutation {
	return func() {
		l.rate = math.Abs(rate)
		l.ratePerSecond = 0
	}
}

// SetRatePerSecond returns a mutation expressing the maximum change in
// units per second; the per-sample rate follows the graph sample rate.
func (l *Limiter) SetRatePerSecond(rate float64) mutable.Mutation {
	return func() {
		l.ratePerSecond = math.Abs(rate)
	}
}

// Rate returns the current maximum change per sample.
func (l *Limiter) Rate() float64 {
	return l.rate
}

func (l *Limiter) Process(ctx klingt.Context, in, out signal.Float64) {
	if l.ratePerSecond != 0 {
		l.rate = l.ratePerSecond / float64(ctx.SampleRate)
	}
	maxDelta := l.rate
	for ch := range out {
		last := l.last[ch]
		for i := range out[ch] {
			delta := in[ch][i] - last
			if delta > maxDelta {
				delta = maxDelta
			} else if delta < -maxDelta {
				delta = -maxDelta
			}
			last += delta
			out[ch][i] = last
		}
		l.last[ch] = last
	}
}

func (l *Limiter) Inputs() int { return l.channels }

func (l *Limiter) Outputs() int { return l.channels }
