// Package mixer provides a summing junction node. The graph already
// sums every producer feeding the same consumer, so the mixer itself
// only applies a master level to the merged signal; its value is being
// an explicit, controllable mix point in the topology.
package mixer

import (
	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// Mixer merges any number of producers into one signal with a master
// level.
type Mixer struct {
	channels int
	level    float64
}

// Option provides a way to set functional parameters to the mixer.
type Option func(*Mixer)

// New returns a stereo mixer at unity level.
func New(options ...Option) *Mixer {
	m := &Mixer{
		channels: 2,
		level:    1,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// WithChannels sets the channel count of the mix bus.
func WithChannels(channels int) Option {
	return func(m *Mixer) {
		m.channels = channels
	}
}

// WithLevel sets the initial master level.
func WithLevel(level float64) Option {
	return func(m *Mixer) {
		m.level = level
	}
}

// Stereo returns a two-channel mixer.
func Stereo() *Mixer {
	return New(WithChannels(2))
}

// Mono returns a single-channel mixer.
func Mono() *Mixer {
	return New(WithChannels(1))
}

// SetLevel returns a mutation changing the master level.
func (m *Mixer) SetLevel(level float64) mutable.Mutation {
	return func() {
		m.level = level
	}
}

// Level returns the current master level.
func (m *Mixer) Level() float64 {
	return m.level
}

func (m *Mixer) Process(ctx klingt.Context, in, out signal.Float64) {
	if m.level == 1 {
		out.Copy(in)
		return
	}
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = in[ch][i] * m.level
		}
	}
}

func (m *Mixer) Inputs() int { return m.channels }

func (m *Mixer) Outputs() int { return m.channels }
