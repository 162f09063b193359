// Package gain provides a volume control node with click-free
// parameter smoothing.
package gain

import (
	"math"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// defaultSmoothing is roughly 7ms at 48kHz.
const defaultSmoothing = 0.995

// Gain scales its input by a smoothed multiplier. 1.0 is unity, 0.0 is
// silence. Smoothing moves the applied gain exponentially toward the
// target to prevent clicks on rapid changes.
type Gain struct {
	channels int
	gain     float64
	smoothed float64
	coeff    float64
}

// Option provides a way to set functional parameters to the gain.
type Option func(*Gain)

// New returns a stereo gain node with the provided multiplier.
func New(gain float64, options ...Option) *Gain {
	g := &Gain{
		channels: 2,
		gain:     gain,
		smoothed: gain,
		coeff:    defaultSmoothing,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// WithChannels sets the channel count of the node.
func WithChannels(channels int) Option {
	return func(g *Gain) {
		g.channels = channels
	}
}

// WithSmoothing sets the smoothing time constant: after ms milliseconds
// the applied gain has covered ~63% of the distance to the target.
func WithSmoothing(ms float64, sampleRate int) Option {
	return func(g *Gain) {
		samples := ms / 1000 * float64(sampleRate)
		g.coeff = math.Exp(-1 / samples)
	}
}

// WithoutSmoothing makes gain changes instant.
func WithoutSmoothing() Option {
	return func(g *Gain) {
		g.coeff = 0
	}
}

// SetGain returns a mutation changing the target multiplier.
func (g *Gain) SetGain(gain float64) mutable.Mutation {
	return func() {
		g.gain = gain
	}
}

// Gain returns the current target multiplier.
func (g *Gain) Gain() float64 {
	return g.gain
}

func (g *Gain) Process(ctx klingt.Context, in, out signal.Float64) {
	target := g.gain
	coeff := g.coeff
	current := g.smoothed
	for ch := range out {
		// channels track the same trajectory, so each restarts from the
		// value stored before the block
		applied := current
		for i := range out[ch] {
			applied = target + coeff*(applied-target)
			out[ch][i] = in[ch][i] * applied
		}
		if ch == 0 {
			g.smoothed = applied
		}
	}
}

func (g *Gain) Inputs() int { return g.channels }

func (g *Gain) Outputs() int { return g.channels }
