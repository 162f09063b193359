// Package sine provides a sine wave oscillator node.
package sine

import (
	"math"

	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// defaultAmplitude is -12dB, a safe default.
const defaultAmplitude = 0.25

// Osc is a mono sine wave oscillator.
type Osc struct {
	frequency float64
	amplitude float64
	phase     float64
}

// Option provides a way to set functional parameters to the oscillator.
type Option func(*Osc)

// New returns an oscillator at the provided frequency in Hz.
func New(frequency float64, options ...Option) *Osc {
	o := &Osc{
		frequency: frequency,
		amplitude: defaultAmplitude,
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// WithAmplitude sets the output amplitude, clamped to [0, 1].
func WithAmplitude(amplitude float64) Option {
	return func(o *Osc) {
		o.amplitude = clamp(amplitude, 0, 1)
	}
}

// SetFrequency returns a mutation changing the oscillator frequency.
func (o *Osc) SetFrequency(frequency float64) mutable.Mutation {
	return func() {
		o.frequency = math.Max(frequency, 0)
	}
}

// SetAmplitude returns a mutation changing the output amplitude.
func (o *Osc) SetAmplitude(amplitude float64) mutable.Mutation {
	return func() {
		o.amplitude = clamp(amplitude, 0, 1)
	}
}

// Frequency returns the current frequency in Hz.
func (o *Osc) Frequency() float64 {
	return o.frequency
}

// Amplitude returns the current amplitude.
func (o *Osc) Amplitude() float64 {
	return o.amplitude
}

func (o *Osc) Process(ctx klingt.Context, in, out signal.Float64) {
	phaseInc := o.frequency / float64(ctx.SampleRate)
	buf := out[0]
	for i := range buf {
		buf[i] = math.Sin(o.phase*2*math.Pi) * o.amplitude
		o.phase += phaseInc
		if o.phase >= 1 {
			o.phase--
		}
	}
}

func (o *Osc) Inputs() int { return 0 }

func (o *Osc) Outputs() int { return 1 }

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
