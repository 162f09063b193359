// Package mock provides nodes to test graph topologies without any
// real DSP: a source producing known values, a passthrough effect and a
// sink capturing everything it receives.
package mock

import (
	"github.com/dwbrite/klingt"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// Source produces a constant value on every sample of every channel.
type Source struct {
	// Hook, when set, runs on every processed block.
	Hook func()
	// Rate is the native sample rate reported to the engine, zero for
	// any rate.
	Rate int

	channels int
	value    float64
	blocks   int
}

// NewSource returns a source producing value on all channels.
func NewSource(channels int, value float64) *Source {
	return &Source{channels: channels, value: value}
}

// SetValue returns a mutation changing the produced value.
func (s *Source) SetValue(value float64) mutable.Mutation {
	return func() {
		s.value = value
	}
}

func (s *Source) Process(ctx klingt.Context, in, out signal.Float64) {
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = s.value
		}
	}
	s.blocks++
	if s.Hook != nil {
		s.Hook()
	}
}

func (s *Source) Inputs() int { return 0 }

func (s *Source) Outputs() int { return s.channels }

func (s *Source) NativeSampleRate() int { return s.Rate }

// Blocks returns how many blocks the source has produced.
func (s *Source) Blocks() int { return s.blocks }

// Pass copies its summed input to its output unchanged.
type Pass struct {
	// Hook, when set, runs on every processed block.
	Hook func()
	// Rate is the native sample rate reported to the engine, zero for
	// any rate.
	Rate int

	channels int
	blocks   int
}

// NewPass returns a passthrough effect with the given channel count.
func NewPass(channels int) *Pass {
	return &Pass{channels: channels}
}

func (p *Pass) Process(ctx klingt.Context, in, out signal.Float64) {
	out.Copy(in)
	p.blocks++
	if p.Hook != nil {
		p.Hook()
	}
}

func (p *Pass) Inputs() int { return p.channels }

func (p *Pass) NativeSampleRate() int { return p.Rate }

func (p *Pass) Outputs() int { return p.channels }

// Blocks returns how many blocks the effect has processed.
func (p *Pass) Blocks() int { return p.blocks }

// Sink captures every block it receives.
type Sink struct {
	// Hook, when set, runs on every processed block.
	Hook func()

	channels int
	buffer   signal.Float64
	blocks   int
}

// NewSink returns a capturing sink with the given channel count.
func NewSink(channels int) *Sink {
	return &Sink{channels: channels}
}

func (s *Sink) Process(ctx klingt.Context, in, out signal.Float64) {
	s.buffer = s.buffer.Append(in)
	s.blocks++
	if s.Hook != nil {
		s.Hook()
	}
}

func (s *Sink) Inputs() int { return s.channels }

func (s *Sink) Outputs() int { return 0 }

// Buffer returns everything the sink has received so far.
func (s *Sink) Buffer() signal.Float64 { return s.buffer }

// Blocks returns how many blocks the sink has received.
func (s *Sink) Blocks() int { return s.blocks }

// Reset drops the captured buffer.
func (s *Sink) Reset() { s.buffer = nil }
