package klingt

import (
	"github.com/dwbrite/klingt/internal/ring"
	"github.com/dwbrite/klingt/signal"
)

const (
	// lookahead is the number of extra blocks every sub-graph stays
	// ahead of the primary graph. It trades a little latency for a
	// bridge ring that survives scheduling jitter without running dry.
	lookahead = 4

	// bridge rings hold roughly 100ms of audio at the sub-graph rate
	bridgeBufferSeconds = 0.1
	minBridgeSlots      = 8192
)

func bridgeRingSize(sampleRate, channels int) int {
	slots := int(float64(sampleRate)*bridgeBufferSeconds) * channels
	if slots < minBridgeSlots {
		slots = minBridgeSlots
	}
	return slots
}

// bridgeSink terminates a sub-graph: it interleaves its input channels
// into the bridge ring consumed by the paired resampler in the primary
// graph. When the ring lacks room for a full block, the block is
// skipped rather than written partially.
type bridgeSink struct {
	ring     *ring.Queue[float64]
	channels int
	overrun  func()
}

func newBridgeSink(q *ring.Queue[float64], channels int) *bridgeSink {
	return &bridgeSink{ring: q, channels: channels}
}

func (s *bridgeSink) Process(ctx Context, in, out signal.Float64) {
	size := in.Size()
	if s.ring.Free() < size*s.channels {
		if s.overrun != nil {
			s.overrun()
		}
		return
	}
	for i := 0; i < size; i++ {
		for ch := 0; ch < s.channels; ch++ {
			s.ring.Push(in[ch][i])
		}
	}
}

func (s *bridgeSink) Inputs() int { return s.channels }

func (s *bridgeSink) Outputs() int { return 0 }

// resampler sources the primary graph from a bridge ring filled at a
// different rate. Output samples are linearly interpolated between the
// two most recently consumed input frames; the fractional read position
// advances by sourceRate/outputRate per output sample. An empty ring
// mid-block produces silence for the remainder of the block and
// recovers on the next one.
type resampler struct {
	ring       *ring.Queue[float64]
	channels   int
	sourceRate int

	// fractional position between prev and curr
	pos    float64
	prev   []float64
	curr   []float64
	primed bool

	underrun func()
}

func newResampler(q *ring.Queue[float64], channels, sourceRate int) *resampler {
	return &resampler{
		ring:       q,
		channels:   channels,
		sourceRate: sourceRate,
		prev:       make([]float64, channels),
		curr:       make([]float64, channels),
	}
}

// readFrame consumes one interleaved frame. Frames are consumed whole
// to keep channel alignment across underruns.
func (r *resampler) readFrame() bool {
	if r.ring.Len() < r.channels {
		return false
	}
	for ch := 0; ch < r.channels; ch++ {
		v, _ := r.ring.Pop()
		r.curr[ch] = v
	}
	return true
}

func (r *resampler) advanceFrame() {
	copy(r.prev, r.curr)
}

func (r *resampler) silence(out signal.Float64, from int) {
	for ch := range out {
		buf := out[ch]
		for i := from; i < len(buf); i++ {
			buf[i] = 0
		}
	}
	if r.underrun != nil {
		r.underrun()
	}
}

func (r *resampler) Process(ctx Context, in, out signal.Float64) {
	ratio := float64(r.sourceRate) / float64(ctx.SampleRate)
	size := out.Size()

	if !r.primed {
		if r.readFrame() {
			r.advanceFrame()
			if r.readFrame() {
				r.primed = true
			}
		}
		if !r.primed {
			r.silence(out, 0)
			return
		}
	}

	for i := 0; i < size; i++ {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			r.advanceFrame()
			if !r.readFrame() {
				r.silence(out, i)
				return
			}
		}
		t := r.pos
		for ch := 0; ch < r.channels; ch++ {
			out[ch][i] = r.prev[ch] + t*(r.curr[ch]-r.prev[ch])
		}
		r.pos += ratio
	}
}

func (r *resampler) Inputs() int { return 0 }

func (r *resampler) Outputs() int { return r.channels }
