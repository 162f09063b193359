package klingt

import (
	"github.com/dwbrite/klingt/signal"
)

// Context carries per-block processing parameters. It is rebuilt for
// every block and passed by value.
type Context struct {
	SampleRate int
	BufferSize int
}

// Node is implemented by every processing unit of a graph: sources
// generate signal, effects transform it, sinks consume it.
//
// Process receives one pre-summed buffer per input channel and must
// fully populate every sample of every output channel. When several
// producers feed the same input channel, the graph sums them before the
// node runs, so single-input nodes always see one merged signal.
// Process is called from the processing goroutine only and must not
// allocate or block.
type Node interface {
	Process(ctx Context, in, out signal.Float64)

	// Inputs returns the number of input channels. Constant for the
	// node's lifetime, zero for sources.
	Inputs() int

	// Outputs returns the number of output channels. Constant for the
	// node's lifetime, zero for sinks.
	Outputs() int
}

// RateAware is implemented by nodes authored for a fixed sample rate,
// such as sample players. A node added to an engine running at a
// different rate is placed into a nested graph at its native rate and
// bridged to the output through a resampler. Zero means any rate.
type RateAware interface {
	NativeSampleRate() int
}

// nativeRate returns the node's fixed rate or zero.
func nativeRate(n Node) int {
	if ra, ok := n.(RateAware); ok {
		return ra.NativeSampleRate()
	}
	return 0
}
