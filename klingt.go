package klingt

import (
	"fmt"
	"math"

	"github.com/rs/xid"

	"github.com/dwbrite/klingt/internal/ring"
	"github.com/dwbrite/klingt/log"
	"github.com/dwbrite/klingt/metric"
	"github.com/dwbrite/klingt/mutable"
)

// DefaultBufferSize is the number of samples per block when no explicit
// size was requested.
const DefaultBufferSize = 64

// primaryGraph is the graph id of the engine's output-rate graph.
// Sub-graphs are identified by their sample rate.
const primaryGraph = 0

type (
	// Engine composes one primary graph at the output sample rate with
	// any number of nested sub-graphs at other rates. Nodes land in the
	// graph matching their native rate; connections across the rate
	// boundary are rewritten through a resampling bridge, so neither
	// side needs rate awareness.
	//
	// A single goroutine owns the engine: it adds nodes, wires them and
	// calls Process repeatedly. Handles may send mutations from any
	// other goroutine at any time.
	Engine struct {
		uid        string
		name       string
		sampleRate int
		bufferSize int
		channels   int

		primary *Graph
		subs    map[int]*subGraph

		sink    NodeID
		hasSink bool
		blocks  uint64

		log    log.Logger
		metric metric.Metric
	}

	// subGraph pairs a nested graph with its bridge into the primary
	// graph. One exists per distinct native sample rate and lives for
	// the rest of the engine's life.
	subGraph struct {
		graph      *Graph
		rate       int
		sink       NodeID // bridge sink inside the nested graph
		resampler  NodeID // resampling source inside the primary graph
		blocksDone uint64
	}

	// Handle is the caller-held reference to an added node. It carries
	// the producer half of the node's parameter channel and enough
	// addressing for the engine to wire connections; it does not
	// reference the graph itself.
	Handle struct {
		node   NodeID
		graph  int
		sender *mutable.Sender
	}

	// Option provides a way to set functional parameters to the engine.
	Option func(*Engine)
)

// Send delivers a mutation to the node behind this handle. It never
// blocks; ErrChannelFull is returned when the node has too many pending
// mutations, and the caller decides whether to retry or drop.
func (h *Handle) Send(m mutable.Mutation) error {
	return h.sender.Send(m)
}

// New creates an engine producing blocks at the provided sample rate.
func New(sampleRate int, options ...Option) *Engine {
	e := &Engine{
		uid:        newUID(),
		sampleRate: sampleRate,
		bufferSize: DefaultBufferSize,
		channels:   2,
		subs:       make(map[int]*subGraph),
		sink:       noNode,
		log:        defaultLogger,
	}
	for _, option := range options {
		option(e)
	}
	e.primary = NewGraph(sampleRate, e.bufferSize)
	e.primary.log = e.log
	e.primary.metric = e.metric
	return e
}

// WithBufferSize sets the block size of the engine and all its graphs.
func WithBufferSize(bufferSize int) Option {
	return func(e *Engine) {
		e.bufferSize = bufferSize
	}
}

// WithChannels sets the number of output channels. Default is stereo.
func WithChannels(channels int) Option {
	return func(e *Engine) {
		e.channels = channels
	}
}

// WithLogger sets logger to the engine. If this option is not provided,
// silent logger is used.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithMetric adds metrics for the engine and all its nodes.
func WithMetric(m metric.Metric) Option {
	return func(e *Engine) {
		e.metric = m
	}
}

// WithName sets name to the engine.
func WithName(n string) Option {
	return func(e *Engine) {
		e.name = n
	}
}

// Add places the node into the engine. Nodes reporting a native sample
// rate different from the engine's are routed into a sub-graph at that
// rate, lazily creating the sub-graph and its bridge on first use.
func (e *Engine) Add(n Node) *Handle {
	if rate := nativeRate(n); rate != 0 && rate != e.sampleRate {
		return e.addToSubGraph(n, rate)
	}
	id, sender := e.primary.Add(n)
	return &Handle{node: id, graph: primaryGraph, sender: sender}
}

func (e *Engine) addToSubGraph(n Node, rate int) *Handle {
	sub, ok := e.subs[rate]
	if !ok {
		sub = e.createSubGraph(rate, maxInt(n.Outputs(), e.channels))
	}
	id, sender := sub.graph.Add(n)
	return &Handle{node: id, graph: rate, sender: sender}
}

// createSubGraph builds the nested graph at the given rate together
// with its bridge: a sink node interleaving into a ring that holds
// roughly 100ms of audio, and a resampling source in the primary graph
// pulling from it.
func (e *Engine) createSubGraph(rate, channels int) *subGraph {
	q := ring.New[float64](bridgeRingSize(rate, channels))

	nested := NewGraph(rate, e.bufferSize)
	nested.log = e.log
	nested.metric = e.metric

	sink := newBridgeSink(q, channels)
	sinkID, _ := nested.Add(sink)
	nested.SetTerminal(sinkID)

	rs := newResampler(q, channels, rate)
	resamplerID, _ := e.primary.Add(rs)
	if e.metric != nil {
		component := componentName(rs)
		sink.overrun = func() { e.metric.Add(component, metric.OverrunCounter, 1) }
		rs.underrun = func() { e.metric.Add(component, metric.UnderrunCounter, 1) }
	}

	sub := &subGraph{
		graph:     nested,
		rate:      rate,
		sink:      sinkID,
		resampler: resamplerID,
	}
	e.subs[rate] = sub
	e.log.Info(fmt.Sprintf("engine %s: created %d Hz sub-graph", e, rate))
	return sub
}

// Connect wires the producer to the consumer. Nodes of the same graph
// are wired directly. A sub-graph producer wired to a primary-graph
// consumer is routed through the bridge: producer to the sub-graph
// sink, resampler to the consumer. Wiring from the primary graph into a
// sub-graph, or across two sub-graphs, is not supported.
func (e *Engine) Connect(from, to *Handle) error {
	switch {
	case from.graph == primaryGraph && to.graph == primaryGraph:
		return e.primary.Connect(from.node, to.node)
	case from.graph == to.graph:
		return e.subs[from.graph].graph.Connect(from.node, to.node)
	case to.graph == primaryGraph:
		sub := e.subs[from.graph]
		if err := sub.graph.Connect(from.node, sub.sink); err != nil {
			return err
		}
		return e.primary.Connect(sub.resampler, to.node)
	default:
		return fmt.Errorf("connect graph %d to graph %d: %w", from.graph, to.graph, ErrUnsupportedConnection)
	}
}

// Sink registers the node the engine's output is materialized at, e.g.
// a device sink. The node is added to the primary graph and becomes its
// terminal.
func (e *Engine) Sink(n Node) *Handle {
	h := e.Add(n)
	e.sink = h.node
	e.hasSink = true
	e.primary.SetTerminal(h.node)
	return h
}

// Output wires the node behind the handle to the registered sink.
func (e *Engine) Output(h *Handle) error {
	if !e.hasSink {
		return ErrNoSink
	}
	return e.Connect(h, &Handle{node: e.sink, graph: primaryGraph})
}

// Process advances the engine by exactly one output block. Every
// sub-graph is first advanced far enough to keep its bridge fed, then
// the primary graph executes to its terminal.
//
// Sub-graphs stay ahead by the fixed lookahead: after the primary graph
// processed N blocks, a sub-graph at rate R has processed at least
// ceil(N*R/S)+lookahead blocks, so the resampler never consumes frames
// that were not produced yet.
func (e *Engine) Process() error {
	if !e.hasSink {
		return ErrNoSink
	}
	mainBlocks := e.blocks + 1
	for _, sub := range e.subs {
		ratio := float64(sub.rate) / float64(e.sampleRate)
		needed := uint64(math.Ceil(float64(mainBlocks)*ratio)) + lookahead
		for sub.blocksDone < needed {
			if err := sub.graph.Process(); err != nil {
				return fmt.Errorf("sub-graph %d Hz: %w", sub.rate, err)
			}
			sub.blocksDone++
		}
	}
	if err := e.primary.Process(); err != nil {
		return err
	}
	e.blocks++
	return nil
}

// SampleRate returns the engine's output sample rate.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// BufferSize returns the engine's block size.
func (e *Engine) BufferSize() int {
	return e.bufferSize
}

// String returns the engine's name if set, uid otherwise.
func (e *Engine) String() string {
	if e.name == "" {
		return e.uid
	}
	return fmt.Sprintf("%v %v", e.name, e.uid)
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
