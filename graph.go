package klingt

import (
	"fmt"
	"reflect"

	"github.com/dwbrite/klingt/log"
	"github.com/dwbrite/klingt/metric"
	"github.com/dwbrite/klingt/mutable"
	"github.com/dwbrite/klingt/signal"
)

// NodeID identifies a node's slot within one graph. Ids are dense,
// stable for the node's lifetime and never reused.
type NodeID int

const noNode = NodeID(-1)

// Graph owns a set of nodes and directed edges between them. An edge
// means the producer's output feeds the consumer's input. The edge set
// stays acyclic: Connect rejects edges that would close a cycle.
//
// A graph is not safe for concurrent use. Topology may only change
// between Process calls, and Process must always run on the same
// goroutine.
type Graph struct {
	uid        string
	sampleRate int
	bufferSize int
	nodes      []*slot
	terminal   NodeID

	log    log.Logger
	metric metric.Metric

	// traversal state, reused across Process calls
	stack   []traversal
	order   []NodeID
	visited []bool
}

// slot holds a node together with its routing state. The out buffers
// are shared read-only with every consumer edge; the in buffers
// accumulate the sum of all producers per input channel.
type slot struct {
	node    Node
	params  *mutable.Receiver
	ins     []NodeID
	outs    []NodeID
	in      signal.Float64
	out     signal.Float64
	measure metric.MeasureFunc
}

type traversal struct {
	id       NodeID
	expanded bool
}

// NewGraph returns an empty graph processing blocks of bufferSize
// samples at the provided sample rate.
func NewGraph(sampleRate, bufferSize int) *Graph {
	return &Graph{
		uid:        newUID(),
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		terminal:   noNode,
		log:        defaultLogger,
	}
}

// Add appends the node to the graph and pairs it with a new parameter
// channel. The returned sender is the only way to reach the node's
// state from other goroutines.
func (g *Graph) Add(n Node) (NodeID, *mutable.Sender) {
	id := NodeID(len(g.nodes))
	send, recv := mutable.NewChannel(mutable.DefaultCapacity)
	s := &slot{
		node:   n,
		params: recv,
	}
	if n.Inputs() > 0 {
		s.in = signal.EmptyFloat64(n.Inputs(), g.bufferSize)
	}
	if n.Outputs() > 0 {
		s.out = signal.EmptyFloat64(n.Outputs(), g.bufferSize)
	}
	if g.metric != nil {
		s.measure = g.metric.Meter(componentName(n), g.sampleRate)
	}
	g.nodes = append(g.nodes, s)
	g.visited = append(g.visited, false)
	g.log.Debug(fmt.Sprintf("graph %s: added node %d %s", g.uid, id, componentName(n)))
	return id, send
}

// Connect adds an edge from the producer's output to the consumer's
// input. Several producers may feed the same consumer, their signals
// are summed sample-wise; one producer may feed several consumers, its
// output buffer is shared, not copied. The edge is rejected with
// ErrCycle when it would make the graph cyclic.
func (g *Graph) Connect(from, to NodeID) error {
	if !g.contains(from) || !g.contains(to) {
		return fmt.Errorf("connect %d to %d: %w", from, to, ErrUnknownNode)
	}
	if from == to || g.reaches(to, from) {
		return fmt.Errorf("connect %d to %d: %w", from, to, ErrCycle)
	}
	g.nodes[to].ins = append(g.nodes[to].ins, from)
	g.nodes[from].outs = append(g.nodes[from].outs, to)
	return nil
}

// SetTerminal designates the node the graph executes to.
func (g *Graph) SetTerminal(id NodeID) error {
	if !g.contains(id) {
		return fmt.Errorf("set terminal %d: %w", id, ErrUnknownNode)
	}
	g.terminal = id
	return nil
}

// Process executes the graph up to its terminal node.
func (g *Graph) Process() error {
	if g.terminal == noNode {
		return ErrNoTerminal
	}
	return g.ProcessTo(g.terminal)
}

// ProcessTo executes one block up to the provided node. Every node the
// terminal depends on runs exactly once, after all of its producers.
// Each node first applies its pending mutations, then receives the
// summed inputs and renders its output buffers.
func (g *Graph) ProcessTo(id NodeID) error {
	if !g.contains(id) {
		return fmt.Errorf("process to %d: %w", id, ErrUnknownNode)
	}

	g.order = g.order[:0]
	g.stack = append(g.stack[:0], traversal{id: id})
	for len(g.stack) > 0 {
		t := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		if t.expanded {
			g.order = append(g.order, t.id)
			continue
		}
		if g.visited[t.id] {
			continue
		}
		g.visited[t.id] = true
		g.stack = append(g.stack, traversal{id: t.id, expanded: true})
		for _, p := range g.nodes[t.id].ins {
			if !g.visited[p] {
				g.stack = append(g.stack, traversal{id: p})
			}
		}
	}

	ctx := Context{SampleRate: g.sampleRate, BufferSize: g.bufferSize}
	for _, id := range g.order {
		s := g.nodes[id]
		s.params.Drain()
		if len(s.in) > 0 {
			s.in.Clear()
			for _, p := range s.ins {
				s.in.Sum(g.nodes[p].out)
			}
		}
		s.node.Process(ctx, s.in, s.out)
		if s.measure != nil {
			s.measure(int64(g.bufferSize))
		}
	}

	for _, id := range g.order {
		g.visited[id] = false
	}
	return nil
}

// Output returns the node's most recent output block. The buffer is
// owned by the graph and must be treated as read-only.
func (g *Graph) Output(id NodeID) (signal.Float64, error) {
	if !g.contains(id) {
		return nil, fmt.Errorf("output of %d: %w", id, ErrUnknownNode)
	}
	return g.nodes[id].out, nil
}

// SampleRate returns the rate the graph runs at.
func (g *Graph) SampleRate() int {
	return g.sampleRate
}

// BufferSize returns the block size of the graph.
func (g *Graph) BufferSize() int {
	return g.bufferSize
}

func (g *Graph) contains(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// reaches reports whether to is reachable from from along the edges.
func (g *Graph) reaches(from, to NodeID) bool {
	if from == to {
		return true
	}
	g.order = g.order[:0]
	g.stack = append(g.stack[:0], traversal{id: from})
	found := false
	for len(g.stack) > 0 && !found {
		t := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		if g.visited[t.id] {
			continue
		}
		g.visited[t.id] = true
		g.order = append(g.order, t.id)
		for _, next := range g.nodes[t.id].outs {
			if next == to {
				found = true
				break
			}
			g.stack = append(g.stack, traversal{id: next})
		}
	}
	for _, id := range g.order {
		g.visited[id] = false
	}
	g.order = g.order[:0]
	return found
}

func componentName(n Node) string {
	rv := reflect.ValueOf(n)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}
