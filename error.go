package klingt

import (
	"errors"
)

// ErrUnknownNode is returned when a node id does not belong to the graph.
var ErrUnknownNode = errors.New("unknown node")

// ErrCycle is returned when an edge would make the graph cyclic.
var ErrCycle = errors.New("connection creates a cycle")

// ErrNoTerminal is returned by Process when no terminal node is set.
var ErrNoTerminal = errors.New("no terminal node")

// ErrNoSink is returned by Output when no sink node is registered.
var ErrNoSink = errors.New("no sink configured")

// ErrUnsupportedConnection is returned when nodes cannot be wired:
// from the primary graph into a sub-graph, or across two sub-graphs.
var ErrUnsupportedConnection = errors.New("unsupported connection between graphs")
