/*
Package klingt allows to build and execute real-time audio graphs.

Concept

An engine owns a directed acyclic graph of nodes. Sources generate
signal, effects transform it and sinks consume it; edges route the
output of one node into the input of another. Once per block the engine
executes the graph in dependency order up to its sink: every reachable
node runs exactly once, after all of its producers. When several
producers feed the same consumer their signals are summed sample-wise;
when one producer feeds several consumers its output buffer is shared.

Parameters

Node state is never touched across goroutines. Nodes expose methods
that build mutations - closures deferring the state change - and every
added node is paired with a bounded wait-free channel carrying them.
Any goroutine may send mutations through the node's Handle; the graph
applies them right before the node processes its next block:

	osc := sine.New(440)
	handle := engine.Add(osc)
	engine.Output(handle)
	...
	handle.Send(osc.SetFrequency(880))

Sample rates

Every graph runs at a fixed sample rate. A node authored for another
rate, such as a sample player, is placed into a nested graph at its
native rate. The nested graph terminates in a sink that feeds a ring
buffer and the primary graph gains a resampling source that drains it,
so both sides stay rate-agnostic. The engine paces nested graphs a few
blocks ahead of the primary one to keep the ring from running dry.
*/
package klingt
