package maxflow

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// maximum flow via the Boykov-Kolmogorov augmenting-path algorithm with two
// search trees and tree reuse between related solves
// (see An Experimental Comparison of Min-Cut/Max-Flow Algorithms for Energy
// Minimization in Vision, Boykov & Kolmogorov, PAMI 2004).
type Capacity interface {
	constraints.Signed | constraints.Float
}

type NodeID int32

type ArcID int32

// Segment identifies the side of the minimum cut a node belongs to.
type Segment uint8

const (
	SOURCE Segment = iota
	SINK
)

const (
	nilNode NodeID = -1

	nilArc ArcID = -1
	// parent is a terminal arc (node is a tree root).
	terminalArc ArcID = -2
	// node has no valid parent; waiting for adoption.
	orphanArc ArcID = -3
)

// ErrReuseBeforeFirstSolve is returned when tree reuse is requested on the
// very first solve of a graph.
var ErrReuseBeforeFirstSolve = fmt.Errorf("maxflow: %w", errReuseBeforeFirstSolve)
var errReuseBeforeFirstSolve = fmt.Errorf("tree reuse requested before first solve")

// ErrChangedListWithoutReuse is returned when a changed list is supplied
// without tree reuse enabled.
var ErrChangedListWithoutReuse = fmt.Errorf("maxflow: %w", errChangedListWithoutReuse)
var errChangedListWithoutReuse = fmt.Errorf("changed list supplied without tree reuse")

type node[T Capacity] struct {
	first  ArcID // head of the outgoing arc list
	parent ArcID // arc to parent in the search tree, or terminalArc/orphanArc/nilArc
	next   NodeID
	ts     int32 // timestamp at which dist was computed
	dist   int32 // distance to the tree root

	isSink          bool
	isMarked        bool
	isInChangedList bool

	// residual capacity of the terminal arc: > 0 means source->node with
	// capacity trCap, < 0 means node->sink with capacity -trCap.
	trCap T
}

type arc[T Capacity] struct {
	head NodeID
	next ArcID
	rCap T
}

// sister returns the reverse arc. Arcs are stored in pairs 2k, 2k+1.
func sister(a ArcID) ArcID {
	return a ^ 1
}

// Graph is a flow network with implicit terminals. Not safe for concurrent
// use; distinct Graph instances may be solved in parallel.
type Graph[T Capacity] struct {
	nodes []node[T]
	arcs  []arc[T]

	// queueFirst[0]/queueLast[0] hold the active queue being processed,
	// queueFirst[1]/queueLast[1] the queue being built. A node whose next
	// points to itself is last in its queue.
	queueFirst [2]NodeID
	queueLast  [2]NodeID

	orphanFirst *orphanCell
	orphanLast  *orphanCell
	pool        *orphanPool

	changed *ChangedList

	time             int32
	flow             T
	maxflowIteration int

	debug bool
}

// NewGraph preallocates node and arc storage. nodeNumMax and edgeNumMax are
// hints; the graph grows past them if needed.
func NewGraph[T Capacity](nodeNumMax, edgeNumMax int, debug bool) *Graph[T] {
	if nodeNumMax < 16 {
		nodeNumMax = 16
	}
	if edgeNumMax < 16 {
		edgeNumMax = 16
	}
	g := &Graph[T]{
		nodes: make([]node[T], 0, nodeNumMax),
		arcs:  make([]arc[T], 0, 2*edgeNumMax),
		debug: debug,
	}
	g.queueFirst[0], g.queueFirst[1] = nilNode, nilNode
	g.queueLast[0], g.queueLast[1] = nilNode, nilNode
	return g
}

// AddNode adds num nodes and returns the id of the first one.
func (g *Graph[T]) AddNode(num int) NodeID {
	id := NodeID(len(g.nodes))
	for k := 0; k < num; k++ {
		g.nodes = append(g.nodes, node[T]{first: nilArc, parent: nilArc, next: nilNode})
	}
	return id
}

// AddTweights adds terminal capacities source->i (capSource) and i->sink
// (capSink). Capacities accumulate across calls; the overlapping amount is
// routed immediately as flow.
func (g *Graph[T]) AddTweights(i NodeID, capSource, capSink T) {
	delta := g.nodes[i].trCap
	if delta > 0 {
		capSource += delta
	} else {
		capSink -= delta
	}
	if capSource < capSink {
		g.flow += capSource
	} else {
		g.flow += capSink
	}
	g.nodes[i].trCap = capSource - capSink
}

// AddEdge adds an arc pair i->j (capFwd) and j->i (capRev) and returns the id
// of the forward arc. The reverse arc is sister(id).
func (g *Graph[T]) AddEdge(i, j NodeID, capFwd, capRev T) ArcID {
	a := ArcID(len(g.arcs))
	g.arcs = append(g.arcs, arc[T]{head: j, next: g.nodes[i].first, rCap: capFwd})
	g.arcs = append(g.arcs, arc[T]{head: i, next: g.nodes[j].first, rCap: capRev})
	g.nodes[i].first = a
	g.nodes[j].first = a + 1
	return a
}

// AddEdgeCap adds delta to the residual capacity of arc a. A negative delta
// that would drive the residual below zero pushes the excess back through the
// arc endpoints so that the graph stays a valid reparameterization
// (see Dynamic Graph Cuts, Kohli & Torr, ICCV 2005).
func (g *Graph[T]) AddEdgeCap(a ArcID, delta T) {
	g.arcs[a].rCap += delta
	if g.arcs[a].rCap < 0 {
		excess := -g.arcs[a].rCap
		g.arcs[a].rCap = 0
		s := sister(a)
		g.arcs[s].rCap -= excess
		g.flow -= excess
		g.AddTweights(g.arcs[s].head, excess, 0)
		g.AddTweights(g.arcs[a].head, 0, excess)
	}
}

// GetTrCap returns the residual terminal capacity of node i.
func (g *Graph[T]) GetTrCap(i NodeID) T {
	return g.nodes[i].trCap
}

// SetTrCap overwrites the residual terminal capacity of node i. Before a
// reuse solve the caller must MarkNode(i), otherwise the result is undefined.
func (g *Graph[T]) SetTrCap(i NodeID, trCap T) {
	g.nodes[i].trCap = trCap
}

// GetRCap returns the residual capacity of arc a.
func (g *Graph[T]) GetRCap(a ArcID) T {
	return g.arcs[a].rCap
}

// SetRCap overwrites the residual capacity of arc a. Before a reuse solve the
// caller must mark both endpoints, otherwise the result is undefined.
func (g *Graph[T]) SetRCap(a ArcID, rCap T) {
	g.arcs[a].rCap = rCap
}

// ArcEndpoints returns the tail and head of arc a.
func (g *Graph[T]) ArcEndpoints(a ArcID) (NodeID, NodeID) {
	return g.arcs[sister(a)].head, g.arcs[a].head
}

// MarkNode schedules node i for re-initialization on the next reuse solve.
// Must be called for every node whose terminal or incident arc capacities
// changed since the previous solve.
func (g *Graph[T]) MarkNode(i NodeID) {
	n := &g.nodes[i]
	if n.next == nilNode {
		if g.queueLast[1] != nilNode {
			g.nodes[g.queueLast[1]].next = i
		} else {
			g.queueFirst[1] = i
		}
		g.queueLast[1] = i
		n.next = i
	}
	n.isMarked = true
}

// WhatSegment returns the side of the minimum cut node i belongs to after a
// solve. Nodes reachable from neither terminal in the residual graph belong
// to either side; defaultSegm is returned for them.
func (g *Graph[T]) WhatSegment(i NodeID, defaultSegm Segment) Segment {
	if g.nodes[i].parent != nilArc {
		if g.nodes[i].isSink {
			return SINK
		}
		return SOURCE
	}
	return defaultSegm
}

// NumberOfNodes returns the node count.
func (g *Graph[T]) NumberOfNodes() int {
	return len(g.nodes)
}

// NumberOfArcs returns the arc count (two per added edge).
func (g *Graph[T]) NumberOfArcs() int {
	return len(g.arcs)
}

// Flow returns the total flow accumulated so far.
func (g *Graph[T]) Flow() T {
	return g.flow
}

// Reset empties the graph while keeping the allocated storage, as if it was
// freshly constructed.
func (g *Graph[T]) Reset() {
	g.nodes = g.nodes[:0]
	g.arcs = g.arcs[:0]
	g.queueFirst[0], g.queueFirst[1] = nilNode, nilNode
	g.queueLast[0], g.queueLast[1] = nilNode, nilNode
	g.orphanFirst, g.orphanLast = nil, nil
	g.pool = nil
	g.changed = nil
	g.time = 0
	g.flow = 0
	g.maxflowIteration = 0
}
