package maxflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/maxflow"
)

type MaxflowSuite struct {
	suite.Suite
}

// TestSingleEdge: 0 -(4)-> 1 with source cap 5 at 0 and sink cap 3 at 1.
// The sink terminal is the bottleneck.
func (s *MaxflowSuite) TestSingleEdge() {
	g := maxflow.NewGraph[int32](2, 1, false)
	g.AddNode(2)
	g.AddTweights(0, 5, 0)
	g.AddTweights(1, 0, 3)
	g.AddEdge(0, 1, 4, 0)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(3), flow)
	require.Equal(s.T(), flow, g.Flow())

	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(0, maxflow.SINK))
	// node 1 loses its sink capacity entirely and is adopted by the source
	// tree through the leftover residual of the edge
	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(1, maxflow.SINK))
}

// TestDisconnectedNode: a node with no terminal and no edges keeps the
// caller-supplied default segment.
func (s *MaxflowSuite) TestDisconnectedNode() {
	g := maxflow.NewGraph[int32](3, 0, false)
	g.AddNode(3)
	g.AddTweights(0, 5, 0)
	g.AddTweights(1, 0, 5)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(0), flow)

	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(0, maxflow.SINK))
	require.Equal(s.T(), maxflow.SINK, g.WhatSegment(1, maxflow.SOURCE))
	require.Equal(s.T(), maxflow.SINK, g.WhatSegment(2, maxflow.SINK))
	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(2, maxflow.SOURCE))
}

// TestParallelEdges: three parallel edges 0 -> 1 of capacities 1, 2, 3.
func (s *MaxflowSuite) TestParallelEdges() {
	g := maxflow.NewGraph[int32](2, 3, false)
	g.AddNode(2)
	g.AddTweights(0, 10, 0)
	g.AddTweights(1, 0, 10)
	g.AddEdge(0, 1, 1, 0)
	g.AddEdge(0, 1, 2, 0)
	g.AddEdge(0, 1, 3, 0)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(6), flow)

	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(0, maxflow.SINK))
	require.Equal(s.T(), maxflow.SINK, g.WhatSegment(1, maxflow.SOURCE))
}

func buildDiamond() *maxflow.Graph[int32] {
	g := maxflow.NewGraph[int32](4, 5, false)
	g.AddNode(4)
	g.AddTweights(0, 10, 0)
	g.AddTweights(3, 0, 10)
	g.AddEdge(0, 1, 7, 0)
	g.AddEdge(0, 2, 5, 0)
	g.AddEdge(1, 3, 3, 0)
	g.AddEdge(2, 3, 6, 0)
	g.AddEdge(1, 2, 2, 0)
	return g
}

func (s *MaxflowSuite) TestDiamond() {
	g := buildDiamond()
	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(9), flow)
	require.NoError(s.T(), g.CheckConsistency())
}

// TestReuseAfterCapacityDecrease: shrink the single edge from capacity 4 to 1
// after the first solve. The excess flow is pushed back onto the terminals by
// the capacity update and the repaired solve must agree with a from-scratch
// solve of the smaller edge.
func (s *MaxflowSuite) TestReuseAfterCapacityDecrease() {
	g := maxflow.NewGraph[int32](2, 1, false)
	g.AddNode(2)
	g.AddTweights(0, 5, 0)
	g.AddTweights(1, 0, 3)
	e := g.AddEdge(0, 1, 4, 0)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(3), flow)

	g.AddEdgeCap(e, -3)
	g.MarkNode(0)
	g.MarkNode(1)

	flow, err = g.Maxflow(true, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(1), flow)

	fresh := maxflow.NewGraph[int32](2, 1, false)
	fresh.AddNode(2)
	fresh.AddTweights(0, 5, 0)
	fresh.AddTweights(1, 0, 3)
	fresh.AddEdge(0, 1, 1, 0)
	freshFlow, err := fresh.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), freshFlow, flow)

	require.Equal(s.T(), g.WhatSegment(0, maxflow.SINK), fresh.WhatSegment(0, maxflow.SINK))
	require.Equal(s.T(), g.WhatSegment(1, maxflow.SINK), fresh.WhatSegment(1, maxflow.SINK))
}

// TestReuseChangedList: node 1 flips from the source side to the sink side
// when the edge shrinks, so it must show up in the changed list.
func (s *MaxflowSuite) TestReuseChangedList() {
	g := maxflow.NewGraph[int32](2, 1, false)
	g.AddNode(2)
	g.AddTweights(0, 5, 0)
	g.AddTweights(1, 0, 3)
	e := g.AddEdge(0, 1, 4, 0)

	_, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(1, maxflow.SINK))

	g.AddEdgeCap(e, -3)
	g.MarkNode(0)
	g.MarkNode(1)

	changed := maxflow.NewChangedList()
	flow, err := g.Maxflow(true, changed)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(1), flow)
	require.Equal(s.T(), maxflow.SINK, g.WhatSegment(1, maxflow.SOURCE))

	require.Contains(s.T(), changed.GetIds(), maxflow.NodeID(1))
}

// TestReuseAfterCapacityIncrease: widening an edge opens a new augmenting
// path through the repaired trees.
func (s *MaxflowSuite) TestReuseAfterCapacityIncrease() {
	g := buildDiamond()
	_, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)

	// widen 1 -> 3 from 3 to 5. arc ids follow insertion order, two per edge.
	e13 := maxflow.ArcID(4)
	u, v := g.ArcEndpoints(e13)
	require.Equal(s.T(), maxflow.NodeID(1), u)
	require.Equal(s.T(), maxflow.NodeID(3), v)

	g.AddEdgeCap(e13, 2)
	g.MarkNode(1)
	g.MarkNode(3)

	// the source terminal at node 0 caps the flow at 10
	flow, err := g.Maxflow(true, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(10), flow)

	fresh := maxflow.NewGraph[int32](4, 5, false)
	fresh.AddNode(4)
	fresh.AddTweights(0, 10, 0)
	fresh.AddTweights(3, 0, 10)
	fresh.AddEdge(0, 1, 7, 0)
	fresh.AddEdge(0, 2, 5, 0)
	fresh.AddEdge(1, 3, 5, 0)
	fresh.AddEdge(2, 3, 6, 0)
	fresh.AddEdge(1, 2, 2, 0)
	freshFlow, err := fresh.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), freshFlow, flow)
}

// TestReuseIdempotent: a repaired solve with no capacity edits returns the
// same flow and leaves every residual untouched.
func (s *MaxflowSuite) TestReuseIdempotent() {
	g := buildDiamond()
	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)

	before := make([]int32, g.NumberOfArcs())
	for a := 0; a < g.NumberOfArcs(); a++ {
		before[a] = g.GetRCap(maxflow.ArcID(a))
	}

	again, err := g.Maxflow(true, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), flow, again)

	for a := 0; a < g.NumberOfArcs(); a++ {
		require.Equal(s.T(), before[a], g.GetRCap(maxflow.ArcID(a)))
	}
}

func (s *MaxflowSuite) TestReuseBeforeFirstSolve() {
	g := maxflow.NewGraph[int32](2, 1, false)
	g.AddNode(2)

	_, err := g.Maxflow(true, nil)
	require.ErrorIs(s.T(), err, maxflow.ErrReuseBeforeFirstSolve)
}

func (s *MaxflowSuite) TestChangedListWithoutReuse() {
	g := maxflow.NewGraph[int32](2, 1, false)
	g.AddNode(2)

	_, err := g.Maxflow(false, maxflow.NewChangedList())
	require.ErrorIs(s.T(), err, maxflow.ErrChangedListWithoutReuse)
}

func (s *MaxflowSuite) TestFloatCapacities() {
	g := maxflow.NewGraph[float64](3, 2, false)
	g.AddNode(3)
	g.AddTweights(0, 2.5, 0)
	g.AddTweights(2, 0, 4.0)
	g.AddEdge(0, 1, 1.25, 0)
	g.AddEdge(1, 2, 3.0, 0)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.InDelta(s.T(), 1.25, flow, 1e-12)
}

// TestTweightsFold: overlapping source and sink capacity on one node cancels
// into flow immediately.
func (s *MaxflowSuite) TestTweightsFold() {
	g := maxflow.NewGraph[int32](1, 0, false)
	g.AddNode(1)
	g.AddTweights(0, 5, 3)

	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(3), flow)
	require.Equal(s.T(), maxflow.SOURCE, g.WhatSegment(0, maxflow.SINK))
}

func (s *MaxflowSuite) TestReset() {
	g := buildDiamond()
	flow, err := g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(9), flow)

	g.Reset()
	require.Equal(s.T(), 0, g.NumberOfNodes())
	require.Equal(s.T(), 0, g.NumberOfArcs())

	g.AddNode(2)
	g.AddTweights(0, 2, 0)
	g.AddTweights(1, 0, 2)
	g.AddEdge(0, 1, 1, 0)
	flow, err = g.Maxflow(false, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(1), flow)
}

func TestMaxflowSuite(t *testing.T) {
	suite.Run(t, new(MaxflowSuite))
}
