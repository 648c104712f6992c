package partitioner

import (
	"math"
	"runtime"
	"sort"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/concurrent"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/maxflow"
)

// BKMaxFlow computes minimum cuts of partition graphs with the
// Boykov-Kolmogorov solver. Source and sink seeds are attached through
// terminal capacities instead of artificial super source/sink vertices.
type BKMaxFlow struct {
	debug bool
}

func NewBKMaxFlow() *BKMaxFlow {
	return &BKMaxFlow{}
}

func (bk *BKMaxFlow) ComputeMinCut(graph *datastructure.PartitionGraph,
	sources, sinks []datastructure.Index) (*MinCut, error) {
	n := graph.NumberOfVertices()
	fg := maxflow.NewGraph[int32](n, graph.NumberOfEdges(), bk.debug)
	fg.AddNode(n)

	graph.ForEdgeList(func(e datastructure.PartitionEdge, eId int) {
		fg.AddEdge(maxflow.NodeID(e.GetFrom()), maxflow.NodeID(e.GetTo()), 1, 1)
	})

	for _, s := range sources {
		fg.AddTweights(maxflow.NodeID(s), pkg.INF_CAPACITY, 0)
	}
	for _, t := range sinks {
		fg.AddTweights(maxflow.NodeID(t), 0, pkg.INF_CAPACITY)
	}

	if _, err := fg.Maxflow(false, nil); err != nil {
		return nil, err
	}

	cut := NewMinCut(n)
	for u := 0; u < n; u++ {
		if fg.WhatSegment(maxflow.NodeID(u), maxflow.SINK) == maxflow.SOURCE {
			cut.SetFlag(datastructure.Index(u), true)
		} else {
			cut.incrementNumNodesInPartitionTwo()
		}
	}

	numCutEdges := 0
	graph.ForEdgeList(func(e datastructure.PartitionEdge, eId int) {
		if cut.GetFlag(e.GetFrom()) != cut.GetFlag(e.GetTo()) {
			numCutEdges++
			cut.addCutEdge(e)
		}
	})
	cut.setNumberofMinCutEdges(numCutEdges)

	return cut, nil
}

type flowTrial struct {
	trialId int
	sources []datastructure.Index
	sinks   []datastructure.Index
}

type trialResult struct {
	trialId int
	cut     *MinCut
	err     error
}

// computeInertialFlow tries INERTIAL_FLOW_ITERATION projection axes and keeps
// the cut with the fewest edges, ties broken by balance. Trials solve
// independent flow graphs, so they run concurrently on the worker pool.
func (bk *BKMaxFlow) computeInertialFlow(graph *datastructure.PartitionGraph,
	sourceSinkRate float64) (*MinCut, error) {
	trials := make([]flowTrial, 0, pkg.INERTIAL_FLOW_ITERATION)
	for i := 0; i < pkg.INERTIAL_FLOW_ITERATION; i++ {
		slope := -1 + float64(i)*(2.0/pkg.INERTIAL_FLOW_ITERATION)
		sources, sinks := bk.sortVerticesByLineProjection(graph, slope, sourceSinkRate)
		trials = append(trials, flowTrial{trialId: i, sources: sources, sinks: sinks})
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(trials) {
		numWorkers = len(trials)
	}

	wp := concurrent.NewWorkerPool[flowTrial, trialResult](numWorkers, len(trials))
	for _, t := range trials {
		wp.AddJob(t)
	}
	wp.Close()
	wp.Start(func(job flowTrial) trialResult {
		cut, err := bk.ComputeMinCut(graph, job.sources, job.sinks)
		return trialResult{trialId: job.trialId, cut: cut, err: err}
	})
	wp.Wait()

	cuts := make([]*MinCut, len(trials))
	for res := range wp.CollectResults() {
		if res.err != nil {
			return nil, res.err
		}
		cuts[res.trialId] = res.cut
	}

	balanceDelta := func(numPartTwoNodes int) int {
		diff := graph.NumberOfVertices()/2 - numPartTwoNodes
		if diff < 0 {
			diff = -diff
		}
		return diff
	}

	// scan in trial order so the chosen cut is independent of worker scheduling
	var best *MinCut
	bestNumberOfMinCutEdges := math.MaxInt
	for _, cut := range cuts {
		if cut.GetNumberOfMinCutEdges() < bestNumberOfMinCutEdges ||
			(cut.GetNumberOfMinCutEdges() == bestNumberOfMinCutEdges &&
				balanceDelta(cut.GetNumNodesInPartitionTwo()) < balanceDelta(best.GetNumNodesInPartitionTwo())) {
			best = cut
			bestNumberOfMinCutEdges = cut.GetNumberOfMinCutEdges()
		}
	}

	return best, nil
}

func (bk *BKMaxFlow) sortVerticesByLineProjection(graph *datastructure.PartitionGraph,
	slope, ratio float64) ([]datastructure.Index, []datastructure.Index) {
	vertices := graph.GetVertices()

	type item struct {
		idx        int
		projection float64
	}
	n := len(vertices)

	items := make([]item, n)
	for i := range vertices {
		lat, lon := vertices[i].GetVertexCoordinate()
		proj := slope*lon + (1.0-math.Abs(slope))*lat
		items[i] = item{idx: i, projection: proj}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].projection < items[j].projection
	})

	endpointsLength := int(float64(n) * ratio)
	if endpointsLength == 0 && n > 1 {
		endpointsLength = 1
	}
	sourceNodes := make([]datastructure.Index, 0, endpointsLength)
	sinkNodes := make([]datastructure.Index, 0, endpointsLength)

	for i := 0; i < endpointsLength; i++ {
		sourceNodes = append(sourceNodes, vertices[items[i].idx].GetID())
		sinkNodes = append(sinkNodes, vertices[items[n-1-i].idx].GetID())
	}

	return sourceNodes, sinkNodes
}
