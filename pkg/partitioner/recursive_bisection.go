package partitioner

import (
	"container/list"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/geo"
	"go.uber.org/zap"
)

type RecursiveBisection struct {
	originalGraph   *datastructure.Graph
	maximumCellSize int
	finalPartition  []int // map from vertex id to partition id
	partitionCount  int
	cutBoundaries   []string // encoded polyline per bisection cut
	logger          *zap.Logger
}

func NewRecursiveBisection(graph *datastructure.Graph, maximumCellSize int, logger *zap.Logger) *RecursiveBisection {
	finalPartition := make([]int, graph.NumberOfVertices())
	for i := range finalPartition {
		finalPartition[i] = pkg.INVALID_PARTITION_ID
	}
	return &RecursiveBisection{
		originalGraph:   graph,
		maximumCellSize: maximumCellSize,
		finalPartition:  finalPartition,
		partitionCount:  0,
		logger:          logger,
	}
}

// [On Balanced Separators in Road Networks, Schild, et al.] https://aschild.github.io/papers/roadseparator.pdf
func (rb *RecursiveBisection) Partition(nodeIds []datastructure.Index) error {
	pg := rb.buildInitialPartitionGraph(nodeIds)
	queue := list.New()
	queue.PushBack(pg)

	bk := NewBKMaxFlow()

	for queue.Len() > 0 {
		curPartitionGraph := queue.Remove(queue.Front()).(*datastructure.PartitionGraph)

		cut, err := bk.computeInertialFlow(curPartitionGraph, pkg.SOURCE_SINK_RATE)
		if err != nil {
			return err
		}

		partOne, partTwo := rb.applyBisection(cut, curPartitionGraph)

		if partOne.NumberOfVertices() == 0 || partTwo.NumberOfVertices() == 0 {
			// a cell too small to get source and sink seeds leaves one side
			// empty; the cell cannot shrink further
			rb.assignFinalPartition(curPartitionGraph)
			continue
		}

		rb.recordCutBoundary(cut, curPartitionGraph)

		tooSmall := func(partitionSize int) bool {
			return partitionSize < rb.maximumCellSize
		}

		if !tooSmall(partOne.NumberOfVertices()) {
			queue.PushBack(partOne)
		} else {
			rb.assignFinalPartition(partOne)
		}
		if !tooSmall(partTwo.NumberOfVertices()) {
			queue.PushBack(partTwo)
		} else {
			rb.assignFinalPartition(partTwo)
		}
	}

	return nil
}

func (rb *RecursiveBisection) applyBisection(cut *MinCut, graph *datastructure.PartitionGraph) (*datastructure.PartitionGraph, *datastructure.PartitionGraph) {
	var (
		partitionOne = datastructure.NewPartitionGraph(graph.NumberOfVertices() - cut.GetNumNodesInPartitionTwo())
		partitionTwo = datastructure.NewPartitionGraph(cut.GetNumNodesInPartitionTwo())
	)

	// remap id
	partOneId := datastructure.Index(0)
	partTwoId := datastructure.Index(0)

	partOneMap := make(map[datastructure.Index]datastructure.Index)
	partTwoMap := make(map[datastructure.Index]datastructure.Index)
	graph.ForEachVertices(func(v datastructure.PartitionVertex) {
		lat, lon := v.GetVertexCoordinate()
		if cut.GetFlag(v.GetID()) {
			newVertex := datastructure.NewPartitionVertex(partOneId, v.GetOriginalVertexID(),
				lat, lon)
			partitionOne.AddVertex(newVertex)
			partOneMap[v.GetID()] = partOneId
			partOneId++
		} else {
			newVertex := datastructure.NewPartitionVertex(partTwoId, v.GetOriginalVertexID(),
				lat, lon)
			partitionTwo.AddVertex(newVertex)
			partTwoMap[v.GetID()] = partTwoId
			partTwoId++
		}
	})

	// exclude cut edges (edges that connect partition one and two)
	graph.ForEdgeList(func(e datastructure.PartitionEdge, eId int) {
		u := e.GetFrom()
		v := e.GetTo()

		if cut.GetFlag(u) && cut.GetFlag(v) {
			partitionOne.AddEdge(partOneMap[u], partOneMap[v])
		} else if !cut.GetFlag(u) && !cut.GetFlag(v) {
			partitionTwo.AddEdge(partTwoMap[u], partTwoMap[v])
		}
	})

	return partitionOne, partitionTwo
}

func (rb *RecursiveBisection) assignFinalPartition(graph *datastructure.PartitionGraph) {
	rb.logger.Sugar().Infof("created partition %d with %d vertices", rb.partitionCount, graph.NumberOfVertices())
	for i := 0; i < graph.NumberOfVertices(); i++ {
		v := graph.GetVertex(datastructure.Index(i))
		originalId := v.GetOriginalVertexID()
		rb.finalPartition[originalId] = rb.partitionCount
	}
	rb.partitionCount++
}

func (rb *RecursiveBisection) recordCutBoundary(cut *MinCut, graph *datastructure.PartitionGraph) {
	if cut.GetNumberOfMinCutEdges() == 0 {
		return
	}
	mids := make([]datastructure.Coordinate, 0, cut.GetNumberOfMinCutEdges())
	for _, e := range cut.GetCutEdges() {
		u := graph.GetVertex(e.GetFrom())
		w := graph.GetVertex(e.GetTo())
		uLat, uLon := u.GetVertexCoordinate()
		wLat, wLon := w.GetVertexCoordinate()
		mids = append(mids, datastructure.NewCoordinate((uLat+wLat)/2, (uLon+wLon)/2))
	}
	mids = geo.RamerDouglasPeucker(mids)
	rb.cutBoundaries = append(rb.cutBoundaries, geo.PolylineFromCoords(mids))
}

func (rb *RecursiveBisection) buildInitialPartitionGraph(nodeIds []datastructure.Index) *datastructure.PartitionGraph {
	pg := datastructure.NewPartitionGraph(len(nodeIds))

	inSubset := make(map[datastructure.Index]datastructure.Index, len(nodeIds))
	for newId, vId := range nodeIds {
		lat, lon := rb.originalGraph.GetVertexCoordinates(vId)
		pg.AddVertex(datastructure.NewPartitionVertex(datastructure.Index(newId), vId, lat, lon))
		inSubset[vId] = datastructure.Index(newId)
	}

	for _, vId := range nodeIds {
		u := inSubset[vId]
		rb.originalGraph.ForOutEdgesOfVertex(vId, func(e datastructure.OutEdge) {
			w, ok := inSubset[e.GetHead()]
			if !ok {
				return
			}
			if u < w {
				pg.AddEdge(u, w)
			}
		})
	}
	return pg
}

func (rb *RecursiveBisection) GetFinalPartition() []int {
	return rb.finalPartition
}

func (rb *RecursiveBisection) GetCutBoundaries() []string {
	return rb.cutBoundaries
}
