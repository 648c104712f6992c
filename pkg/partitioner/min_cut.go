package partitioner

import "github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"

type MinCut struct {
	flags                  []bool // true if the vertex is reachable from source in residual graph, or partition one, else partition two
	numNodesInPartitionTwo int    // number of nodes in partition two
	numberOfMinCutEdges    int    // number of edges in the min cut
	cutEdges               []datastructure.PartitionEdge
}

func NewMinCut(numberOfVertices int) *MinCut {
	return &MinCut{
		flags: make([]bool, numberOfVertices),
	}
}

func (mc *MinCut) SetFlag(u datastructure.Index, flag bool) {
	mc.flags[u] = flag
}

func (mc *MinCut) GetFlag(u datastructure.Index) bool {
	return mc.flags[u]
}

func (mc *MinCut) GetNumNodesInPartitionTwo() int {
	return mc.numNodesInPartitionTwo
}

func (mc *MinCut) incrementNumNodesInPartitionTwo() {
	mc.numNodesInPartitionTwo++
}

func (mc *MinCut) GetNumberOfMinCutEdges() int {
	return mc.numberOfMinCutEdges
}

func (mc *MinCut) setNumberofMinCutEdges(n int) {
	mc.numberOfMinCutEdges = n
}

func (mc *MinCut) addCutEdge(e datastructure.PartitionEdge) {
	mc.cutEdges = append(mc.cutEdges, e)
}

func (mc *MinCut) GetCutEdges() []datastructure.PartitionEdge {
	return mc.cutEdges
}
