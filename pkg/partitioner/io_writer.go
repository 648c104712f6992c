package partitioner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"
	"golang.org/x/exp/rand"
)

// savePartitionsToFile dumps a 30% random sample of the nodes of every cell so
// the partitioning can be eyeballed on a map.
func (mp *MultilevelPartitioner) savePartitionsToFile(partitions [][]datastructure.Index, graph *datastructure.Graph,
	name string, level int) error {
	type partitionType struct {
		Nodes []datastructure.Coordinate `json:"nodes"`
	}
	rand.Seed(uint64(time.Now().UnixNano()))

	parts := []partitionType{}
	for _, partition := range partitions {
		rand.Shuffle(len(partition), func(i, j int) { partition[i], partition[j] = partition[j], partition[i] })
		partitionNodes := make([]datastructure.Coordinate, 0)

		for i := 0; i < int(float64(len(partition))*0.3); i++ {
			node := graph.GetVertex(partition[i])
			partitionNodes = append(partitionNodes, datastructure.NewCoordinate(
				node.GetLat(), node.GetLon(),
			))
		}
		parts = append(parts, partitionType{
			Nodes: partitionNodes,
		})
	}
	buf, err := json.MarshalIndent(parts, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fmt.Sprintf("nodePerPartitions_%s_level_%v.json", name, level), buf, 0644)
}

// writeMLPToMLPFile packs the per-level cell ids of every vertex into one
// uint64 cell number. rightmost bits contain the level 0 cellId, leftmost
// bits the level l-1 cellId.
func (mp *MultilevelPartitioner) writeMLPToMLPFile(filename string) error {
	numCells := make([]int, mp.l)
	for i := 0; i < mp.l; i++ {
		numCells[i] = len(mp.overlayNodes[i])
	}

	pvOffset := make([]int, mp.l+1)
	for i := 0; i < mp.l; i++ {
		// ceil(log2(numCells[i])) = number of bits needed to represent a
		// cell id of level i
		pvOffset[i+1] = pvOffset[i] + int(math.Ceil(math.Log2(float64(numCells[i]))))
	}
	if pvOffset[mp.l] > 64 {
		return fmt.Errorf("partitioner: cell numbers need %d bits, only 64 available", pvOffset[mp.l])
	}

	cellNumbers := make([]uint64, mp.graph.NumberOfVertices())

	for l := 0; l < mp.l; l++ {
		for cellId, vertexIds := range mp.overlayNodes[l] {
			for _, vertexId := range vertexIds {
				cellNumbers[vertexId] |= uint64(cellId) << uint64(pvOffset[l])
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d\n", len(numCells)); err != nil {
		return err
	}
	for i := 0; i < len(numCells); i++ {
		if _, err := fmt.Fprintf(w, "%d\n", numCells[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d\n", mp.graph.NumberOfVertices()); err != nil {
		return err
	}
	for _, vertexID := range mp.graph.GetVerticeIds() {
		if _, err := fmt.Fprintf(w, "%d\n", cellNumbers[vertexID]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// SaveCutBoundariesToFile writes the encoded polylines of every bisection cut
// of rb as a json array.
func (rb *RecursiveBisection) SaveCutBoundariesToFile(filename string) error {
	buf, err := json.MarshalIndent(rb.cutBoundaries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, buf, 0644)
}
