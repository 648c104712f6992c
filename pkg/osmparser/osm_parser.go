package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type NodeType int

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type nodeCoord struct {
	lat float64
	lon float64
}

// OsmParser builds an undirected road graph from an openstreetmap pbf
// extract. Vertices are way endpoints and junctions, between nodes only
// contribute to edge length.
type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	nodeIDMap       map[int64]datastructure.Index
}

func NewOSMParser() *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		nodeIDMap:       make(map[int64]datastructure.Index),
	}
}

var (
	skipHighway = map[string]struct{}{
		"footway":      {},
		"construction": {},
		"cycleway":     {},
		"path":         {},
		"pedestrian":   {},
		"busway":       {},
		"steps":        {},
		"bridleway":    {},
		"corridor":     {},
		"platform":     {},
		"elevator":     {},
		"proposed":     {},
	}

	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"track":            {},
		"unclassified":     {},
		"living_street":    {},
		"motorroad":        {},
	}
)

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return way.Tags.Find("junction") != ""
	}
	if _, ok := skipHighway[highway]; ok {
		return false
	}
	_, ok := acceptedHighway[highway]
	return ok
}

// Parse scans mapFile twice. The first pass classifies the nodes of every
// drivable way as end, between, or junction node. The second pass reads node
// coordinates and splits ways into graph edges at junction nodes. pbf files
// store nodes before ways, so one scan sees all coordinates before the first
// way of the second pass.
func (p *OsmParser) Parse(mapFile string, logger *zap.Logger) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, fmt.Errorf("osmparser: open %s: %w", mapFile, err)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(node.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = JUNCTION_NODE
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()

	graph := datastructure.NewGraph()
	edgeSet := make(map[datastructure.Index]map[datastructure.Index]struct{})

	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if (countNodes+1)%500000 == 0 {
				logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			if _, ok := p.wayNodeMap[int64(o.ID)]; ok {
				p.acceptedNodeMap[int64(o.ID)] = nodeCoord{lat: o.Lat, lon: o.Lon}
			}
		case *osm.Way:
			if len(o.Nodes) < 2 || !acceptOsmWay(o) {
				continue
			}
			if (countWays+1)%50000 == 0 {
				logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			p.processWay(o, graph, edgeSet)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Sugar().Infof("road graph built: %d vertices, %d edges",
		graph.NumberOfVertices(), graph.NumberOfEdges())
	return graph, nil
}

// processWay splits the way at its junction nodes and adds one undirected
// edge per segment. oneway tags are irrelevant for partitioning, every edge
// is undirected here.
func (p *OsmParser) processWay(way *osm.Way, graph *datastructure.Graph,
	edgeSet map[datastructure.Index]map[datastructure.Index]struct{}) {
	segment := make([]int64, 0, len(way.Nodes))
	for i, wayNode := range way.Nodes {
		id := int64(wayNode.ID)
		segment = append(segment, id)
		if i == len(way.Nodes)-1 || p.wayNodeMap[id] != JUNCTION_NODE {
			continue
		}
		p.addSegmentEdge(segment, graph, edgeSet)
		segment = segment[:0]
		segment = append(segment, id)
	}
	if len(segment) > 1 {
		p.addSegmentEdge(segment, graph, edgeSet)
	}
}

func (p *OsmParser) addSegmentEdge(segment []int64, graph *datastructure.Graph,
	edgeSet map[datastructure.Index]map[datastructure.Index]struct{}) {
	fromOsm := segment[0]
	toOsm := segment[len(segment)-1]
	if fromOsm == toOsm {
		return
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		prev, okPrev := p.acceptedNodeMap[segment[i-1]]
		cur, okCur := p.acceptedNodeMap[segment[i]]
		if !okPrev || !okCur {
			// node missing from the extract, skip the whole segment
			return
		}
		distance += orbgeo.DistanceHaversine(
			orb.Point{prev.lon, prev.lat},
			orb.Point{cur.lon, cur.lat},
		)
	}

	u := p.vertexID(fromOsm, graph)
	v := p.vertexID(toOsm, graph)

	if _, ok := edgeSet[u]; !ok {
		edgeSet[u] = make(map[datastructure.Index]struct{})
	}
	if _, ok := edgeSet[u][v]; ok {
		return
	}
	edgeSet[u][v] = struct{}{}
	if _, ok := edgeSet[v]; !ok {
		edgeSet[v] = make(map[datastructure.Index]struct{})
	}
	edgeSet[v][u] = struct{}{}

	graph.AddEdge(u, v, distance)
}

func (p *OsmParser) vertexID(osmID int64, graph *datastructure.Graph) datastructure.Index {
	if id, ok := p.nodeIDMap[osmID]; ok {
		return id
	}
	coord := p.acceptedNodeMap[osmID]
	id := graph.AddVertex(coord.lat, coord.lon)
	p.nodeIDMap[osmID] = id
	return id
}
