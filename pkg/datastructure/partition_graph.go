package datastructure

// we use capacity 1 for each edge in graph (see On Balanced Separators in Road Networks, Schild, et al.)
// the minimum cut itself is computed by the solver in pkg/maxflow
type PartitionEdge struct {
	id int
	u  Index
	v  Index
}

func NewPartitionEdge(id int, u, v Index) PartitionEdge {
	return PartitionEdge{id: id, u: u, v: v}
}

func (e *PartitionEdge) GetID() int {
	return e.id
}

func (e *PartitionEdge) GetFrom() Index {
	return e.u
}

func (e *PartitionEdge) GetTo() Index {
	return e.v
}

type PartitionVertex struct {
	id               Index
	originalVertexId Index
	lat, lon         float64
}

func NewPartitionVertex(id, originalVertexId Index, lat, lon float64) PartitionVertex {
	return PartitionVertex{
		id:               id,
		originalVertexId: originalVertexId,
		lat:              lat,
		lon:              lon,
	}
}

func (v *PartitionVertex) GetID() Index {
	return v.id
}

func (v *PartitionVertex) SetId(id Index) {
	v.id = id
}

func (v *PartitionVertex) GetOriginalVertexID() Index {
	return v.originalVertexId
}

func (v *PartitionVertex) GetVertexCoordinate() (float64, float64) {
	return v.lat, v.lon
}

// PartitionGraph is the working graph of one bisection step. Edges are
// undirected and stored once.
type PartitionGraph struct {
	vertices      []PartitionVertex
	adjacencyList [][]int
	edgeList      []PartitionEdge
}

func NewPartitionGraph(numberOfVertices int) *PartitionGraph {
	return &PartitionGraph{
		vertices:      make([]PartitionVertex, 0, numberOfVertices),
		adjacencyList: make([][]int, 0, numberOfVertices),
		edgeList:      make([]PartitionEdge, 0),
	}
}

func (g *PartitionGraph) GetVertices() []PartitionVertex {
	return g.vertices
}

func (g *PartitionGraph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *PartitionGraph) NumberOfEdges() int {
	return len(g.edgeList)
}

func (g *PartitionGraph) AddVertex(v PartitionVertex) {
	g.vertices = append(g.vertices, v)
	for len(g.adjacencyList) < int(v.id)+1 {
		g.adjacencyList = append(g.adjacencyList, nil)
	}
}

func (g *PartitionGraph) GetVertex(u Index) PartitionVertex {
	return g.vertices[u]
}

func (g *PartitionGraph) AddEdge(u, v Index) {
	if u == v {
		return
	}
	edge := NewPartitionEdge(len(g.edgeList), u, v)
	g.edgeList = append(g.edgeList, edge)
	g.adjacencyList[u] = append(g.adjacencyList[u], edge.id)
	g.adjacencyList[v] = append(g.adjacencyList[v], edge.id)
}

func (g *PartitionGraph) GetEdgeById(eId int) PartitionEdge {
	return g.edgeList[eId]
}

func (g *PartitionGraph) ForEachVertices(handle func(v PartitionVertex)) {
	for i := range g.vertices {
		handle(g.vertices[i])
	}
}

func (g *PartitionGraph) ForEachVertexEdges(u Index, handle func(e PartitionEdge)) {
	for _, edgeIdx := range g.adjacencyList[u] {
		handle(g.edgeList[edgeIdx])
	}
}

func (g *PartitionGraph) ForEdgeList(handle func(e PartitionEdge, eId int)) {
	for eId := range g.edgeList {
		handle(g.edgeList[eId], eId)
	}
}
