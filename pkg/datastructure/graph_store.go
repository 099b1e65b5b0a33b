package datastructure

import (
	"maps"
	"slices"
)

type Neighbor struct {
	ID     int64   `json:"id"`
	Weight float64 `json:"weight"`
}

// GraphStore. directed weighted adjacency over osm node ids plus the table of routable
// node coordinates. a node is routable iff it is an endpoint of at least one edge.
// not safe for concurrent mutation, callers serialize ingestion.
type GraphStore struct {
	adjacency map[int64]map[int64]float64
	coords    map[int64]Coordinate
	// routable node ids in the order they became routable
	order       []int64
	numEdges    int
	boundingBox *BoundingBox
}

func NewGraphStore() *GraphStore {
	return &GraphStore{
		adjacency:   make(map[int64]map[int64]float64),
		coords:      make(map[int64]Coordinate),
		order:       make([]int64, 0),
		boundingBox: NewEmptyBoundingBox(),
	}
}

// AddEdge. insert from->to with weight. the first weight recorded for an ordered pair wins,
// later insertions are ignored and return false.
func (g *GraphStore) AddEdge(from, to int64, weight float64) bool {
	outs, ok := g.adjacency[from]
	if !ok {
		outs = make(map[int64]float64)
		g.adjacency[from] = outs
	}
	if _, exists := outs[to]; exists {
		return false
	}
	outs[to] = weight
	g.numEdges++
	return true
}

// MakeRoutable. add id to the coordinate table. coordinates of a node already routable are kept.
func (g *GraphStore) MakeRoutable(id int64, lat, lon float64) {
	if _, ok := g.coords[id]; ok {
		return
	}
	g.coords[id] = NewCoordinate(lat, lon)
	g.order = append(g.order, id)
	g.boundingBox.Extend(lat, lon)
}

func (g *GraphStore) IsRoutable(id int64) bool {
	_, ok := g.coords[id]
	return ok
}

func (g *GraphStore) GetCoordinate(id int64) (Coordinate, bool) {
	c, ok := g.coords[id]
	return c, ok
}

func (g *GraphStore) GetWeight(from, to int64) (float64, bool) {
	w, ok := g.adjacency[from][to]
	return w, ok
}

func (g *GraphStore) HasEdge(from, to int64) bool {
	_, ok := g.GetWeight(from, to)
	return ok
}

// GetNeighbors. outgoing edges of id sorted by neighbor id.
func (g *GraphStore) GetNeighbors(id int64) []Neighbor {
	outs := g.adjacency[id]
	heads := slices.Sorted(maps.Keys(outs))

	neighbors := make([]Neighbor, 0, len(heads))
	for _, head := range heads {
		neighbors = append(neighbors, Neighbor{ID: head, Weight: outs[head]})
	}
	return neighbors
}

func (g *GraphStore) ForOutEdges(id int64, handle func(to int64, weight float64)) {
	for to, w := range g.adjacency[id] {
		handle(to, w)
	}
}

// ForRoutableNodes. visit routable nodes in the order they became routable, stop when handle returns false.
func (g *GraphStore) ForRoutableNodes(handle func(id int64, coord Coordinate) bool) {
	for _, id := range g.order {
		if !handle(id, g.coords[id]) {
			return
		}
	}
}

func (g *GraphStore) NumberOfVertices() int {
	return len(g.order)
}

func (g *GraphStore) NumberOfEdges() int {
	return g.numEdges
}

// NumberOfSources. nodes with at least one outgoing edge.
func (g *GraphStore) NumberOfSources() int {
	return len(g.adjacency)
}

func (g *GraphStore) GetBoundingBox() *BoundingBox {
	return g.boundingBox
}

// Nearest. routable node with the smallest squared lat/lon difference to (lat, lon).
// a planar approximation, only meaningful over short spans. ties go to the node that
// became routable first.
func (g *GraphStore) Nearest(lat, lon float64) (int64, bool) {
	var (
		nearest int64
		found   bool
		minDist float64
	)
	for _, id := range g.order {
		c := g.coords[id]
		dy := c.Lat - lat
		dx := c.Lon - lon
		dist := dx*dx + dy*dy
		if !found || dist < minDist {
			nearest, minDist, found = id, dist, true
		}
	}
	return nearest, found
}
