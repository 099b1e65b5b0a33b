package datastructure

import (
	"testing"

	"github.com/lintang-b-s/tilegraph/pkg/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeFirstWeightWins(t *testing.T) {
	g := NewGraphStore()

	assert.True(t, g.AddEdge(1, 2, 3.5))
	assert.False(t, g.AddEdge(1, 2, 10))
	assert.True(t, g.AddEdge(2, 1, 7))

	w, ok := g.GetWeight(1, 2)
	require.True(t, ok)
	assert.Equal(t, 3.5, w)
	assert.Equal(t, 2, g.NumberOfEdges())
	assert.Equal(t, 2, g.NumberOfSources())
	assert.False(t, g.HasEdge(1, 3))
}

func TestGetNeighborsSorted(t *testing.T) {
	g := NewGraphStore()
	g.AddEdge(1, 9, 1)
	g.AddEdge(1, 3, 2)
	g.AddEdge(1, 5, 3)

	assert.Equal(t, []Neighbor{{ID: 3, Weight: 2}, {ID: 5, Weight: 3}, {ID: 9, Weight: 1}}, g.GetNeighbors(1))
	assert.Empty(t, g.GetNeighbors(42))
}

func TestMakeRoutable(t *testing.T) {
	g := NewGraphStore()
	g.MakeRoutable(7, 1.5, 2.5)
	g.MakeRoutable(7, 9, 9)

	c, ok := g.GetCoordinate(7)
	require.True(t, ok)
	assert.Equal(t, NewCoordinate(1.5, 2.5), c)
	assert.Equal(t, 1, g.NumberOfVertices())
	assert.False(t, g.IsRoutable(8))

	bb := g.GetBoundingBox()
	assert.False(t, bb.IsEmpty())
	assert.Equal(t, 1.5, bb.GetMinLat())
	assert.Equal(t, 2.5, bb.GetMaxLon())
}

func TestNearest(t *testing.T) {
	g := NewGraphStore()
	_, found := g.Nearest(0, 0)
	assert.False(t, found)

	g.MakeRoutable('A', 0, 0)
	g.MakeRoutable('B', 1, 1)
	g.MakeRoutable('C', 5, 5)

	testCases := []struct {
		name     string
		lat, lon float64
		want     int64
	}{
		{name: "close to A", lat: 0.1, lon: 0.1, want: 'A'},
		{name: "close to B", lat: 1.2, lon: 0.9, want: 'B'},
		{name: "far away", lat: 40, lon: 40, want: 'C'},
		{name: "tie goes to first routable", lat: 0.5, lon: 0.5, want: 'A'},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, found := g.Nearest(tt.lat, tt.lon)
			require.True(t, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForRoutableNodesStops(t *testing.T) {
	g := NewGraphStore()
	g.MakeRoutable(3, 0, 0)
	g.MakeRoutable(1, 0, 0)
	g.MakeRoutable(2, 0, 0)

	visited := []int64{}
	g.ForRoutableNodes(func(id int64, _ Coordinate) bool {
		visited = append(visited, id)
		return len(visited) < 2
	})
	assert.Equal(t, []int64{3, 1}, visited)
}

func TestCoverageSet(t *testing.T) {
	c := NewCoverageSet()
	cell := tile.NewGridCell(15, 1, 2)

	assert.False(t, c.AlreadyCovered(cell))
	c.MarkCovered(cell)
	c.MarkCovered(cell)
	assert.True(t, c.AlreadyCovered(cell))
	assert.False(t, c.AlreadyCovered(tile.NewGridCell(15, 2, 1)))
	assert.Equal(t, 1, c.Len())
}
