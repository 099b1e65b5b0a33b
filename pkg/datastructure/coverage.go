package datastructure

import "github.com/lintang-b-s/tilegraph/pkg/tile"

// CoverageSet. cells already merged into a graph. there is no removal.
type CoverageSet struct {
	cells map[string]struct{}
}

func NewCoverageSet() *CoverageSet {
	return &CoverageSet{cells: make(map[string]struct{})}
}

func (c *CoverageSet) AlreadyCovered(cell tile.GridCell) bool {
	_, ok := c.cells[cell.Key()]
	return ok
}

func (c *CoverageSet) MarkCovered(cell tile.GridCell) {
	c.cells[cell.Key()] = struct{}{}
}

func (c *CoverageSet) Len() int {
	return len(c.cells)
}
