package tile

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/util"
	"github.com/paulmach/osm"
)

// web mercator is undefined at the poles, slippy map tiles stop here
const maxMercatorLat = 85.0511287798066

// GridCell. a slippy-map tile (zoom, x, y), the unit of caching and coverage.
type GridCell struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

func NewGridCell(z, x, y int) GridCell {
	return GridCell{Z: z, X: x, Y: y}
}

// Key. canonical string form of the cell, also its relative cache directory.
func (c GridCell) Key() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

func (c GridCell) String() string {
	return c.Key()
}

// Valid. the bounds accepted by the download service.
func (c GridCell) Valid() bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 && c.Z <= pkg.MAX_ZOOM
}

// Coarsen. halve x and y until the cell is at zoom z. cells already at or above z are returned unchanged.
func (c GridCell) Coarsen(z int) GridCell {
	for c.Z > z {
		c.Z--
		c.X /= 2
		c.Y /= 2
	}
	return c
}

// Edges. bounding box of the cell as (south, west, north, east) in degrees.
func (c GridCell) Edges() (float64, float64, float64, float64) {
	return TileEdges(c.X, c.Y, c.Z)
}

func (c GridCell) Bounds() *osm.Bounds {
	s, w, n, e := c.Edges()
	return &osm.Bounds{
		MinLat: s,
		MaxLat: n,
		MinLon: w,
		MaxLon: e,
	}
}

func numTiles(z int) float64 {
	return math.Pow(2, float64(z))
}

// CellAt. the cell containing (lat, lon) at zoom z.
func CellAt(lat, lon float64, z int) GridCell {
	x, y := TileXY(lat, lon, z)
	return GridCell{Z: z, X: x, Y: y}
}

// TileXY. slippy map tile numbers containing (lat, lon) at zoom z.
// longitude maps linearly, latitude through the inverse gudermannian.
func TileXY(lat, lon float64, z int) (int, int) {
	lat = util.Clamp(lat, -maxMercatorLat, maxMercatorLat)
	latRad := util.DegreeToRadians(lat)

	relX := (lon + 180.0) / 360.0
	relY := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2

	n := numTiles(z)
	return clampTile(int(math.Floor(relX*n)), z), clampTile(int(math.Floor(relY*n)), z)
}

func clampTile(v, z int) int {
	return util.Clamp(v, 0, int(numTiles(z))-1)
}

func mercatorToLat(mercatorY float64) float64 {
	return util.RadiansToDegree(math.Atan(math.Sinh(mercatorY)))
}

func latEdges(y, z int) (float64, float64) {
	unit := 1 / numTiles(z)
	relY1 := float64(y) * unit
	relY2 := relY1 + unit
	return mercatorToLat(math.Pi * (1 - 2*relY1)), mercatorToLat(math.Pi * (1 - 2*relY2))
}

func lonEdges(x, z int) (float64, float64) {
	unit := 360.0 / numTiles(z)
	lon1 := -180.0 + float64(x)*unit
	return lon1, lon1 + unit
}

// TileEdges. (south, west, north, east) of tile (x, y) at zoom z.
func TileEdges(x, y, z int) (float64, float64, float64, float64) {
	north, south := latEdges(y, z)
	west, east := lonEdges(x, z)
	return south, west, north, east
}
