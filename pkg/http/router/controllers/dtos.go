package controllers

import (
	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/lintang-b-s/tilegraph/pkg/http/usecases"
	"github.com/lintang-b-s/tilegraph/pkg/spatialindex"
)

type coordinateRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type nearbyRequest struct {
	Lat    float64 `validate:"min=-90,max=90"`
	Lon    float64 `validate:"min=-180,max=180"`
	Radius float64 `validate:"min=0,max=10"`
}

type nearestBatchRequest struct {
	Points         []coordinateRequest `json:"points" validate:"required,min=1,max=1000,dive"`
	EnsureCoverage bool                `json:"ensure_coverage"`
}

func (r nearestBatchRequest) coordinates() []geo.Coordinate {
	coords := make([]geo.Coordinate, 0, len(r.Points))
	for _, p := range r.Points {
		coords = append(coords, geo.NewCoordinate(p.Lat, p.Lon))
	}
	return coords
}

type pathGeometryRequest struct {
	Nodes []int64 `json:"nodes" validate:"required,min=1"`
}

type cellResponse struct {
	Z   int    `json:"z"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Key string `json:"key"`
}

type coverageResponse struct {
	Cell     cellResponse `json:"cell"`
	Path     string       `json:"path"`
	Loaded   bool         `json:"loaded"`
	NewEdges int          `json:"new_edges"`
}

func NewCoverageResponse(res engine.CoverageResult) coverageResponse {
	return coverageResponse{
		Cell:     cellResponse{Z: res.Cell.Z, X: res.Cell.X, Y: res.Cell.Y, Key: res.Cell.Key()},
		Path:     res.Path,
		Loaded:   res.Loaded,
		NewEdges: res.Stats.NewEdges,
	}
}

type nearestResponse struct {
	ID       int64   `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
	Found    bool    `json:"found"`
}

func NewNearestResponse(n usecases.NearestNode) nearestResponse {
	return nearestResponse{
		ID:       n.ID,
		Lat:      n.Coord.Lat,
		Lon:      n.Coord.Lon,
		Distance: n.Distance,
		Found:    n.Found,
	}
}

func NewNearestBatchResponse(nodes []usecases.NearestNode) []nearestResponse {
	res := make([]nearestResponse, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, NewNearestResponse(n))
	}
	return res
}

type nodeResponse struct {
	ID        int64                    `json:"id"`
	Lat       float64                  `json:"lat"`
	Lon       float64                  `json:"lon"`
	Neighbors []datastructure.Neighbor `json:"neighbors"`
}

func NewNodeResponse(info usecases.NodeInfo) nodeResponse {
	return nodeResponse{
		ID:        info.ID,
		Lat:       info.Coord.Lat,
		Lon:       info.Coord.Lon,
		Neighbors: info.Neighbors,
	}
}

type nearbyNodeResponse struct {
	ID       int64   `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

func NewNearbyResponse(nodes []spatialindex.NearbyNode) []nearbyNodeResponse {
	res := make([]nearbyNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, nearbyNodeResponse{ID: n.ID, Lat: n.Coord.Lat, Lon: n.Coord.Lon, Distance: n.Distance})
	}
	return res
}

type legResponse struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	Distance float64 `json:"distance"`
	Bearing  float64 `json:"bearing"`
}

type pathGeometryResponse struct {
	Coordinates []geo.Coordinate `json:"coordinates"`
	Polyline    string           `json:"polyline"`
	Distance    float64          `json:"distance"`
	Legs        []legResponse    `json:"legs"`
}

// NewPathGeometryResponse. distances in meter, bearings in degree.
func NewPathGeometryResponse(ids []int64, coords []geo.Coordinate, line string) pathGeometryResponse {
	res := pathGeometryResponse{Coordinates: coords, Polyline: line, Legs: make([]legResponse, 0, len(coords))}
	for i := 1; i < len(coords); i++ {
		from, to := coords[i-1], coords[i]
		d := geo.DistanceMeters(from, to)
		res.Distance += d
		res.Legs = append(res.Legs, legResponse{
			From:     ids[i-1],
			To:       ids[i],
			Distance: d,
			Bearing:  geo.BearingTo(from.Lat, from.Lon, to.Lat, to.Lon),
		})
	}
	return res
}

type boundingBoxResponse struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

type reportResponse struct {
	RoutableNodes int                  `json:"routable_nodes"`
	Sources       int                  `json:"sources"`
	Edges         int                  `json:"edges"`
	CoveredCells  int                  `json:"covered_cells"`
	BoundingBox   *boundingBoxResponse `json:"bounding_box,omitempty"`
}

func NewReportResponse(r engine.Report) reportResponse {
	res := reportResponse{
		RoutableNodes: r.RoutableNodes,
		Sources:       r.Sources,
		Edges:         r.Edges,
		CoveredCells:  r.CoveredCells,
	}
	if r.BoundingBox != nil && !r.BoundingBox.IsEmpty() {
		res.BoundingBox = &boundingBoxResponse{
			MinLat: r.BoundingBox.GetMinLat(),
			MinLon: r.BoundingBox.GetMinLon(),
			MaxLat: r.BoundingBox.GetMaxLat(),
			MaxLon: r.BoundingBox.GetMaxLon(),
		}
	}
	return res
}
