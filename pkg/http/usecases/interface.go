package usecases

import (
	"context"

	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/lintang-b-s/tilegraph/pkg/spatialindex"
)

type GraphEngine interface {
	EnsureCoverage(ctx context.Context, lat, lon float64) (engine.CoverageResult, error)
	Nearest(lat, lon float64) (int64, bool)
	Graph() *datastructure.GraphStore
	NodesWithinRadius(lat, lon, radiusKM float64, limit int) []spatialindex.NearbyNode
	PathCoordinates(ids []int64) ([]geo.Coordinate, error)
	Report() engine.Report
}
