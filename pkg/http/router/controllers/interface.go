package controllers

import (
	"context"

	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/lintang-b-s/tilegraph/pkg/http/usecases"
	"github.com/lintang-b-s/tilegraph/pkg/spatialindex"
)

type GraphService interface {
	Coverage(ctx context.Context, lat, lon float64) (engine.CoverageResult, error)
	Nearest(ctx context.Context, lat, lon float64, ensureCoverage bool) (usecases.NearestNode, error)
	NearestBatch(ctx context.Context, points []geo.Coordinate, ensureCoverage bool) ([]usecases.NearestNode, error)
	Node(id int64) (usecases.NodeInfo, error)
	NodesNearby(lat, lon, radius float64) []spatialindex.NearbyNode
	PathGeometry(ids []int64) ([]geo.Coordinate, string, error)
	Report() engine.Report
}
