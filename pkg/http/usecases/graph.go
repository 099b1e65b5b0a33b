package usecases

import (
	"context"
	"errors"
	"sync"

	"github.com/lintang-b-s/tilegraph/pkg/concurrent"
	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/lintang-b-s/tilegraph/pkg/spatialindex"
	"github.com/lintang-b-s/tilegraph/pkg/tilecache"
	"github.com/lintang-b-s/tilegraph/pkg/util"
	"go.uber.org/zap"
)

// NearestNode. a routable node found for a query point. Distance is the great circle
// distance in meter, informational only, ranking is planar.
type NearestNode struct {
	ID       int64
	Coord    geo.Coordinate
	Distance float64
	Found    bool
}

type NodeInfo struct {
	ID        int64
	Coord     geo.Coordinate
	Neighbors []datastructure.Neighbor
}

// GraphService. serializes access to one engine. coverage loading takes the write lock,
// queries share the read lock.
type GraphService struct {
	log          *zap.Logger
	engine       GraphEngine
	mu           sync.RWMutex
	numWorkers   int
	nearbyLimit  int
	searchRadius float64
}

func NewGraphService(log *zap.Logger, engine GraphEngine, numWorkers, nearbyLimit int, searchRadius float64) *GraphService {
	return &GraphService{
		log:          log,
		engine:       engine,
		numWorkers:   numWorkers,
		nearbyLimit:  nearbyLimit,
		searchRadius: searchRadius,
	}
}

func (gs *GraphService) Coverage(ctx context.Context, lat, lon float64) (engine.CoverageResult, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	res, err := gs.engine.EnsureCoverage(ctx, lat, lon)
	if err != nil {
		return res, coverageError(err, lat, lon)
	}
	return res, nil
}

func (gs *GraphService) Nearest(ctx context.Context, lat, lon float64, ensureCoverage bool) (NearestNode, error) {
	if ensureCoverage {
		if _, err := gs.Coverage(ctx, lat, lon); err != nil {
			return NearestNode{}, err
		}
	}

	gs.mu.RLock()
	defer gs.mu.RUnlock()

	node := gs.nearest(lat, lon)
	if !node.Found {
		return node, util.WrapErrorf(engine.ErrNoRoutableNode, util.ErrNotFound,
			"no routable node near %f,%f", lat, lon)
	}
	return node, nil
}

// NearestBatch. coverage of every point is ensured one after another, the lookups then run on a worker pool.
// points without a routable node come back with Found false.
func (gs *GraphService) NearestBatch(ctx context.Context, points []geo.Coordinate, ensureCoverage bool) ([]NearestNode, error) {
	if ensureCoverage {
		for _, p := range points {
			if _, err := gs.Coverage(ctx, p.Lat, p.Lon); err != nil {
				return nil, err
			}
		}
	}

	gs.mu.RLock()
	defer gs.mu.RUnlock()

	return concurrent.Map(points, gs.numWorkers, func(p geo.Coordinate) NearestNode {
		return gs.nearest(p.Lat, p.Lon)
	}), nil
}

func (gs *GraphService) nearest(lat, lon float64) NearestNode {
	id, ok := gs.engine.Nearest(lat, lon)
	if !ok {
		return NearestNode{}
	}
	c, _ := gs.engine.Graph().GetCoordinate(id)
	coord := c.ToGeoCoordinate()
	return NearestNode{
		ID:       id,
		Coord:    coord,
		Distance: geo.DistanceMeters(geo.NewCoordinate(lat, lon), coord),
		Found:    true,
	}
}

func (gs *GraphService) Node(id int64) (NodeInfo, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	g := gs.engine.Graph()
	c, ok := g.GetCoordinate(id)
	if !ok {
		return NodeInfo{}, util.WrapErrorf(engine.ErrUnknownNode, util.ErrNotFound, "node %d is not routable", id)
	}
	return NodeInfo{ID: id, Coord: c.ToGeoCoordinate(), Neighbors: g.GetNeighbors(id)}, nil
}

// NodesNearby. radius in km, zero uses the configured search radius.
func (gs *GraphService) NodesNearby(lat, lon, radius float64) []spatialindex.NearbyNode {
	if radius <= 0 {
		radius = gs.searchRadius
	}

	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.engine.NodesWithinRadius(lat, lon, radius, gs.nearbyLimit)
}

// PathGeometry. coordinates and encoded polyline of a node id sequence.
func (gs *GraphService) PathGeometry(ids []int64) ([]geo.Coordinate, string, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	coords, err := gs.engine.PathCoordinates(ids)
	if err != nil {
		return nil, "", util.WrapErrorf(err, util.ErrBadParamInput, "path contains a node that is not routable")
	}
	return coords, geo.EncodePolyline(coords), nil
}

func (gs *GraphService) Report() engine.Report {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.engine.Report()
}

func coverageError(err error, lat, lon float64) error {
	switch {
	case errors.Is(err, tilecache.ErrInvalidTile):
		return util.WrapErrorf(err, util.ErrBadParamInput, "no tile covers %f,%f", lat, lon)
	case errors.Is(err, engine.ErrNoTileCache):
		return util.WrapErrorf(err, util.ErrConflict, "coverage loading is disabled")
	default:
		return util.WrapErrorf(err, util.ErrInternalServerError, "load coverage of %f,%f", lat, lon)
	}
}
