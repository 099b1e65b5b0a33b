package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/costfunction"
	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"github.com/lintang-b-s/tilegraph/pkg/osmparser"
	"github.com/lintang-b-s/tilegraph/pkg/spatialindex"
	"github.com/lintang-b-s/tilegraph/pkg/tile"
	"github.com/lintang-b-s/tilegraph/pkg/tilecache"
	"github.com/lintang-b-s/tilegraph/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrNoRoutableNode = errors.New("no routable node")
	ErrNoTileCache    = errors.New("engine has no tile cache, coverage can not be ensured")
	ErrUnknownNode    = errors.New("node is not routable")
)

// Engine. owns one graph for one transport mode plus the set of cells already merged into it.
// not safe for concurrent use, callers serialize access.
type Engine struct {
	mode     pkg.TransportMode
	cache    *tilecache.TileCache
	parser   *osmparser.Parser
	builder  *osmparser.GraphBuilder
	coverage *datastructure.CoverageSet
	index    *spatialindex.Rtree
	log      *zap.Logger
}

// CoverageResult. outcome of EnsureCoverage. Loaded is false when the cell was merged before.
type CoverageResult struct {
	Cell   tile.GridCell
	Path   string
	Loaded bool
	Stats  osmparser.IngestStats
}

// Report. size of the graph, routable nodes and nodes with at least one outgoing edge.
type Report struct {
	RoutableNodes int
	Sources       int
	Edges         int
	CoveredCells  int
	BoundingBox   *datastructure.BoundingBox
}

// NewEngine. cache may be nil, the graph is then filled with LoadFile only.
func NewEngine(mode pkg.TransportMode, cache *tilecache.TileCache, parser *osmparser.Parser,
	weights costfunction.WeightProvider, log *zap.Logger) (*Engine, error) {
	if mode > pkg.HORSE {
		return nil, fmt.Errorf("new engine: %w: %d", osmparser.ErrUnknownMode, mode)
	}
	log = logger.OrNop(log)
	if parser == nil {
		parser = osmparser.NewParser(osmparser.WithLogger(log))
	}
	if weights == nil {
		weights = costfunction.NewRoutingWeights()
	}

	return &Engine{
		mode:     mode,
		cache:    cache,
		parser:   parser,
		builder:  osmparser.NewGraphBuilder(datastructure.NewGraphStore(), weights, log),
		coverage: datastructure.NewCoverageSet(),
		index:    spatialindex.NewRtree(),
		log:      log,
	}, nil
}

func (e *Engine) Mode() pkg.TransportMode {
	return e.mode
}

func (e *Engine) Graph() *datastructure.GraphStore {
	return e.builder.GetGraph()
}

func (e *Engine) Coverage() *datastructure.CoverageSet {
	return e.coverage
}

// EnsureCoverage. make sure the canonical cell containing (lat, lon) is merged into the graph,
// downloading it first when it is not cached. a cell is marked covered only after its extract
// was ingested, a failed fetch or parse can be retried by the next call.
func (e *Engine) EnsureCoverage(ctx context.Context, lat, lon float64) (CoverageResult, error) {
	if e.cache == nil {
		return CoverageResult{}, ErrNoTileCache
	}

	cell := e.cache.CellAt(lat, lon)
	return e.ensureCell(ctx, cell, func() (tilecache.CachedFile, error) {
		return e.cache.Resolve(ctx, lat, lon)
	})
}

// EnsureTileCoverage. EnsureCoverage for a cell given at any zoom at least as fine as the download zoom.
func (e *Engine) EnsureTileCoverage(ctx context.Context, z, x, y int) (CoverageResult, error) {
	if e.cache == nil {
		return CoverageResult{}, ErrNoTileCache
	}

	cell := tile.NewGridCell(z, x, y)
	if !cell.Valid() || z < e.cache.Zoom() {
		_, err := e.cache.ResolveAtZoom(ctx, z, x, y)
		return CoverageResult{Cell: cell}, err
	}
	return e.ensureCell(ctx, cell.Coarsen(e.cache.Zoom()), func() (tilecache.CachedFile, error) {
		return e.cache.ResolveAtZoom(ctx, z, x, y)
	})
}

func (e *Engine) ensureCell(ctx context.Context, cell tile.GridCell,
	resolve func() (tilecache.CachedFile, error)) (CoverageResult, error) {
	if e.coverage.AlreadyCovered(cell) {
		return CoverageResult{Cell: cell, Path: e.cache.Path(cell)}, nil
	}

	cached, err := resolve()
	if err != nil {
		return CoverageResult{Cell: cell}, fmt.Errorf("ensure coverage of %s: %w", cell, err)
	}

	stats, err := e.LoadFile(ctx, cached.Path)
	if err != nil {
		return CoverageResult{Cell: cell, Path: cached.Path}, fmt.Errorf("ensure coverage of %s: %w", cell, err)
	}
	e.coverage.MarkCovered(cell)

	e.log.Info("cell merged into graph", zap.String("cell", cell.Key()), zap.Bool("fetched", cached.Fetched),
		zap.Int("covered_cells", e.coverage.Len()))
	return CoverageResult{Cell: cell, Path: cached.Path, Loaded: true, Stats: stats}, nil
}

// LoadFile. parse a whole extract and ingest its ways for the engine's mode. relations are ignored.
func (e *Engine) LoadFile(ctx context.Context, path string) (osmparser.IngestStats, error) {
	points := make(map[int64]osmparser.Point)
	ways := make([]osmparser.Way, 0)

	_, err := e.parser.ParseFile(ctx, path, func(rec osmparser.Record) error {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		switch rec.Type {
		case osmparser.POINT:
			points[rec.Attrs.ID] = rec.Point()
		case osmparser.WAY:
			ways = append(ways, rec.Way())
		}
		return nil
	})
	if err != nil {
		return osmparser.IngestStats{}, fmt.Errorf("parse %s: %w", path, err)
	}

	stats, err := e.builder.Ingest(points, ways, e.mode)
	if err != nil {
		return stats, err
	}
	e.index.Sync(e.Graph(), e.log)
	return stats, nil
}

// Nearest. closest routable node to (lat, lon) by squared lat/lon difference. no i/o.
func (e *Engine) Nearest(lat, lon float64) (int64, bool) {
	return e.Graph().Nearest(lat, lon)
}

// FindNode. EnsureCoverage followed by Nearest.
func (e *Engine) FindNode(ctx context.Context, lat, lon float64) (int64, error) {
	if _, err := e.EnsureCoverage(ctx, lat, lon); err != nil {
		return 0, err
	}
	id, ok := e.Nearest(lat, lon)
	if !ok {
		return 0, ErrNoRoutableNode
	}
	return id, nil
}

// NodesWithinRadius. routable nodes at most radiusKM km away, closest first.
func (e *Engine) NodesWithinRadius(lat, lon, radiusKM float64, limit int) []spatialindex.NearbyNode {
	return e.index.SearchWithinRadius(e.Graph(), lat, lon, radiusKM, limit)
}

// PathCoordinates. coordinates of a node id sequence, as handed back by a path search.
func (e *Engine) PathCoordinates(ids []int64) ([]geo.Coordinate, error) {
	coords := make([]geo.Coordinate, 0, len(ids))
	for _, id := range ids {
		c, ok := e.Graph().GetCoordinate(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
		}
		coords = append(coords, c.ToGeoCoordinate())
	}
	return coords, nil
}

func (e *Engine) Report() Report {
	g := e.Graph()
	return Report{
		RoutableNodes: g.NumberOfVertices(),
		Sources:       g.NumberOfSources(),
		Edges:         g.NumberOfEdges(),
		CoveredCells:  e.coverage.Len(),
		BoundingBox:   g.GetBoundingBox(),
	}
}
