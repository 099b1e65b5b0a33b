package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"github.com/lintang-b-s/tilegraph/pkg/util"
	"go.uber.org/zap"
)

var (
	lat     = flag.Float64("lat", 0, "latitude of the area to load")
	lon     = flag.Float64("lon", 0, "longitude of the area to load")
	tileArg = flag.String("tile", "", "z/x/y of a tile to load, z at least the download zoom")
	extract = flag.String("extract", "", "load a local .osm/.osm.bz2/.osm.pbf extract instead of downloading tiles")
	nearest = flag.Bool("nearest", true, "print the routable node nearest to -lat/-lon")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.ReadConfig(); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}

	if err := run(context.Background(), logger); err != nil {
		logger.Error("tilegraph failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger) error {
	e, err := engine.NewEngineFromConfig(log, *extract == "")
	if err != nil {
		return err
	}

	switch {
	case *extract != "":
		if _, err := e.LoadFile(ctx, *extract); err != nil {
			return err
		}
	case *tileArg != "":
		var z, x, y int
		if _, err := fmt.Sscanf(*tileArg, "%d/%d/%d", &z, &x, &y); err != nil {
			return fmt.Errorf("tile must be z/x/y: %w", err)
		}
		res, err := e.EnsureTileCoverage(ctx, z, x, y)
		if err != nil {
			return err
		}
		log.Info("tile loaded", zap.String("cell", res.Cell.Key()), zap.String("path", res.Path))
	default:
		res, err := e.EnsureCoverage(ctx, *lat, *lon)
		if err != nil {
			return err
		}
		log.Info("area loaded", zap.String("cell", res.Cell.Key()), zap.String("path", res.Path))
	}

	report := e.Report()
	log.Sugar().Infof("Loaded %d nodes", report.RoutableNodes)
	log.Sugar().Infof("%d nodes have connections", report.Sources)
	log.Info("graph report",
		zap.String("mode", e.Mode().String()),
		zap.Int("routable_nodes", report.RoutableNodes),
		zap.Int("sources", report.Sources),
		zap.Int("edges", report.Edges),
		zap.Int("covered_cells", report.CoveredCells))

	if *nearest && *tileArg == "" {
		id, ok := e.Nearest(*lat, *lon)
		if !ok {
			return engine.ErrNoRoutableNode
		}
		c, _ := e.Graph().GetCoordinate(id)
		log.Info("nearest routable node", zap.Int64("id", id), zap.Float64("lat", c.Lat), zap.Float64("lon", c.Lon))
	}
	return nil
}
