package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/http"
	"github.com/lintang-b-s/tilegraph/pkg/http/usecases"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"github.com/lintang-b-s/tilegraph/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	useRateLimit = flag.Bool("rate_limit", false, "limit the api to API_RATE_LIMIT requests/sec")
	extract      = flag.String("extract", "", "local .osm/.osm.bz2/.osm.pbf extract loaded before serving")
	noCoverage   = flag.Bool("no_coverage", false, "never download tiles, serve only the preloaded extract")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	graphEngine, err := engine.NewEngineFromConfig(logger, !*noCoverage)
	if err != nil {
		logger.Fatal("build engine", zap.Error(err))
	}

	if *extract != "" {
		stats, err := graphEngine.LoadFile(ctx, *extract)
		if err != nil {
			logger.Fatal("load extract", zap.String("path", *extract), zap.Error(err))
		}
		logger.Info("extract loaded", zap.String("path", *extract), zap.Int("new_edges", stats.NewEdges))
	}

	graphService := usecases.NewGraphService(logger, graphEngine, viper.GetInt("NEAREST_BATCH_WORKERS"),
		viper.GetInt("NEARBY_LIMIT"), viper.GetFloat64("SEARCH_RADIUS"))

	api := http.NewServer(logger)
	err = api.Use(ctx, logger, *useRateLimit, graphService)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
		return
	}

	logger.Info("Tilegraph Server Stopped")
}
