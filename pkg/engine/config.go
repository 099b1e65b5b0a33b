package engine

import (
	"fmt"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/costfunction"
	"github.com/lintang-b-s/tilegraph/pkg/osmparser"
	"github.com/lintang-b-s/tilegraph/pkg/tilecache"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewEngineFromConfig. build an engine from the viper keys set up by util.ReadConfig.
// withCache false leaves coverage loading disabled, the graph is then filled with LoadFile.
func NewEngineFromConfig(log *zap.Logger, withCache bool) (*Engine, error) {
	mode, err := pkg.ParseTransportMode(viper.GetString("TRANSPORT_MODE"))
	if err != nil {
		return nil, err
	}

	var weights costfunction.WeightProvider = costfunction.NewRoutingWeights()
	if path := viper.GetString("WEIGHTS_FILE"); path != "" {
		loaded, err := costfunction.LoadRoutingWeights(path)
		if err != nil {
			return nil, fmt.Errorf("load weights: %w", err)
		}
		weights = loaded
	}

	parser := osmparser.NewParser(
		osmparser.WithLogger(log),
		osmparser.WithRelationMembers(viper.GetBool("RELATION_MEMBERS")),
	)

	var cache *tilecache.TileCache
	if withCache {
		fetcher := tilecache.NewHTTPFetcher(viper.GetString("OSM_API_URL"), viper.GetDuration("FETCH_TIMEOUT"),
			viper.GetFloat64("FETCH_RATE_LIMIT"), log)
		cache = tilecache.New(viper.GetString("CACHE_DIR"), fetcher,
			tilecache.WithMaxAge(viper.GetDuration("CACHE_MAX_AGE")),
			tilecache.WithLogger(log))
	}

	log.Info("engine configured",
		zap.String("mode", mode.String()),
		zap.Bool("coverage_loading", withCache),
		zap.String("cache_dir", viper.GetString("CACHE_DIR")))
	return NewEngine(mode, cache, parser, weights, log)
}
