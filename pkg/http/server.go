package http

import (
	"context"

	http_router "github.com/lintang-b-s/tilegraph/pkg/http/router"
	"github.com/lintang-b-s/tilegraph/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/tilegraph/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use. serve the graph api until ctx is canceled or the listener fails.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	graphService controllers.GraphService,
) error {
	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(
			gctx, config, log,
			useRateLimit, graphService,
		)
	})

	return g.Wait()
}
