package osmparser

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/costfunction"
	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"go.uber.org/zap"
)

var ErrUnknownMode = errors.New("unknown transport mode")

type IngestStats struct {
	Ways         int
	AcceptedWays int
	NewEdges     int
	// consecutive node pairs skipped because a node is not in the point table
	SkippedRefs int
}

func (s *IngestStats) Add(o IngestStats) {
	s.Ways += o.Ways
	s.AcceptedWays += o.AcceptedWays
	s.NewEdges += o.NewEdges
	s.SkippedRefs += o.SkippedRefs
}

// GraphBuilder. folds parsed ways into a shared GraphStore for one transport mode at a time.
type GraphBuilder struct {
	graph   *datastructure.GraphStore
	weights costfunction.WeightProvider
	log     *zap.Logger
}

func NewGraphBuilder(graph *datastructure.GraphStore, weights costfunction.WeightProvider, log *zap.Logger) *GraphBuilder {
	return &GraphBuilder{
		graph:   graph,
		weights: weights,
		log:     logger.OrNop(log),
	}
}

func (b *GraphBuilder) GetGraph() *datastructure.GraphStore {
	return b.graph
}

// Ingest. add the edges of ways usable by mode. re-ingesting the same data adds nothing,
// the first weight of an ordered node pair is never replaced.
func (b *GraphBuilder) Ingest(points map[int64]Point, ways []Way, mode pkg.TransportMode) (IngestStats, error) {
	if mode > pkg.HORSE {
		return IngestStats{}, fmt.Errorf("ingest: %w: %d", ErrUnknownMode, mode)
	}

	stats := IngestStats{}
	for _, way := range ways {
		stats.Add(b.storeWay(way, points, mode))
	}

	b.log.Info("ingested osm ways",
		zap.String("mode", mode.String()),
		zap.Int("ways", stats.Ways),
		zap.Int("accepted_ways", stats.AcceptedWays),
		zap.Int("new_edges", stats.NewEdges),
		zap.Int("skipped_refs", stats.SkippedRefs),
		zap.Int("routable_nodes", b.graph.NumberOfVertices()))
	return stats, nil
}

func (b *GraphBuilder) storeWay(way Way, points map[int64]Point, mode pkg.TransportMode) IngestStats {
	stats := IngestStats{Ways: 1}

	highway := Equivalent(way.Tags["highway"])
	railway := Equivalent(way.Tags["railway"])

	if !WayAccess(highway, railway).Allows(mode) {
		return stats
	}
	stats.AcceptedWays++

	reversible := Reversible(way.Tags, mode)
	weight := b.weights.GetWeight(mode, weightClass(highway, railway, mode))

	for i := 1; i < len(way.Nodes); i++ {
		from, okFrom := points[way.Nodes[i-1]]
		to, okTo := points[way.Nodes[i]]
		if !okFrom || !okTo {
			stats.SkippedRefs++
			continue
		}
		if from.ID == to.ID {
			continue
		}

		if b.graph.AddEdge(from.ID, to.ID, weight) {
			stats.NewEdges++
		}
		b.graph.MakeRoutable(from.ID, from.Lat, from.Lon)
		b.graph.MakeRoutable(to.ID, to.Lat, to.Lon)

		if reversible {
			if b.graph.AddEdge(to.ID, from.ID, weight) {
				stats.NewEdges++
			}
		}
	}
	return stats
}

// weightClass. ways are weighted by their highway class. railways carry no highway tag,
// trains look them up by railway class instead.
func weightClass(highway, railway string, mode pkg.TransportMode) string {
	if mode == pkg.TRAIN && highway == "" {
		return railway
	}
	return highway
}
