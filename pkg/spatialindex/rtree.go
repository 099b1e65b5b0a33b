package spatialindex

import (
	"sort"

	"github.com/lintang-b-s/tilegraph/pkg/datastructure"
	"github.com/lintang-b-s/tilegraph/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree. point index over the routable nodes of a GraphStore.
type Rtree struct {
	tr      *rtree.RTreeG[int64]
	indexed int
}

// NearbyNode. a routable node and its distance (meter) from the query point.
type NearbyNode struct {
	ID       int64
	Coord    datastructure.Coordinate
	Distance float64
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[int64]
	return &Rtree{
		tr: &tr,
	}
}

// Sync. index the routable nodes added to graph since the last sync.
// routable nodes are never removed and keep their insertion order, so only the tail is new.
func (rt *Rtree) Sync(graph *datastructure.GraphStore, log *zap.Logger) int {
	added := 0
	pos := 0
	graph.ForRoutableNodes(func(id int64, coord datastructure.Coordinate) bool {
		pos++
		if pos <= rt.indexed {
			return true
		}
		point := [2]float64{coord.GetLon(), coord.GetLat()}
		rt.tr.Insert(point, point, id)
		added++
		return true
	})
	rt.indexed += added

	if added > 0 && log != nil {
		log.Debug("spatial index updated", zap.Int("added", added), zap.Int("indexed", rt.indexed))
	}
	return added
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius search for at most limit routable nodes within radius (in km) from the query point (qLat, qLon),
// closest first. limit <= 0 returns every match.
func (rt *Rtree) SearchWithinRadius(graph *datastructure.GraphStore, qLat, qLon, radius float64, limit int) []NearbyNode {
	minLat, minLon, maxLat, maxLon := geo.RadiusBounds(qLat, qLon, radius)
	query := geo.NewCoordinate(qLat, qLon)
	radiusM := radius * 1000

	results := make([]NearbyNode, 0, 10)
	rt.tr.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
		func(min, max [2]float64, id int64) bool {
			coord, ok := graph.GetCoordinate(id)
			if !ok {
				return true
			}
			d := geo.DistanceMeters(query, coord.ToGeoCoordinate())
			if d <= radiusM {
				results = append(results, NearbyNode{ID: id, Coord: coord, Distance: d})
			}
			return true
		})

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].ID < results[j].ID
		}
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
