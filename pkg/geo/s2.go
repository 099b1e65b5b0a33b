package geo

import (
	"github.com/golang/geo/s2"
)

const earthRadiusM = earthRadiusKM * 1000

func toS2Point(c Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// DistanceMeters. great circle distance in meter.
func DistanceMeters(a, b Coordinate) float64 {
	return float64(toS2Point(a).Distance(toS2Point(b))) * earthRadiusM
}

// ProjectPointToLineCoord. closest point to snap on the great circle segment a-b.
func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate, snap Coordinate) Coordinate {
	projection := s2.Project(toS2Point(snap), toS2Point(pointA), toS2Point(pointB))
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance. return in meter
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate, snap Coordinate) float64 {
	return DistanceMeters(snap, ProjectPointToLineCoord(pointA, pointB, snap))
}
