package osmparser

import "github.com/lintang-b-s/tilegraph/pkg"

var (
	cycleHighway = map[string]struct{}{
		"primary": {}, "secondary": {}, "tertiary": {}, "unclassified": {}, "minor": {},
		"cycleway": {}, "residential": {}, "track": {}, "service": {},
	}
	carHighway = map[string]struct{}{
		"motorway": {}, "trunk": {}, "primary": {}, "secondary": {}, "tertiary": {},
		"unclassified": {}, "minor": {}, "residential": {}, "service": {},
	}
	trainRailway = map[string]struct{}{
		"rail": {}, "light_rail": {}, "subway": {},
	}
	pedestrianHighway = map[string]struct{}{
		"footway": {}, "steps": {},
	}
	horseHighway = map[string]struct{}{
		"track": {}, "unclassified": {}, "bridleway": {},
	}
)

// Access. which transport modes may use a way.
type Access struct {
	Cycle bool
	Car   bool
	Train bool
	Foot  bool
	Horse bool
}

func contains(set map[string]struct{}, class string) bool {
	_, ok := set[class]
	return ok
}

// WayAccess. capabilities of a way from its canonical highway and railway classes.
func WayAccess(highway, railway string) Access {
	a := Access{
		Cycle: contains(cycleHighway, highway),
		Car:   contains(carHighway, highway),
		Train: contains(trainRailway, railway),
		Horse: contains(horseHighway, highway),
	}
	a.Foot = a.Cycle || contains(pedestrianHighway, highway)
	return a
}

func (a Access) Allows(mode pkg.TransportMode) bool {
	switch mode {
	case pkg.CYCLE:
		return a.Cycle
	case pkg.CAR:
		return a.Car
	case pkg.TRAIN:
		return a.Train
	case pkg.FOOT:
		return a.Foot
	case pkg.HORSE:
		return a.Horse
	default:
		return false
	}
}

// IsOneWay. oneway=yes|true|1. other values, including -1, leave the way reversible.
func IsOneWay(tags map[string]string) bool {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// Reversible. whether mode may travel the way against its node order. pedestrians always can.
func Reversible(tags map[string]string, mode pkg.TransportMode) bool {
	return mode == pkg.FOOT || !IsOneWay(tags)
}
