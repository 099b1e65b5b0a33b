package pkg

import "fmt"

const (
	// all primary downloads are done at this zoom level
	DOWNLOAD_ZOOM = 15
	MAX_ZOOM      = 25

	DEFAULT_OSM_API_URL = "https://api.openstreetmap.org"
	CACHE_FILE_NAME     = "data.osm"

	// used when the weight table has no entry for (mode, class)
	DEFAULT_WEIGHT float64 = 1.0
)

const (
	DEBUG = false
)

// enum of transport_mode
type TransportMode uint8

const (
	CYCLE TransportMode = iota
	CAR
	TRAIN
	FOOT
	HORSE
)

var transportModeNames = [...]string{"cycle", "car", "train", "foot", "horse"}

func (m TransportMode) String() string {
	if int(m) < len(transportModeNames) {
		return transportModeNames[m]
	}
	return fmt.Sprintf("TransportMode(%d)", uint8(m))
}

// ParseTransportMode. map a profile name to its TransportMode.
func ParseTransportMode(name string) (TransportMode, error) {
	for i, n := range transportModeNames {
		if n == name {
			return TransportMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transport mode %q", name)
}

func AllTransportModes() []TransportMode {
	return []TransportMode{CYCLE, CAR, TRAIN, FOOT, HORSE}
}
