package costfunction

import (
	"fmt"
	"os"

	"github.com/lintang-b-s/tilegraph/pkg"
	"gopkg.in/yaml.v3"
)

// WeightProvider. edge weight for a way of the given canonical class travelled in mode.
// weights are always positive.
type WeightProvider interface {
	GetWeight(mode pkg.TransportMode, class string) float64
}

// RoutingWeights. table of class -> mode -> weight. classes or modes missing from the
// table get pkg.DEFAULT_WEIGHT.
type RoutingWeights struct {
	table map[string]map[pkg.TransportMode]float64
}

func defaultWeightTable() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"motorway":     {"car": 10},
		"trunk":        {"car": 10, "cycle": 0.05},
		"primary":      {"cycle": 0.3, "car": 2, "foot": 1, "horse": 0.1},
		"secondary":    {"cycle": 1, "car": 1.5, "foot": 1, "horse": 0.2},
		"tertiary":     {"cycle": 1, "car": 1, "foot": 1, "horse": 0.3},
		"unclassified": {"cycle": 1, "car": 1, "foot": 1, "horse": 1},
		"minor":        {"cycle": 1, "car": 1, "foot": 1, "horse": 1},
		"cycleway":     {"cycle": 3, "foot": 0.2},
		"residential":  {"cycle": 3, "car": 0.7, "foot": 1, "horse": 1},
		"track":        {"cycle": 1, "car": 1, "foot": 1, "horse": 1},
		"service":      {"cycle": 1, "car": 1, "foot": 1, "horse": 1},
		"bridleway":    {"cycle": 0.8, "foot": 1, "horse": 10},
		"footway":      {"cycle": 0.2, "foot": 1},
		"steps":        {"foot": 1, "cycle": 0.3},
		"rail":         {"train": 1},
		"light_rail":   {"train": 1},
		"subway":       {"train": 1},
	}
}

func NewRoutingWeights() *RoutingWeights {
	w, err := newRoutingWeights(defaultWeightTable())
	if err != nil {
		panic(err)
	}
	return w
}

func newRoutingWeights(raw map[string]map[string]float64) (*RoutingWeights, error) {
	table := make(map[string]map[pkg.TransportMode]float64, len(raw))
	for class, modes := range raw {
		table[class] = make(map[pkg.TransportMode]float64, len(modes))
		for modeName, weight := range modes {
			mode, err := pkg.ParseTransportMode(modeName)
			if err != nil {
				return nil, fmt.Errorf("weight for class %q: %w", class, err)
			}
			if weight <= 0 {
				return nil, fmt.Errorf("weight for class %q mode %s must be positive, got %v", class, modeName, weight)
			}
			table[class][mode] = weight
		}
	}
	return &RoutingWeights{table: table}, nil
}

// LoadRoutingWeights. read a yaml file of the form
//
//	primary:
//	  car: 2
//	  foot: 1
//
// entries override the defaults class by class.
func LoadRoutingWeights(path string) (*RoutingWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides map[string]map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("decode weights file %s: %w", path, err)
	}

	raw := defaultWeightTable()
	for class, modes := range overrides {
		raw[class] = modes
	}
	return newRoutingWeights(raw)
}

func (w *RoutingWeights) GetWeight(mode pkg.TransportMode, class string) float64 {
	if weight, ok := w.table[class][mode]; ok {
		return weight
	}
	return pkg.DEFAULT_WEIGHT
}
