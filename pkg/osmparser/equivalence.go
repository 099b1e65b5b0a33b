package osmparser

// raw highway/railway values that route like a more common class
var equivalentTags = map[string]string{
	"primary_link":   "primary",
	"trunk":          "primary",
	"trunk_link":     "primary",
	"secondary_link": "secondary",
	"tertiary":       "secondary",
	"tertiary_link":  "secondary",
	"residential":    "unclassified",
	"minor":          "unclassified",
	"steps":          "footway",
	"driveway":       "service",
	"pedestrian":     "footway",
	"bridleway":      "cycleway",
	"track":          "cycleway",
	"arcade":         "footway",
	"canal":          "river",
	"riverbank":      "river",
	"lake":           "river",
	"light_rail":     "railway",
}

// Equivalent. canonical class of a raw tag value. unknown values pass through unchanged.
func Equivalent(tag string) string {
	if class, ok := equivalentTags[tag]; ok {
		return class
	}
	return tag
}
