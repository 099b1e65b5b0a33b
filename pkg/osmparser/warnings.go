package osmparser

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// warning kinds
const (
	WarningBadAttribute    = "bad_attribute"
	WarningMissingRequired = "missing_required_attribute"
	WarningBadTag          = "bad_tag"
	WarningBadNodeRef      = "bad_node_ref"
	WarningBadMember       = "bad_member"
)

const maxWarningExamples = 3

type warningInfo struct {
	count    int
	examples []*DecodeError
}

// Warnings. recoverable decode failures seen during one parse, grouped by kind.
type Warnings struct {
	warnings map[string]*warningInfo
	total    int
}

func NewWarnings() *Warnings {
	return &Warnings{
		warnings: make(map[string]*warningInfo),
	}
}

func (w *Warnings) Add(err *DecodeError) {
	info, ok := w.warnings[err.Kind]
	if !ok {
		info = &warningInfo{examples: make([]*DecodeError, 0, maxWarningExamples)}
		w.warnings[err.Kind] = info
	}
	info.count++
	w.total++

	if len(info.examples) < maxWarningExamples {
		info.examples = append(info.examples, err)
	}
}

func (w *Warnings) Len() int {
	return w.total
}

func (w *Warnings) Count(kind string) int {
	if info, ok := w.warnings[kind]; ok {
		return info.count
	}
	return 0
}

// Examples. up to three decode errors of a kind, in the order they were seen.
func (w *Warnings) Examples(kind string) []*DecodeError {
	if info, ok := w.warnings[kind]; ok {
		return info.examples
	}
	return nil
}

func (w *Warnings) Kinds() []string {
	kinds := make([]string, 0, len(w.warnings))
	for k := range w.warnings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// LogAll. one log line per warning kind.
func (w *Warnings) LogAll(log *zap.Logger, source string) {
	for _, kind := range w.Kinds() {
		info := w.warnings[kind]
		examples := make([]string, 0, len(info.examples))
		for _, e := range info.examples {
			examples = append(examples, e.Error())
		}
		log.Warn("skipped malformed osm data",
			zap.String("source", source),
			zap.String("kind", kind),
			zap.Int("count", info.count),
			zap.String("examples", strings.Join(examples, "; ")))
	}
}
