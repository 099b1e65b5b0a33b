package osmparser

import "time"

// enum of record_type
type RecordType uint8

const (
	POINT RecordType = iota
	WAY
	RELATION
)

func (t RecordType) String() string {
	switch t {
	case POINT:
		return "node"
	case WAY:
		return "way"
	case RELATION:
		return "relation"
	default:
		return "unknown"
	}
}

// Timestamp. a date attribute. Raw holds the original string when it matched neither
// accepted layout, Time is zero then.
type Timestamp struct {
	Time time.Time
	Raw  string
}

func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.Raw == ""
}

func (t Timestamp) Parsed() bool {
	return !t.Time.IsZero()
}

// Attributes. coerced attributes of an element. keys outside the known set are kept verbatim in Other.
type Attributes struct {
	ID            int64
	Lat           float64
	Lon           float64
	Version       int64
	Changeset     int64
	UserID        int64
	Ref           int64
	CommentsCount int64
	User          string
	Visible       bool
	Open          bool
	Timestamp     Timestamp
	CreatedAt     Timestamp
	ClosedAt      Timestamp
	Date          Timestamp
	Other         map[string]string

	present map[string]struct{}
}

// Has. whether attribute key was present and decoded.
func (a *Attributes) Has(key string) bool {
	_, ok := a.present[key]
	return ok
}

type Member struct {
	Type string
	Ref  int64
	Role string
}

// Record. one parsed element. NodeRefs is set for ways, Members for relations.
type Record struct {
	Type     RecordType
	Attrs    Attributes
	Tags     map[string]string
	NodeRefs []int64
	Members  []Member
}

type Point struct {
	ID   int64
	Lat  float64
	Lon  float64
	Tags map[string]string
}

func NewPoint(id int64, lat, lon float64, tags map[string]string) Point {
	return Point{ID: id, Lat: lat, Lon: lon, Tags: tags}
}

type Way struct {
	ID    int64
	Tags  map[string]string
	Nodes []int64
}

func NewWay(id int64, tags map[string]string, nodes []int64) Way {
	return Way{ID: id, Tags: tags, Nodes: nodes}
}

func (r *Record) Point() Point {
	return NewPoint(r.Attrs.ID, r.Attrs.Lat, r.Attrs.Lon, r.Tags)
}

func (r *Record) Way() Way {
	return NewWay(r.Attrs.ID, r.Tags, r.NodeRefs)
}
