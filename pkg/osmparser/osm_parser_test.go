package osmparser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extractXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <bounds minlat="0" minlon="0" maxlat="1" maxlon="1"/>
 <node id="1" lat="0.5" lon="0.25" version="3" changeset="99" uid="7" user="alice" visible="true" timestamp="2020-01-02T03:04:05Z">
  <tag k="highway" v="traffic_signals"/>
 </node>
 <node id="2" lat="0.6" lon="0.35" visible="false" timestamp="2019-05-06 07:08:09 UTC"/>
 <node id="3" lat="0.7" lon="0.45" timestamp="yesterday" open="yes"/>
 <node id="4" lon="0.1"/>
 <node id="5" lat="north" lon="0.1"/>
 <way id="10" version="1">
  <nd ref="1"/>
  <nd ref="2"/>
  <nd ref="x"/>
  <nd ref="3"/>
  <tag k="highway" v="residential"/>
  <tag k="oneway" v="yes"/>
  <tag k="name"/>
 </way>
 <way visible="true">
  <nd ref="1"/>
 </way>
 <relation id="20">
  <member type="way" ref="10" role="outer"/>
  <member type="node" ref="1" role=""/>
  <tag k="type" v="multipolygon"/>
 </relation>
</osm>`

func TestParseRecords(t *testing.T) {
	p := NewParser()
	records, warnings, err := p.ParseAll(strings.NewReader(extractXML))
	require.NoError(t, err)

	// node 4 misses lat, node 5 has an undecodable lat, the second way has no id
	require.Len(t, records, 5)
	assert.Equal(t, []RecordType{POINT, POINT, POINT, WAY, RELATION},
		[]RecordType{records[0].Type, records[1].Type, records[2].Type, records[3].Type, records[4].Type})

	n1 := records[0]
	assert.Equal(t, int64(1), n1.Attrs.ID)
	assert.Equal(t, 0.5, n1.Attrs.Lat)
	assert.Equal(t, 0.25, n1.Attrs.Lon)
	assert.Equal(t, int64(3), n1.Attrs.Version)
	assert.Equal(t, int64(99), n1.Attrs.Changeset)
	assert.Equal(t, int64(7), n1.Attrs.UserID)
	assert.Equal(t, "alice", n1.Attrs.User)
	assert.True(t, n1.Attrs.Visible)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), n1.Attrs.Timestamp.Time)
	assert.Equal(t, map[string]string{"highway": "traffic_signals"}, n1.Tags)

	n2 := records[1]
	assert.False(t, n2.Attrs.Visible)
	assert.Equal(t, time.Date(2019, 5, 6, 7, 8, 9, 0, time.UTC), n2.Attrs.Timestamp.Time)

	n3 := records[2]
	assert.False(t, n3.Attrs.Timestamp.Parsed())
	assert.Equal(t, "yesterday", n3.Attrs.Timestamp.Raw)
	// only the literal "true" is true
	assert.False(t, n3.Attrs.Open)

	way := records[3]
	assert.Equal(t, int64(10), way.Attrs.ID)
	assert.Equal(t, []int64{1, 2, 3}, way.NodeRefs)
	assert.Equal(t, map[string]string{"highway": "residential", "oneway": "yes"}, way.Tags)
	assert.Equal(t, NewWay(10, way.Tags, []int64{1, 2, 3}), way.Way())

	rel := records[4]
	assert.Equal(t, int64(20), rel.Attrs.ID)
	assert.Equal(t, "multipolygon", rel.Tags["type"])
	assert.Empty(t, rel.Members)

	assert.Equal(t, 1, warnings.Count(WarningBadAttribute))
	assert.Equal(t, 1, warnings.Count(WarningBadNodeRef))
	assert.Equal(t, 1, warnings.Count(WarningBadTag))
	assert.Equal(t, 3, warnings.Count(WarningMissingRequired))
	assert.Len(t, warnings.Examples(WarningMissingRequired), 3)
}

func TestParseRelationMembers(t *testing.T) {
	p := NewParser(WithRelationMembers(true))
	records, _, err := p.ParseAll(strings.NewReader(extractXML))
	require.NoError(t, err)

	rel := records[len(records)-1]
	require.Equal(t, RELATION, rel.Type)
	assert.Equal(t, []Member{
		{Type: "way", Ref: 10, Role: "outer"},
		{Type: "node", Ref: 1, Role: ""},
	}, rel.Members)
}

func TestParseStopsOnHandlerError(t *testing.T) {
	stop := errors.New("stop")
	seen := 0
	_, err := NewParser().Parse(strings.NewReader(extractXML), func(r Record) error {
		seen++
		if r.Type == WAY {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 4, seen)
}

func TestParseMalformedDocument(t *testing.T) {
	doc := `<osm><node id="1" lat="1" lon="1"/><way id="2"><nd ref="1"/>`
	records := 0
	_, err := NewParser().Parse(strings.NewReader(doc), func(Record) error {
		records++
		return nil
	})
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.Equal(t, 1, records)
}

func TestParseFileBzip2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.osm.bz2")
	f, err := os.Create(path)
	require.NoError(t, err)
	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	require.NoError(t, err)
	_, err = bz.Write([]byte(extractXML))
	require.NoError(t, err)
	require.NoError(t, bz.Close())
	require.NoError(t, f.Close())

	count := 0
	warnings, err := NewParser().ParseFile(context.Background(), path, func(Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Positive(t, warnings.Len())
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name    string
		value   string
		want    time.Time
		wantRaw string
	}{
		{name: "iso8601", value: "2021-12-31T23:59:59Z", want: time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC)},
		{name: "space delimited utc", value: "2021-12-31 23:59:59 UTC", want: time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC)},
		{name: "unknown layout", value: "31/12/2021", wantRaw: "31/12/2021"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.value)
			assert.Equal(t, tt.want, got.Time)
			assert.Equal(t, tt.wantRaw, got.Raw)
		})
	}
}

func TestRecordFromOSM(t *testing.T) {
	p := NewParser(WithRelationMembers(true))
	ts := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)

	rec, ok := p.RecordFromOSM(&osm.Node{ID: 5, Lat: 1.5, Lon: 2.5, Version: 2, Timestamp: ts,
		Tags: osm.Tags{{Key: "amenity", Value: "cafe"}}})
	require.True(t, ok)
	assert.Equal(t, POINT, rec.Type)
	assert.Equal(t, NewPoint(5, 1.5, 2.5, map[string]string{"amenity": "cafe"}), rec.Point())
	assert.True(t, rec.Attrs.Has("lat"))
	assert.Equal(t, ts, rec.Attrs.Timestamp.Time)

	rec, ok = p.RecordFromOSM(&osm.Way{ID: 8, Nodes: osm.WayNodes{{ID: 5}, {ID: 6}},
		Tags: osm.Tags{{Key: "highway", Value: "primary"}}})
	require.True(t, ok)
	assert.Equal(t, NewWay(8, map[string]string{"highway": "primary"}, []int64{5, 6}), rec.Way())

	rec, ok = p.RecordFromOSM(&osm.Relation{ID: 9, Members: osm.Members{{Type: osm.TypeWay, Ref: 8, Role: "from"}}})
	require.True(t, ok)
	assert.Equal(t, []Member{{Type: "way", Ref: 8, Role: "from"}}, rec.Members)

	_, ok = p.RecordFromOSM(&osm.Changeset{ID: 1})
	assert.False(t, ok)
}
