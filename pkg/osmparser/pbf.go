package osmparser

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// ParsePBF. stream an .osm.pbf extract. the pbf decoder has already typed every
// attribute, so the returned warnings stay empty unless a way carries no nodes.
func (p *Parser) ParsePBF(ctx context.Context, r io.Reader, handle func(Record) error) (*Warnings, error) {
	// must not be parallel, records are handed out in file order
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()

	warnings := NewWarnings()
	for scanner.Scan() {
		rec, ok := p.RecordFromOSM(scanner.Object())
		if !ok {
			continue
		}
		if rec.Type == WAY && len(rec.NodeRefs) == 0 {
			warnings.Add(&DecodeError{Kind: WarningBadNodeRef, Element: rec.Type.String(), ID: rec.Attrs.ID, Attr: "nd"})
		}
		if err := handle(rec); err != nil {
			return warnings, err
		}
	}

	if err := scanner.Err(); err != nil {
		return warnings, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return warnings, nil
}

// RecordFromOSM. convert a decoded osm object. changesets, notes and users are not records.
func (p *Parser) RecordFromOSM(o osm.Object) (Record, bool) {
	switch v := o.(type) {
	case *osm.Node:
		rec := Record{Type: POINT, Tags: v.Tags.Map()}
		rec.Attrs = Attributes{
			ID:        int64(v.ID),
			Lat:       v.Lat,
			Lon:       v.Lon,
			Version:   int64(v.Version),
			Changeset: int64(v.ChangesetID),
			UserID:    int64(v.UserID),
			User:      v.User,
			Visible:   v.Visible,
			Timestamp: Timestamp{Time: v.Timestamp},
		}
		rec.Attrs.markPresent("id", "lat", "lon", "version", "changeset", "uid", "user", "visible", "timestamp")
		return rec, true

	case *osm.Way:
		rec := Record{Type: WAY, Tags: v.Tags.Map()}
		rec.Attrs = metadataAttributes(int64(v.ID), v.Version, int64(v.ChangesetID), int64(v.UserID), v.User, v.Visible)
		rec.Attrs.Timestamp = Timestamp{Time: v.Timestamp}
		rec.NodeRefs = make([]int64, 0, len(v.Nodes))
		for _, wn := range v.Nodes {
			rec.NodeRefs = append(rec.NodeRefs, int64(wn.ID))
		}
		return rec, true

	case *osm.Relation:
		rec := Record{Type: RELATION, Tags: v.Tags.Map()}
		rec.Attrs = metadataAttributes(int64(v.ID), v.Version, int64(v.ChangesetID), int64(v.UserID), v.User, v.Visible)
		rec.Attrs.Timestamp = Timestamp{Time: v.Timestamp}
		if p.relationMembers {
			for _, m := range v.Members {
				rec.Members = append(rec.Members, Member{Type: string(m.Type), Ref: m.Ref, Role: m.Role})
			}
		}
		return rec, true
	}
	return Record{}, false
}

func metadataAttributes(id int64, version int, changeset, uid int64, user string, visible bool) Attributes {
	a := Attributes{
		ID:        id,
		Version:   int64(version),
		Changeset: changeset,
		UserID:    uid,
		User:      user,
		Visible:   visible,
	}
	a.markPresent("id", "version", "changeset", "uid", "user", "visible", "timestamp")
	return a
}

func (a *Attributes) markPresent(keys ...string) {
	if a.present == nil {
		a.present = make(map[string]struct{}, len(keys))
	}
	for _, k := range keys {
		a.present[k] = struct{}{}
	}
}
