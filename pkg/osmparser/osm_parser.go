package osmparser

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"go.uber.org/zap"
)

var ErrMalformedDocument = errors.New("malformed osm document")

// Parser. streams an osm extract into records, one element at a time.
type Parser struct {
	log             *zap.Logger
	relationMembers bool
}

type Option func(*Parser)

func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		p.log = logger.OrNop(log)
	}
}

// WithRelationMembers. decode <member> children of relations. off by default,
// relations then carry tags and attributes only.
func WithRelationMembers(enabled bool) Option {
	return func(p *Parser) {
		p.relationMembers = enabled
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile. parse an extract on disk. .osm.pbf is read with the pbf decoder,
// .bz2 is decompressed on the fly, anything else is osm xml.
func (p *Parser) ParseFile(ctx context.Context, path string, handle func(Record) error) (*Warnings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var warnings *Warnings
	switch {
	case strings.HasSuffix(path, ".pbf"):
		warnings, err = p.ParsePBF(ctx, f, handle)
	case strings.HasSuffix(path, ".bz2"):
		bz, bzErr := bzip2.NewReader(f, nil)
		if bzErr != nil {
			return nil, fmt.Errorf("open bzip2 stream %s: %w", path, bzErr)
		}
		defer bz.Close()
		warnings, err = p.Parse(bz, handle)
	default:
		warnings, err = p.Parse(bufio.NewReader(f), handle)
	}

	if warnings != nil {
		warnings.LogAll(p.log, path)
	}
	return warnings, err
}

// ParseAll. collect every record of r in document order.
func (p *Parser) ParseAll(r io.Reader) ([]Record, *Warnings, error) {
	records := make([]Record, 0)
	warnings, err := p.Parse(r, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	return records, warnings, err
}

// Parse. stream osm xml from r, calling handle once per complete node, way or relation.
// elements missing a required attribute are dropped and reported in the returned warnings.
// an error from handle stops the parse and is returned as is.
func (p *Parser) Parse(r io.Reader, handle func(Record) error) (*Warnings, error) {
	var (
		dec      = xml.NewDecoder(r)
		warnings = NewWarnings()
		cur      *Record
		keep     bool
		depth    int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return warnings, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if cur == nil {
				typ, ok := recordTypeOf(t.Name.Local)
				if !ok {
					continue
				}
				cur = &Record{Type: typ, Tags: make(map[string]string)}
				keep = p.decodeAttributes(cur, t.Attr, warnings)
				depth = 1
				continue
			}

			depth++
			if depth == 2 {
				p.decodeChild(cur, t, warnings)
			}

		case xml.EndElement:
			if cur == nil {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}

			rec := *cur
			cur = nil
			if !keep {
				continue
			}
			if err := handle(rec); err != nil {
				return warnings, err
			}
		}
	}

	if cur != nil {
		return warnings, fmt.Errorf("%w: unexpected end of document inside %s %d", ErrMalformedDocument,
			cur.Type, cur.Attrs.ID)
	}
	return warnings, nil
}

func recordTypeOf(name string) (RecordType, bool) {
	switch name {
	case "node":
		return POINT, true
	case "way":
		return WAY, true
	case "relation":
		return RELATION, true
	default:
		return 0, false
	}
}

// decodeAttributes. returns false when the record has to be dropped.
func (p *Parser) decodeAttributes(rec *Record, attrs []xml.Attr, warnings *Warnings) bool {
	for _, attr := range attrs {
		if err := rec.Attrs.set(attr.Name.Local, attr.Value); err != nil {
			warnings.Add(&DecodeError{
				Kind:    WarningBadAttribute,
				Element: rec.Type.String(),
				ID:      rec.Attrs.ID,
				Attr:    attr.Name.Local,
				Value:   attr.Value,
				Err:     err,
			})
		}
	}

	for _, key := range requiredAttrs(rec.Type) {
		if !rec.Attrs.Has(key) {
			warnings.Add(&DecodeError{
				Kind:    WarningMissingRequired,
				Element: rec.Type.String(),
				ID:      rec.Attrs.ID,
				Attr:    key,
			})
			return false
		}
	}
	return true
}

func (p *Parser) decodeChild(rec *Record, el xml.StartElement, warnings *Warnings) {
	switch el.Name.Local {
	case "tag":
		k, okK := findAttr(el.Attr, "k")
		v, okV := findAttr(el.Attr, "v")
		if !okK || !okV {
			warnings.Add(&DecodeError{Kind: WarningBadTag, Element: rec.Type.String(), ID: rec.Attrs.ID, Attr: "k/v"})
			return
		}
		rec.Tags[k] = v

	case "nd":
		if rec.Type != WAY {
			return
		}
		raw, _ := findAttr(el.Attr, "ref")
		ref, err := parseIntAttr(raw)
		if err != nil {
			warnings.Add(&DecodeError{Kind: WarningBadNodeRef, Element: rec.Type.String(), ID: rec.Attrs.ID,
				Attr: "ref", Value: raw, Err: err})
			return
		}
		rec.NodeRefs = append(rec.NodeRefs, ref)

	case "member":
		if rec.Type != RELATION || !p.relationMembers {
			return
		}
		var ma Attributes
		for _, attr := range el.Attr {
			if err := ma.set(attr.Name.Local, attr.Value); err != nil {
				warnings.Add(&DecodeError{Kind: WarningBadMember, Element: rec.Type.String(), ID: rec.Attrs.ID,
					Attr: attr.Name.Local, Value: attr.Value, Err: err})
				return
			}
		}
		if !ma.Has("ref") {
			warnings.Add(&DecodeError{Kind: WarningBadMember, Element: rec.Type.String(), ID: rec.Attrs.ID, Attr: "ref"})
			return
		}
		rec.Members = append(rec.Members, Member{
			Type: ma.Other["type"],
			Ref:  ma.Ref,
			Role: ma.Other["role"],
		})
	}
}

func findAttr(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}
