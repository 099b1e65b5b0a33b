package osmparser

import (
	"fmt"
	"strconv"
	"time"
)

// accepted layouts of date attributes, tried in order
var timestampLayouts = []string{
	"2006-01-02 15:04:05 UTC",
	"2006-01-02T15:04:05Z",
}

// DecodeError. an attribute or child of an element that could not be decoded.
type DecodeError struct {
	Kind    string
	Element string
	ID      int64
	Attr    string
	Value   string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %d: attribute %s=%q: %v", e.Element, e.ID, e.Attr, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %d: %s", e.Element, e.ID, e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func parseIntAttr(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}

func parseFloatAttr(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

// parseBoolAttr. true iff the literal is "true".
func parseBoolAttr(value string) bool {
	return value == "true"
}

// parseTimestamp. falls back to the raw string when no layout matches.
func parseTimestamp(value string) Timestamp {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}
		}
	}
	return Timestamp{Raw: value}
}

// set. coerce one attribute into a. the same rules apply to every element type.
func (a *Attributes) set(key, value string) error {
	var err error
	switch key {
	case "id":
		a.ID, err = parseIntAttr(value)
	case "version":
		a.Version, err = parseIntAttr(value)
	case "changeset":
		a.Changeset, err = parseIntAttr(value)
	case "uid":
		a.UserID, err = parseIntAttr(value)
	case "ref":
		a.Ref, err = parseIntAttr(value)
	case "comments_count":
		a.CommentsCount, err = parseIntAttr(value)
	case "lat":
		a.Lat, err = parseFloatAttr(value)
	case "lon":
		a.Lon, err = parseFloatAttr(value)
	case "open":
		a.Open = parseBoolAttr(value)
	case "visible":
		a.Visible = parseBoolAttr(value)
	case "timestamp":
		a.Timestamp = parseTimestamp(value)
	case "created_at":
		a.CreatedAt = parseTimestamp(value)
	case "closed_at":
		a.ClosedAt = parseTimestamp(value)
	case "date":
		a.Date = parseTimestamp(value)
	case "user":
		a.User = value
	default:
		if a.Other == nil {
			a.Other = make(map[string]string)
		}
		a.Other[key] = value
	}
	if err != nil {
		return err
	}

	if a.present == nil {
		a.present = make(map[string]struct{})
	}
	a.present[key] = struct{}{}
	return nil
}

// requiredAttrs. a record missing any of these is dropped.
func requiredAttrs(t RecordType) []string {
	switch t {
	case POINT:
		return []string{"id", "lat", "lon"}
	default:
		return []string{"id"}
	}
}
