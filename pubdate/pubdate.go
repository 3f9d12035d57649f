// Package pubdate normalizes feed publication dates into a local wall-clock
// string.
package pubdate

import (
	"fmt"
	"strings"
	"time"
)

// DefaultZone is the zone published dates are rendered in.
const DefaultZone = "Europe/Berlin"

// Layout is the rendered form of a normalized date.
const Layout = "2006-01-02 15:04:05"

// layouts are the RFC 822 / 1123 variants accepted after zone rewriting,
// with the offset written as +hhmm or +hh:mm.
var layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04:05 -07:00",
	"Mon, 2 Jan 2006 15:04 -07:00",
	"2 Jan 2006 15:04:05 -07:00",
	"2 Jan 2006 15:04 -07:00",
}

// namedZones maps the RFC 822 zone names to numeric offsets.
var namedZones = map[string]string{
	"GMT": "+0000",
	"UT":  "+0000",
	"UTC": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// Normalizer renders raw feed dates in a fixed location.
type Normalizer struct {
	Location *time.Location
}

// New creates a normalizer for the named IANA zone.
func New(zone string) (*Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", zone, err)
	}
	return &Normalizer{Location: loc}, nil
}

// Normalize converts an RFC 822 style date into Layout in the normalizer's
// location. Unparsable input falls back to the raw string minus its last
// whitespace-delimited token, or the raw string itself when it has fewer
// than two tokens. It never fails.
func (n *Normalizer) Normalize(raw string) string {
	if t, ok := Parse(raw); ok {
		return t.In(n.location()).Format(Layout)
	}

	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return raw
	}
	return strings.Join(fields[:len(fields)-1], " ")
}

func (n *Normalizer) location() *time.Location {
	if n == nil || n.Location == nil {
		return time.UTC
	}
	return n.Location
}

// Parse reads an RFC 822 / 1123 date with a numeric or named zone.
func Parse(raw string) (time.Time, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), "GMT", "+0000")
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	if offset, ok := namedZones[strings.ToUpper(fields[len(fields)-1])]; ok {
		fields[len(fields)-1] = offset
	}
	value = strings.Join(fields, " ")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
