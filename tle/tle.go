// Package tle parses NORAD two-line element sets into element records and
// exposes accessors for the fixed-column numeric fields the tracker needs.
package tle

import (
	"strconv"
	"strings"
)

// Leading field markers for the two element lines. A line that does not
// start with its marker is not an element line.
const (
	line1Marker = "1 "
	line2Marker = "2 "
)

// ElementRecord is one object's orbital element set: a name line plus two
// fixed-column element lines. Immutable once parsed.
type ElementRecord struct {
	Name  string
	Line1 string
	Line2 string
}

// Valid reports whether the record has a non-empty name and both element
// lines begin with their expected markers.
func (r ElementRecord) Valid() bool {
	return r.Name != "" &&
		strings.HasPrefix(r.Line1, line1Marker) &&
		strings.HasPrefix(r.Line2, line2Marker)
}

// Key returns the full record content, used as a memoization key for
// derived metadata. Two records with identical content classify identically.
func (r ElementRecord) Key() string {
	return r.Name + "\n" + r.Line1 + "\n" + r.Line2
}

// CatalogNumber returns the NORAD catalog number field (line 1, columns
// 3-7), trimmed. Empty when the line is too short.
func (r ElementRecord) CatalogNumber() string {
	return column(r.Line1, 2, 7)
}

// IntlDesignator returns the international designator field (line 1,
// columns 10-17), trimmed.
func (r ElementRecord) IntlDesignator() string {
	return column(r.Line1, 9, 17)
}

// Inclination returns the orbital inclination in degrees (line 2, columns
// 9-16).
func (r ElementRecord) Inclination() (float64, error) {
	return strconv.ParseFloat(column(r.Line2, 8, 16), 64)
}

// MeanMotion returns the mean motion in revolutions per day (line 2,
// columns 53-63).
func (r ElementRecord) MeanMotion() (float64, error) {
	return strconv.ParseFloat(column(r.Line2, 52, 63), 64)
}

// column extracts the half-open byte range [start, end) from a fixed-width
// line, trimming surrounding whitespace. Short lines yield "".
func column(line string, start, end int) string {
	if len(line) < end {
		return ""
	}
	return strings.TrimSpace(line[start:end])
}

// Parse groups consecutive non-empty lines of a catalog body into
// (name, line1, line2) triples. A triple is accepted only when the name is
// non-empty and both element lines carry their leading markers; malformed
// triples are skipped silently rather than failing the whole body.
//
// Parsing is idempotent on its own accepted output: re-serializing the
// accepted records and parsing again yields the same records.
func Parse(body string) []ElementRecord {
	lines := make([]string, 0, 64)
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	records := make([]ElementRecord, 0, len(lines)/3)
	for i := 0; i+2 < len(lines); i += 3 {
		rec := ElementRecord{
			Name:  strings.TrimSpace(lines[i]),
			Line1: lines[i+1],
			Line2: lines[i+2],
		}
		if rec.Valid() {
			records = append(records, rec)
		}
	}
	return records
}
