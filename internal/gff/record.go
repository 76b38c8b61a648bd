// Package gff provides GFF3 annotation loading functionality.
package gff

import "strings"

// Record represents one feature line of a GFF3 file.
type Record struct {
	SeqID      string // Landmark (column 1)
	Source     string // Source (column 2)
	Type       string // Feature type, e.g. CDS or repeat_region
	Start      int64  // Start position (1-based)
	End        int64  // End position (1-based, inclusive)
	Score      string // Score, "." if absent
	Strand     string // "+", "-", "." or "?"
	Phase      string // CDS phase, "." if absent
	Attributes string // Raw attribute column: key=value;key=value
	Left       int64  // Copy of Start taken at load time
	Right      int64  // Copy of End taken at load time
}

// Overlaps reports whether the record overlaps the half-open window (start, end).
func (r *Record) Overlaps(b Bounds) bool {
	return r.Start < b.End && r.End > b.Start
}

// AttributeMap expands the attribute column into a map.
// Keys are kept verbatim. When a key repeats, the first value wins.
func (r *Record) AttributeMap() map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(r.Attributes, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if _, seen := attrs[key]; !seen {
			attrs[key] = value
		}
	}
	return attrs
}

// Bounds is a genomic window used to filter records.
type Bounds struct {
	Start int64
	End   int64
}

// SequenceRegion is a ##sequence-region pragma.
type SequenceRegion struct {
	SeqID string
	Start int64
	End   int64
}

// Table holds the records of a GFF3 file in file order.
type Table struct {
	Version         string
	SequenceRegions map[string]SequenceRegion
	Records         []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Span returns the smallest window covering every record.
// ok is false for an empty table.
func (t *Table) Span() (b Bounds, ok bool) {
	for i, r := range t.Records {
		if i == 0 {
			b = Bounds{Start: r.Start, End: r.End}
			continue
		}
		b.Start = min(b.Start, r.Start)
		b.End = max(b.End, r.End)
	}
	return b, len(t.Records) > 0
}
