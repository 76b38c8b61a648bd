// Package genes derives drawable gene records from GFF3 annotations.
package genes

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/inodb/genome-track/internal/gff"
)

// Feature types drawn on the gene track.
const (
	TypeCDS          = "CDS"
	TypeRepeatRegion = "repeat_region"
	TypeNcRNA        = "ncRNA"
	TypeRRNA         = "rRNA"
	TypeTRNA         = "tRNA"
)

// RepeatLabel is the gene name given to every repeat region.
const RepeatLabel = "REP"

var geneTypes = map[string]bool{
	TypeCDS:          true,
	TypeRepeatRegion: true,
	TypeNcRNA:        true,
	TypeRRNA:         true,
	TypeTRNA:         true,
}

// Gene is an annotation record prepared for drawing.
// Start is always the 5' end: for reverse-strand genes Start > End.
type Gene struct {
	SeqID       string
	Type        string
	Strand      string
	Start       int64
	End         int64
	Left        int64 // Lower genomic coordinate
	Right       int64 // Upper genomic coordinate
	Gene        string
	LocusTag    string
	GeneOrLocus string
	Product     string
}

// IsRepeat reports whether the gene is a repeat region.
func (g *Gene) IsRepeat() bool {
	return g.Type == TypeRepeatRegion
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == "+"
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == "-"
}

// Midpoint returns the geometric center of the gene.
func (g *Gene) Midpoint() float64 {
	return float64(g.Left+g.Right) / 2
}

// Extract returns the drawable genes of a table in file order.
func Extract(t *gff.Table) []Gene {
	result := []Gene{}
	for i := range t.Records {
		r := &t.Records[i]
		if !geneTypes[r.Type] {
			continue
		}

		g := Gene{
			SeqID:  r.SeqID,
			Type:   r.Type,
			Strand: r.Strand,
			Start:  r.Start,
			End:    r.End,
			Left:   r.Left,
			Right:  r.Right,
		}

		switch r.Strand {
		case "+":
			g.Start, g.End = r.Left, r.Right
		case "-":
			g.Start, g.End = r.Right, r.Left
		}

		g.Gene, _ = ExtractAttribute(r.Attributes, "gene")
		g.LocusTag, _ = ExtractAttribute(r.Attributes, "locus_tag")
		g.Product, _ = ExtractAttribute(r.Attributes, "product")

		g.GeneOrLocus = g.Gene
		if g.GeneOrLocus == "" {
			g.GeneOrLocus = g.LocusTag
		}

		if g.IsRepeat() {
			g.Gene = RepeatLabel
		}

		result = append(result, g)
	}
	return result
}

// ExtractAttribute returns the value of key in a GFF3 attribute string.
//
// Only the first character of the key is matched case-insensitively, so
// "gene" matches "gene=" and "Gene=" but not "GENE=". The first match wins
// and an empty value counts as absent.
func ExtractAttribute(attrs, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, part := range strings.Split(attrs, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || v == "" {
			continue
		}
		if keyMatches(strings.TrimLeft(k, " "), key) {
			return v, true
		}
	}
	return "", false
}

// keyMatches compares the first rune case-insensitively and the rest exactly.
func keyMatches(k, key string) bool {
	kr, kn := utf8.DecodeRuneInString(k)
	wr, wn := utf8.DecodeRuneInString(key)
	if kn == 0 || unicode.ToLower(kr) != unicode.ToLower(wr) {
		return false
	}
	return k[kn:] == key[wn:]
}
