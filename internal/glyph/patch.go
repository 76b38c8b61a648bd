// Package glyph turns genes into the polygon shapes drawn on the gene track.
package glyph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/inodb/genome-track/internal/genes"
)

// Track geometry in plot units.
var (
	TrackRange = Range{Min: -2, Max: 2}    // Full vertical range of the plot
	GeneRange  = Range{Min: -1.5, Max: -1} // Arrow band
)

// ArrowHeadLength is the arrowhead length in genomic units.
const ArrowHeadLength = 100

// Glyph colors.
const (
	ColorForward = "orange"
	ColorReverse = "purple"
	ColorRepeat  = "grey"
)

// ErrLengthMismatch is returned by Validate when parallel arrays disagree in length.
var ErrLengthMismatch = errors.New("patch arrays have different lengths")

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Mid returns the center of the range.
func (r Range) Mid() float64 {
	return (r.Max + r.Min) / 2
}

// Shape is one drawable polygon with its hover metadata.
type Shape struct {
	XS        []int64
	YS        []float64
	Pos       float64
	Name      string
	HoverName string
	Gene      string
	LocusTag  string
	Product   string
	Color     string
}

// Patches holds shapes as parallel arrays, one entry per shape.
type Patches struct {
	XS         [][]int64   `json:"xs"`
	YS         [][]float64 `json:"ys"`
	Pos        []float64   `json:"pos"`
	Names      []string    `json:"names"`
	HoverNames []string    `json:"hover_names"`
	Gene       []string    `json:"gene"`
	LocusTag   []string    `json:"locus_tag"`
	Product    []string    `json:"product"`
	Color      []string    `json:"color"`
}

// NewPatches returns an empty patch dictionary with capacity for n shapes.
func NewPatches(n int) Patches {
	return Patches{
		XS:         make([][]int64, 0, n),
		YS:         make([][]float64, 0, n),
		Pos:        make([]float64, 0, n),
		Names:      make([]string, 0, n),
		HoverNames: make([]string, 0, n),
		Gene:       make([]string, 0, n),
		LocusTag:   make([]string, 0, n),
		Product:    make([]string, 0, n),
		Color:      make([]string, 0, n),
	}
}

// Len returns the number of shapes.
func (p *Patches) Len() int {
	return len(p.XS)
}

// Add appends one shape.
func (p *Patches) Add(s Shape) {
	p.XS = append(p.XS, s.XS)
	p.YS = append(p.YS, s.YS)
	p.Pos = append(p.Pos, s.Pos)
	p.Names = append(p.Names, s.Name)
	p.HoverNames = append(p.HoverNames, s.HoverName)
	p.Gene = append(p.Gene, s.Gene)
	p.LocusTag = append(p.LocusTag, s.LocusTag)
	p.Product = append(p.Product, s.Product)
	p.Color = append(p.Color, s.Color)
}

// Shape returns the i-th shape.
func (p *Patches) Shape(i int) Shape {
	return Shape{
		XS:        p.XS[i],
		YS:        p.YS[i],
		Pos:       p.Pos[i],
		Name:      p.Names[i],
		HoverName: p.HoverNames[i],
		Gene:      p.Gene[i],
		LocusTag:  p.LocusTag[i],
		Product:   p.Product[i],
		Color:     p.Color[i],
	}
}

// Shapes returns the row view of the dictionary.
func (p *Patches) Shapes() []Shape {
	shapes := make([]Shape, p.Len())
	for i := range shapes {
		shapes[i] = p.Shape(i)
	}
	return shapes
}

// Validate checks that every parallel array has one entry per shape.
func (p *Patches) Validate() error {
	n := len(p.XS)
	lengths := map[string]int{
		"ys":          len(p.YS),
		"pos":         len(p.Pos),
		"names":       len(p.Names),
		"hover_names": len(p.HoverNames),
		"gene":        len(p.Gene),
		"locus_tag":   len(p.LocusTag),
		"product":     len(p.Product),
		"color":       len(p.Color),
	}
	for key, l := range lengths {
		if l != n {
			return fmt.Errorf("%w: xs has %d, %s has %d", ErrLengthMismatch, n, key, l)
		}
	}
	return nil
}

// Merge concatenates two dictionaries key by key.
func Merge(a, b Patches) Patches {
	out := NewPatches(a.Len() + b.Len())
	for i := range a.Len() {
		out.Add(a.Shape(i))
	}
	for i := range b.Len() {
		out.Add(b.Shape(i))
	}
	return out
}

// ArrowPatches builds arrows for genes: forward-strand genes first, then
// reverse-strand genes. Genes without a strand get no arrow.
func ArrowPatches(gs []genes.Gene) Patches {
	out := NewPatches(len(gs))
	for i := range gs {
		if gs[i].IsForwardStrand() {
			out.Add(arrowShape(&gs[i]))
		}
	}
	for i := range gs {
		if gs[i].IsReverseStrand() {
			out.Add(arrowShape(&gs[i]))
		}
	}
	return out
}

// arrowShape draws a body plus a head of ArrowHeadLength pointing
// away from Start. The head is clipped so it never passes Start.
func arrowShape(g *genes.Gene) Shape {
	yMin, yMax := GeneRange.Min, GeneRange.Max

	var neck int64
	color := ColorForward
	if g.IsReverseStrand() {
		neck = min(g.Start, g.End+ArrowHeadLength)
		color = ColorReverse
	} else {
		neck = max(g.Start, g.End-ArrowHeadLength)
	}

	return Shape{
		XS:        []int64{g.Start, g.Start, neck, g.End, neck},
		YS:        []float64{yMin, yMax, yMax, GeneRange.Mid(), yMin},
		Pos:       g.Midpoint(),
		Name:      g.GeneOrLocus,
		HoverName: g.GeneOrLocus,
		Gene:      g.Gene,
		LocusTag:  g.LocusTag,
		Product:   g.Product,
		Color:     color,
	}
}

// RectPatches builds unlabeled rectangles spanning the full track.
func RectPatches(gs []genes.Gene) Patches {
	yMin, yMax := TrackRange.Min, TrackRange.Max

	out := NewPatches(len(gs))
	for i := range gs {
		g := &gs[i]
		out.Add(Shape{
			XS:        []int64{g.Start, g.Start, g.End, g.End},
			YS:        []float64{yMin, yMax, yMax, yMin},
			Pos:       g.Midpoint(),
			Name:      "",
			HoverName: g.Gene,
			Gene:      g.Gene,
			LocusTag:  g.LocusTag,
			Product:   g.Product,
			Color:     ColorRepeat,
		})
	}
	return out
}

// Generator builds patches for windows over a fixed gene set.
type Generator struct {
	genes []genes.Gene
	index *Index
}

// NewGenerator indexes gs for repeated window queries.
func NewGenerator(gs []genes.Gene) *Generator {
	return &Generator{genes: gs, index: BuildIndex(gs)}
}

// Genes returns the indexed genes.
func (g *Generator) Genes() []genes.Gene {
	return g.genes
}

// GenePatches returns arrows for genes and rectangles for repeat regions
// overlapping (left, right), arrows first.
func (g *Generator) GenePatches(left, right int64) Patches {
	var regular, repeats []genes.Gene
	for _, i := range g.index.Window(left, right) {
		if g.genes[i].IsRepeat() {
			repeats = append(repeats, g.genes[i])
		} else {
			regular = append(regular, g.genes[i])
		}
	}
	return Merge(ArrowPatches(regular), RectPatches(repeats))
}

// AllGlyphs returns GenePatches sorted by the first x coordinate of each shape.
// Ties keep their GenePatches order.
func (g *Generator) AllGlyphs(left, right int64) Patches {
	p := g.GenePatches(left, right)
	shapes := p.Shapes()
	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].XS[0] < shapes[j].XS[0]
	})

	out := NewPatches(len(shapes))
	for _, s := range shapes {
		out.Add(s)
	}
	return out
}

// GenePatches is a one-shot GenePatches over gs.
func GenePatches(gs []genes.Gene, left, right int64) Patches {
	return NewGenerator(gs).GenePatches(left, right)
}

// AllGlyphs is a one-shot AllGlyphs over gs.
func AllGlyphs(gs []genes.Gene, left, right int64) Patches {
	return NewGenerator(gs).AllGlyphs(left, right)
}
