package plot

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/inodb/genome-track/internal/glyph"
)

// Layout constants in pixels.
const (
	axisHeight   = 24
	tickLength   = 4
	labelXOffset = -5
)

// LabelY is the data-space y of gene labels, just above the arrow band.
const LabelY = -0.9

// Range is an x interval in genomic coordinates.
type Range struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (r Range) Width() float64 {
	return r.End - r.Start
}

// Tool is an interaction tool attached to the figure.
type Tool struct {
	Name       string
	Dimensions string // "width" limits a tool to the x axis
}

// Default tools: wheel zoom and pan along x, save, and a width-only box zoom.
var defaultTools = []Tool{
	{Name: "xwheel_zoom", Dimensions: "width"},
	{Name: "xpan", Dimensions: "width"},
	{Name: "save"},
	{Name: "box_zoom", Dimensions: "width"},
}

// LabelSet places rotated gene names over the track.
type LabelSet struct {
	Y        float64
	Angle    float64 // Degrees, counter-clockwise
	FontSize string
	XOffset  float64 // Pixels
	Align    string
}

// Tooltip is one hover line: a label and the patch field it shows.
type Tooltip struct {
	Label string
	Field string
}

// Figure is a gene-track plot ready to render.
type Figure struct {
	Patches      glyph.Patches
	XRange       Range
	YRange       glyph.Range
	Tools        []Tool
	ActiveScroll string
	Labels       LabelSet
	Tooltips     []Tooltip
	Options      Options

	// Endpoint, when set, is where the HTML viewer fetches re-rendered
	// SVG after a pan or zoom.
	Endpoint string
}

// NewFigure builds a figure for patches over xRange.
func NewFigure(p glyph.Patches, xRange Range, opts Options) (*Figure, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(xRange.End > xRange.Start) {
		return nil, fmt.Errorf("invalid x range %v-%v", xRange.Start, xRange.End)
	}

	return &Figure{
		Patches:      p,
		XRange:       xRange,
		YRange:       glyph.TrackRange,
		Tools:        append([]Tool(nil), defaultTools...),
		ActiveScroll: "xwheel_zoom",
		Labels: LabelSet{
			Y:        LabelY,
			Angle:    opts.LabelAngle,
			FontSize: opts.FontSize,
			XOffset:  labelXOffset,
			Align:    "left",
		},
		Tooltips: []Tooltip{
			{Label: "locus_tag", Field: "locus_tag"},
			{Label: "gene", Field: "gene"},
			{Label: "product", Field: "product"},
		},
		Options: opts,
	}, nil
}

// Render writes the figure with the configured backend.
func (f *Figure) Render(w io.Writer) error {
	switch f.Options.Backend {
	case BackendSVG:
		return f.WriteSVG(w)
	case BackendCanvas:
		return f.WritePNG(w)
	case BackendHTML:
		return f.WriteHTML(w)
	}
	return fmt.Errorf("unknown backend %q", f.Options.Backend)
}

// plotHeight is the height of the track area above the axis.
func (f *Figure) plotHeight() float64 {
	return float64(f.Options.Height - axisHeight)
}

// project maps data coordinates to pixels, origin at the top-left.
func (f *Figure) project(x, y float64) (float64, float64) {
	w := float64(f.Options.Width)
	px := (x - f.XRange.Start) / f.XRange.Width() * w
	py := (f.YRange.Max - y) / (f.YRange.Max - f.YRange.Min) * f.plotHeight()
	return px, py
}

// tooltipText returns the hover lines for shape i.
func (f *Figure) tooltipText(i int) []string {
	lines := make([]string, 0, len(f.Tooltips))
	for _, t := range f.Tooltips {
		lines = append(lines, t.Label+": "+f.field(t.Field, i))
	}
	return lines
}

func (f *Figure) field(name string, i int) string {
	p := &f.Patches
	switch name {
	case "locus_tag":
		return p.LocusTag[i]
	case "gene":
		return p.Gene[i]
	case "product":
		return p.Product[i]
	case "names":
		return p.Names[i]
	case "hover_names":
		return p.HoverNames[i]
	}
	return ""
}

// tick is an axis tick position with its label.
type tick struct {
	X     float64
	Label string
}

// ticks returns axis ticks at a 1/2/5 step, labels with thousands separators.
func (f *Figure) ticks() []tick {
	const target = 8

	span := f.XRange.Width()
	raw := span / target
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	step = math.Max(step, 1)

	printer := message.NewPrinter(language.English)
	var out []tick
	for x := math.Ceil(f.XRange.Start/step) * step; x <= f.XRange.End; x += step {
		out = append(out, tick{X: x, Label: printer.Sprintf("%d", int64(math.Round(x)))})
	}
	return out
}
