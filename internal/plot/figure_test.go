package plot

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genome-track/internal/genes"
	"github.com/inodb/genome-track/internal/glyph"
)

func samplePatches() glyph.Patches {
	gs := []genes.Gene{
		{Type: genes.TypeCDS, Strand: "+", Start: 100, End: 500, Left: 100, Right: 500, Gene: "thrA", LocusTag: "b0002", GeneOrLocus: "thrA", Product: "kinase & dehydrogenase"},
		{Type: genes.TypeCDS, Strand: "-", Start: 900, End: 600, Left: 600, Right: 900, LocusTag: "b0005", GeneOrLocus: "b0005"},
		{Type: genes.TypeRepeatRegion, Strand: "+", Start: 1000, End: 1050, Left: 1000, Right: 1050, Gene: genes.RepeatLabel},
	}
	return glyph.AllGlyphs(gs, 0, 2000)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"svg", BackendSVG},
		{"SVG", BackendSVG},
		{"canvas", BackendCanvas},
		{"png", BackendCanvas},
		{"html", BackendHTML},
		{"webgl", BackendHTML},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseBackend("pdf")
	assert.Error(t, err)
}

func TestBackendForPath(t *testing.T) {
	b, ok := BackendForPath("out/track.PNG")
	require.True(t, ok)
	assert.Equal(t, BackendCanvas, b)

	_, ok = BackendForPath("track.pdf")
	assert.False(t, ok)
}

func TestFontPoints(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"10pt", 10, false},
		{"12px", 9, false},
		{"8", 8, false},
		{" 11PT ", 11, false},
		{"big", 0, true},
		{"-3pt", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := FontPoints(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewFigure_Defaults(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, DefaultOptions(), f.Options)
	assert.Equal(t, glyph.TrackRange, f.YRange)
	assert.Equal(t, "xwheel_zoom", f.ActiveScroll)
	assert.Equal(t, 45.0, f.Labels.Angle)
	assert.Equal(t, LabelY, f.Labels.Y)
	assert.Equal(t, "left", f.Labels.Align)

	var names []string
	for _, tool := range f.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"xwheel_zoom", "xpan", "save", "box_zoom"}, names)

	var fields []string
	for _, tt := range f.Tooltips {
		fields = append(fields, tt.Field)
	}
	assert.Equal(t, []string{"locus_tag", "gene", "product"}, fields)
}

func TestNewFigure_ZeroOptions(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 150, f.Options.Height)
	assert.Equal(t, 800, f.Options.Width)
	assert.Equal(t, "10pt", f.Options.FontSize)
	assert.Equal(t, BackendSVG, f.Options.Backend)
	assert.Equal(t, 0.0, f.Labels.Angle, "a zero angle is kept")
}

func TestNewFigure_Invalid(t *testing.T) {
	_, err := NewFigure(samplePatches(), Range{Start: 500, End: 500}, Options{})
	assert.Error(t, err, "empty x range")

	_, err = NewFigure(samplePatches(), Range{Start: 0, End: 100}, Options{Height: 10})
	assert.Error(t, err, "height below axis")

	_, err = NewFigure(samplePatches(), Range{Start: 0, End: 100}, Options{FontSize: "huge"})
	assert.Error(t, err)

	p := samplePatches()
	p.Names = p.Names[:1]
	_, err = NewFigure(p, Range{Start: 0, End: 100}, Options{})
	assert.ErrorIs(t, err, glyph.ErrLengthMismatch)
}

func TestProject(t *testing.T) {
	f, err := NewFigure(glyph.NewPatches(0), Range{Start: 1000, End: 2000}, Options{Width: 1000, Height: 124})
	require.NoError(t, err)

	px, py := f.project(1500, 2)
	assert.Equal(t, 500.0, px)
	assert.Equal(t, 0.0, py)

	px, py = f.project(1000, -2)
	assert.Equal(t, 0.0, px)
	assert.Equal(t, 100.0, py)
}

func TestTicks(t *testing.T) {
	f, err := NewFigure(glyph.NewPatches(0), Range{Start: 0, End: 20000}, Options{})
	require.NoError(t, err)

	ticks := f.ticks()
	require.NotEmpty(t, ticks)
	assert.Equal(t, "0", ticks[0].Label)
	assert.Equal(t, "5,000", ticks[1].Label)
	assert.Equal(t, "20,000", ticks[len(ticks)-1].Label)
}

func TestWriteSVG(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 3, strings.Count(out, "<polygon"))
	assert.Contains(t, out, `fill="orange"`)
	assert.Contains(t, out, `fill="purple"`)
	assert.Contains(t, out, `fill="grey"`)
	assert.Contains(t, out, "product: kinase &amp; dehydrogenase")
	assert.Contains(t, out, ">thrA</text>")
	assert.Contains(t, out, ">b0005</text>")
	assert.NotContains(t, out, ">REP</text>", "repeat regions are not labeled")
	assert.Contains(t, out, "rotate(-45 ")
}

func TestWriteSVG_Empty(t *testing.T) {
	f, err := NewFigure(glyph.NewPatches(0), Range{Start: 0, End: 2000}, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteSVG(&buf))
	assert.NotContains(t, buf.String(), "<polygon")
	assert.Contains(t, buf.String(), "</svg>")
}

func TestWriteHTML(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, Options{Backend: BackendHTML})
	require.NoError(t, err)
	f.Endpoint = "/plot.svg"

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `data-endpoint="/plot.svg"`)
	assert.Contains(t, out, `data-tool="xwheel_zoom" class="active"`)
	assert.Contains(t, out, "<polygon")
}

func TestWriteSVG_ViewerHooks(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteSVG(&buf))
	out := buf.String()

	assert.Contains(t, out, `<g clip-path="url(#track)"><g class="glyphs">`, "glyph layer can be rescaled inside a fixed clip")
	assert.Contains(t, out, `<g clip-path="url(#track)"><g class="labels">`)
	assert.Equal(t, 3, strings.Count(out, `vector-effect="non-scaling-stroke"`))
	pos, _ := f.project(f.Patches.Pos[0], f.Labels.Y)
	assert.Contains(t, out, `data-pos="`+num(pos)+`" data-dx="`+num(f.Labels.XOffset)+`" data-rotate="-45"`, "thrA label before its offset")
	assert.Contains(t, out, `class="x-axis" data-y="126" data-tick="4" data-label-y="144"`)
	assert.Contains(t, out, `<text class="tick"`)
}

func TestWriteHTML_Standalone(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, Options{Backend: BackendHTML})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `data-endpoint=""`)
	for _, name := range []string{"xwheel_zoom", "xpan", "save", "box_zoom"} {
		assert.Contains(t, out, `data-tool="`+name+`"`, name)
	}
	assert.Contains(t, out, `dragTool === "box_zoom"`, "box zoom selects a width-only window")
	assert.Contains(t, out, `glyphs.setAttribute("transform"`, "zoom and pan work without a server")
}

func TestWriteHTML_WindowGuards(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, Options{Backend: BackendHTML})
	require.NoError(t, err)
	f.Endpoint = "/plot.svg"

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "Math.max(s + 1, Math.ceil(end))", "requested windows always have end > start")
	assert.Contains(t, out, "if (e - s < MIN_SPAN)")
	assert.Contains(t, out, `if (!r.ok) { throw new Error("HTTP " + r.status); }`, "error bodies never replace the track")
}

func TestWritePNG(t *testing.T) {
	f, err := NewFigure(samplePatches(), Range{Start: 0, End: 2000}, Options{Backend: BackendCanvas, Width: 400, Height: 120})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	tests := []struct {
		name    string
		x       float64
		y       float64
		r, g, b uint32
	}{
		{"forward arrow body", 300, glyph.GeneRange.Mid(), 255, 165, 0},
		{"reverse arrow body", 800, glyph.GeneRange.Mid(), 128, 0, 128},
		{"repeat rectangle", 1025, 0, 128, 128, 128},
		{"empty track", 1500, 1, 255, 255, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := f.project(tt.x, tt.y)
			r, g, b, _ := img.At(int(px), int(py)).RGBA()
			assert.Equal(t, []uint32{tt.r, tt.g, tt.b}, []uint32{r >> 8, g >> 8, b >> 8})
		})
	}
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#FFA500", hexColor("orange"))
	assert.Equal(t, "#123456", hexColor("#123456"))
	assert.Equal(t, "#808080", hexColor("chartreuse-ish"))
}
