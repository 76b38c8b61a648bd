package plot

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// namedColors maps the CSS color names used by glyphs to hex values.
var namedColors = map[string]string{
	"orange": "#FFA500",
	"purple": "#800080",
	"grey":   "#808080",
	"gray":   "#808080",
	"black":  "#000000",
	"white":  "#FFFFFF",
}

// hexColor resolves a CSS color name or hex string.
func hexColor(c string) string {
	if h, ok := namedColors[strings.ToLower(c)]; ok {
		return h
	}
	if strings.HasPrefix(c, "#") {
		return c
	}
	return namedColors["grey"]
}

// WritePNG rasterizes the figure and writes it as PNG.
func (f *Figure) WritePNG(w io.Writer) error {
	dc := gg.NewContext(f.Options.Width, f.Options.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}
	defer source.Close()

	if err := f.drawGlyphs(dc); err != nil {
		return err
	}

	points, err := FontPoints(f.Labels.FontSize)
	if err != nil {
		return err
	}
	dc.SetFont(source.Face(points))
	f.drawLabels(dc)

	dc.SetFont(source.Face(9))
	if err := f.drawAxis(dc); err != nil {
		return err
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

func (f *Figure) drawGlyphs(dc *gg.Context) error {
	p := &f.Patches
	dc.SetLineWidth(1)
	for i := range p.Len() {
		for j := range p.XS[i] {
			px, py := f.project(float64(p.XS[i][j]), p.YS[i][j])
			if j == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.ClosePath()

		dc.SetHexColor(hexColor(p.Color[i]))
		if err := dc.FillPreserve(); err != nil {
			return fmt.Errorf("fill glyph %d: %w", i, err)
		}
		dc.SetRGB(0, 0, 0)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke glyph %d: %w", i, err)
		}
	}
	return nil
}

func (f *Figure) drawLabels(dc *gg.Context) {
	p := &f.Patches
	angle := -f.Labels.Angle * math.Pi / 180

	dc.SetRGB(0, 0, 0)
	for i := range p.Len() {
		if p.Names[i] == "" {
			continue
		}
		px, py := f.project(p.Pos[i], f.Labels.Y)
		px += f.Labels.XOffset

		dc.Push()
		dc.RotateAbout(angle, px, py)
		dc.DrawString(p.Names[i], px, py)
		dc.Pop()
	}
}

func (f *Figure) drawAxis(dc *gg.Context) error {
	y := f.plotHeight()

	dc.SetRGB(0, 0, 0)
	dc.DrawLine(0, y, float64(f.Options.Width), y)
	for _, t := range f.ticks() {
		px, _ := f.project(t.X, 0)
		dc.DrawLine(px, y, px, y+tickLength)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke axis: %w", err)
	}

	for _, t := range f.ticks() {
		px, _ := f.project(t.X, 0)
		dc.DrawStringAnchored(t.Label, px, y+axisHeight-6, 0.5, 0)
	}
	return nil
}
