package plot

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteSVG writes the figure as a standalone SVG document.
// Each glyph carries a <title> so browsers show the hover tooltip.
func (f *Figure) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	f.writeSVG(bw)
	return bw.Flush()
}

func (f *Figure) writeSVG(w *bufio.Writer) {
	width, height := f.Options.Width, f.Options.Height

	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" data-start="%s" data-end="%s">`+"\n",
		width, height, width, height, num(f.XRange.Start), num(f.XRange.End))
	fmt.Fprintf(w, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	fmt.Fprintf(w, `<clipPath id="track"><rect width="%d" height="%s"/></clipPath>`+"\n", width, num(f.plotHeight()))

	// Clipping sits on an outer group so the viewer can rescale the inner one.
	w.WriteString(`<g clip-path="url(#track)"><g class="glyphs">` + "\n")
	p := &f.Patches
	for i := range p.Len() {
		points := make([]string, len(p.XS[i]))
		for j := range p.XS[i] {
			px, py := f.project(float64(p.XS[i][j]), p.YS[i][j])
			points[j] = num(px) + "," + num(py)
		}
		fmt.Fprintf(w, `<polygon points="%s" fill="%s" stroke="black" stroke-width="1" vector-effect="non-scaling-stroke"><title>%s</title></polygon>`+"\n",
			strings.Join(points, " "), html.EscapeString(p.Color[i]), html.EscapeString(strings.Join(f.tooltipText(i), "\n")))
	}
	w.WriteString("</g></g>\n")

	w.WriteString(`<g clip-path="url(#track)"><g class="labels">` + "\n")
	for i := range p.Len() {
		if p.Names[i] == "" {
			continue
		}
		pos, py := f.project(p.Pos[i], f.Labels.Y)
		px := pos + f.Labels.XOffset
		fmt.Fprintf(w, `<text x="%s" y="%s" data-pos="%s" data-dx="%s" data-rotate="%s" font-size="%s" font-family="sans-serif" text-anchor="start" transform="rotate(%s %s %s)">%s</text>`+"\n",
			num(px), num(py), num(pos), num(f.Labels.XOffset), num(-f.Labels.Angle),
			html.EscapeString(f.Labels.FontSize), num(-f.Labels.Angle), num(px), num(py), html.EscapeString(p.Names[i]))
	}
	w.WriteString("</g></g>\n")

	f.writeSVGAxis(w)
	w.WriteString("</svg>\n")
}

func (f *Figure) writeSVGAxis(w *bufio.Writer) {
	y := f.plotHeight()
	fmt.Fprintf(w, `<g class="x-axis" data-y="%s" data-tick="%d" data-label-y="%s" font-size="9pt" font-family="sans-serif" text-anchor="middle">`+"\n",
		num(y), tickLength, num(y+axisHeight-6))
	fmt.Fprintf(w, `<line x1="0" y1="%s" x2="%d" y2="%s" stroke="black"/>`+"\n", num(y), f.Options.Width, num(y))
	for _, t := range f.ticks() {
		px, _ := f.project(t.X, 0)
		fmt.Fprintf(w, `<line class="tick" x1="%s" y1="%s" x2="%s" y2="%s" stroke="black"/>`+"\n",
			num(px), num(y), num(px), num(y+tickLength))
		fmt.Fprintf(w, `<text class="tick" x="%s" y="%s">%s</text>`+"\n", num(px), num(y+axisHeight-6), t.Label)
	}
	w.WriteString("</g>\n")
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
