package plot

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/viewer.html.tmpl
var templateFS embed.FS

var viewerTemplate = template.Must(template.ParseFS(templateFS, "templates/viewer.html.tmpl"))

type viewerData struct {
	Title        string
	Tools        []Tool
	ActiveScroll string
	Endpoint     string
	Start        int64
	End          int64
	Width        int
	SVG          template.HTML
}

// WriteHTML writes an HTML page embedding the SVG figure with wheel zoom,
// pan and save tools. Without an Endpoint the tools only track the window.
func (f *Figure) WriteHTML(w io.Writer) error {
	var svg bytes.Buffer
	bw := bufio.NewWriter(&svg)
	f.writeSVG(bw)
	if err := bw.Flush(); err != nil {
		return err
	}

	data := viewerData{
		Title:        "genome-track",
		Tools:        f.Tools,
		ActiveScroll: f.ActiveScroll,
		Endpoint:     f.Endpoint,
		Start:        int64(f.XRange.Start),
		End:          int64(f.XRange.End),
		Width:        f.Options.Width,
		// Generated by writeSVG; every user-provided string in it is escaped.
		SVG: template.HTML(svg.String()),
	}
	if err := viewerTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render viewer page: %w", err)
	}
	return nil
}
