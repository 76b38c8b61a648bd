// Package plot assembles gene-track figures from glyph patches and renders
// them as SVG, PNG or an interactive HTML viewer.
package plot

import (
	"fmt"
	"strconv"
	"strings"
)

// Backend selects how a figure is rendered.
type Backend string

// Supported backends.
const (
	BackendSVG    Backend = "svg"    // Standalone SVG document
	BackendCanvas Backend = "canvas" // PNG raster
	BackendHTML   Backend = "html"   // HTML page with zoom/pan tools
)

// ParseBackend converts a backend name to a Backend.
// "png" is accepted for canvas and "webgl" for html.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return BackendSVG, nil
	case "canvas", "png":
		return BackendCanvas, nil
	case "html", "webgl":
		return BackendHTML, nil
	}
	return "", fmt.Errorf("unknown backend %q (want svg, canvas or html)", s)
}

// BackendForPath guesses a backend from an output file extension.
func BackendForPath(path string) (Backend, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".svg"):
		return BackendSVG, true
	case strings.HasSuffix(lower, ".png"):
		return BackendCanvas, true
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return BackendHTML, true
	}
	return "", false
}

// Options configures figure layout.
type Options struct {
	Height     int     // Plot height in pixels
	Width      int     // Plot width in pixels
	LabelAngle float64 // Label rotation in degrees, counter-clockwise
	FontSize   string  // Label font size, e.g. "10pt" or "12px"
	Backend    Backend
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		Height:     150,
		Width:      800,
		LabelAngle: 45,
		FontSize:   "10pt",
		Backend:    BackendSVG,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.FontSize == "" {
		o.FontSize = d.FontSize
	}
	if o.Backend == "" {
		o.Backend = d.Backend
	}
	return o
}

// validate checks dimensions, backend and font size.
func (o Options) validate() error {
	if o.Height <= axisHeight {
		return fmt.Errorf("plot height %d must exceed %d pixels", o.Height, axisHeight)
	}
	if o.Width <= 0 {
		return fmt.Errorf("plot width %d must be positive", o.Width)
	}
	if _, err := ParseBackend(string(o.Backend)); err != nil {
		return err
	}
	if _, err := FontPoints(o.FontSize); err != nil {
		return err
	}
	return nil
}

// FontPoints converts a CSS-style font size to points.
// Supported units are pt and px; a bare number is taken as points.
func FontPoints(size string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(size))
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "pt"):
		s = strings.TrimSuffix(s, "pt")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
		scale = 0.75
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid font size %q", size)
	}
	return v * scale, nil
}
