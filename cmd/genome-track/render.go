package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/genome-track/internal/glyph"
	"github.com/inodb/genome-track/internal/output"
	"github.com/inodb/genome-track/internal/plot"
)

// plotFlags are figure options given on the command line.
type plotFlags struct {
	backend    string
	height     int
	width      int
	labelAngle float64
	fontSize   string
}

func addPlotFlags(cmd *cobra.Command, p *plotFlags) {
	cmd.Flags().StringVar(&p.backend, "backend", "", "Output backend: svg, canvas (png) or html (default: plot.backend)")
	cmd.Flags().IntVar(&p.height, "height", 0, "Plot height in pixels (default: plot.height)")
	cmd.Flags().IntVar(&p.width, "width", 0, "Plot width in pixels (default: plot.width)")
	cmd.Flags().Float64Var(&p.labelAngle, "label-angle", 0, "Label rotation in degrees (default: plot.label_angle)")
	cmd.Flags().StringVar(&p.fontSize, "font-size", "", "Label font size, e.g. 10pt (default: plot.font_size)")
}

// options merges the configured plot settings with flags the user set.
// Without --backend, a known output extension picks the backend.
func (p *plotFlags) options(cmd *cobra.Command, a *app, outPath string) (plot.Options, error) {
	opts, err := a.cfg.Plot.Options()
	if err != nil {
		return plot.Options{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("height") {
		opts.Height = p.height
	}
	if flags.Changed("width") {
		opts.Width = p.width
	}
	if flags.Changed("label-angle") {
		opts.LabelAngle = p.labelAngle
	}
	if flags.Changed("font-size") {
		opts.FontSize = p.fontSize
	}
	switch {
	case flags.Changed("backend"):
		if opts.Backend, err = plot.ParseBackend(p.backend); err != nil {
			return plot.Options{}, err
		}
	case outPath != "":
		if b, ok := plot.BackendForPath(outPath); ok {
			opts.Backend = b
		}
	}
	return opts, nil
}

// openOutput returns stdout for an empty path.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		src     source
		pf      plotFlags
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "render <gff>",
		Short: "Render a gene track as SVG, PNG or HTML",
		Example: `  genome-track render genes.gff3 -o track.svg
  genome-track render genes.gff3 --start 5000 --end 7000 --backend canvas -o track.png
  genome-track render genes.gff3 --width 1200 --label-angle 30 -o track.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.path = args[0]
			opts, err := pf.options(cmd, a, outFile)
			if err != nil {
				return err
			}

			gs, win, err := a.loadGenes(&src)
			if err != nil {
				return err
			}
			p := glyph.AllGlyphs(gs, int64(win.Start), int64(win.End))
			fig, err := plot.NewFigure(p, win, opts)
			if err != nil {
				return fmt.Errorf("build figure: %w", err)
			}

			w, closeOut, err := openOutput(cmd, outFile)
			if err != nil {
				return err
			}
			if err := fig.Render(w); err != nil {
				closeOut()
				return fmt.Errorf("render %s: %w", opts.Backend, err)
			}
			if err := closeOut(); err != nil {
				return err
			}

			a.log.Info("rendered track",
				zap.String("backend", string(opts.Backend)),
				zap.Int("shapes", p.Len()),
				zap.Float64("start", win.Start),
				zap.Float64("end", win.End))
			return nil
		},
	}

	addSourceFlags(cmd, &src)
	addPlotFlags(cmd, &pf)
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newPatchesCmd(a *app) *cobra.Command {
	var (
		src     source
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "patches <gff>",
		Short: "Write the glyph patch dictionary for a window as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.path = args[0]
			gs, win, err := a.loadGenes(&src)
			if err != nil {
				return err
			}
			p := glyph.AllGlyphs(gs, int64(win.Start), int64(win.End))

			w, closeOut, err := openOutput(cmd, outFile)
			if err != nil {
				return err
			}
			if err := output.WritePatchesJSON(w, p); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newGenesCmd(a *app) *cobra.Command {
	var (
		src     source
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "genes <gff>",
		Short: "List the genes drawn on the track as tab-delimited text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.path = args[0]
			gs, _, err := a.loadGenes(&src)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, outFile)
			if err != nil {
				return err
			}
			if err := output.NewGeneWriter(w).WriteAll(gs); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
