package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inodb/genome-track/internal/server"
	"github.com/inodb/genome-track/internal/store"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		dbPath string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "import <gff>",
		Short: "Import a GFF3 file into a DuckDB annotation store",
		Long: `Import parses a GFF3 file once and stores its records in DuckDB so later
render, patches and genes runs with --db query windows from the store.
Unchanged files (same size and modification time) are skipped.`,
		Example: `  genome-track import genes.gff3 --db ~/.genome-track/genes.duckdb`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.Store.Path
			}
			if dbPath == "" {
				return fmt.Errorf("no store given: use --db or set store.path")
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := a.importFile(st, args[0], force); err != nil {
				return err
			}
			n, err := st.AnnotationCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records in %s\n", args[0], n, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB annotation store (default: store.path from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-import even if the file is unchanged")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		src  source
		pf   plotFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve <gff>",
		Short: "Serve an interactive gene-track viewer",
		Long: `Serve starts an HTTP server with the interactive viewer at / and the
window endpoints /plot.svg, /api/glyphs and /api/genes. Patches are
recomputed for every pan or zoom.`,
		Example: `  genome-track serve genes.gff3 --addr :8080
  genome-track serve genes.gff3 --start 5000 --end 7000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.path = args[0]
			opts, err := pf.options(cmd, a, "")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Serve.Addr
			}

			// The initial window only sets the first view; every gene is served.
			if _, err := src.bounds(); err != nil {
				return err
			}
			all := source{path: src.path, seqID: src.seqID, db: src.db}
			gs, span, err := a.loadGenes(&all)
			if err != nil {
				return err
			}
			if src.windowed() {
				span.Start, span.End = float64(src.start), float64(src.end)
			}

			srv := server.New(gs, opts, span)
			srv.SetLogger(a.log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Viewer at http://%s/\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	addSourceFlags(cmd, &src)
	addPlotFlags(cmd, &pf)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serve.addr)")
	return cmd
}
