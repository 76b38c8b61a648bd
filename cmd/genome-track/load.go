package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/inodb/genome-track/internal/genes"
	"github.com/inodb/genome-track/internal/gff"
	"github.com/inodb/genome-track/internal/plot"
	"github.com/inodb/genome-track/internal/store"
)

// source selects where annotations come from and which part is kept.
type source struct {
	path  string
	seqID string
	start int64
	end   int64
	db    string

	flags *pflag.FlagSet
}

func addSourceFlags(cmd *cobra.Command, s *source) {
	cmd.Flags().Int64Var(&s.start, "start", 0, "Window start (default: start of the annotations)")
	cmd.Flags().Int64Var(&s.end, "end", 0, "Window end (default: end of the annotations)")
	cmd.Flags().StringVar(&s.seqID, "seqid", "", "Only use records on this landmark")
	cmd.Flags().StringVar(&s.db, "db", "", "DuckDB annotation store (default: store.path from config)")
	s.flags = cmd.Flags()
}

// windowed reports whether --start or --end was given.
func (s *source) windowed() bool {
	return s.flags != nil && (s.flags.Changed("start") || s.flags.Changed("end"))
}

func (s *source) bounds() (*gff.Bounds, error) {
	if !s.windowed() {
		return nil, nil
	}
	if s.end <= s.start {
		return nil, fmt.Errorf("invalid window %d-%d: --end must be greater than --start", s.start, s.end)
	}
	return &gff.Bounds{Start: s.start, End: s.end}, nil
}

// load reads the annotation table, through the store when one is configured.
func (a *app) load(s *source) (*gff.Table, error) {
	bounds, err := s.bounds()
	if err != nil {
		return nil, err
	}

	dbPath := s.db
	if dbPath == "" {
		dbPath = a.cfg.Store.Path
	}
	if dbPath == "" {
		l := gff.NewLoader(s.path)
		l.SetSeqID(s.seqID)
		l.SetLogger(a.log)
		return l.Load(bounds)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := a.importFile(st, s.path, false); err != nil {
		return nil, err
	}
	t, err := st.QueryWindow(s.seqID, bounds)
	if err != nil {
		return nil, err
	}
	a.log.Info("queried annotation store",
		zap.String("db", dbPath),
		zap.Int("records", t.Len()))
	return t, nil
}

// importFile loads path into st unless the store already holds it.
func (a *app) importFile(st *store.Store, path string, force bool) error {
	fp, err := store.StatFile(path)
	if err != nil {
		return fmt.Errorf("open GFF file: %w", err)
	}
	if !force && st.SourceValid(fp) {
		a.log.Debug("store is up to date", zap.String("path", path))
		return nil
	}

	l := gff.NewLoader(path)
	l.SetLogger(a.log)
	t, err := l.Load(nil)
	if err != nil {
		return err
	}
	if err := st.WriteAnnotations(t); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}
	if err := st.SetSource(fp); err != nil {
		return err
	}
	a.log.Info("imported annotations",
		zap.String("path", path),
		zap.Int("records", t.Len()))
	return nil
}

// loadGenes loads the table and extracts genes. The returned range is the
// explicit window, or the span of the loaded records.
func (a *app) loadGenes(s *source) ([]genes.Gene, plot.Range, error) {
	t, err := a.load(s)
	if err != nil {
		return nil, plot.Range{}, err
	}
	gs := genes.Extract(t)
	a.log.Debug("extracted genes", zap.Int("genes", len(gs)))

	if s.windowed() {
		return gs, plot.Range{Start: float64(s.start), End: float64(s.end)}, nil
	}
	span, ok := t.Span()
	if !ok {
		return gs, plot.Range{Start: 0, End: 1}, nil
	}
	if span.End <= span.Start {
		span.End = span.Start + 1
	}
	return gs, plot.Range{Start: float64(span.Start), End: float64(span.End)}, nil
}
