// Package server serves the interactive gene-track viewer over HTTP.
// Every request recomputes patches for the requested window.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/genome-track/internal/genes"
	"github.com/inodb/genome-track/internal/glyph"
	"github.com/inodb/genome-track/internal/output"
	"github.com/inodb/genome-track/internal/plot"
)

const shutdownTimeout = 5 * time.Second

// Server renders windows of an immutable gene set.
type Server struct {
	gen    *glyph.Generator
	opts   plot.Options
	span   plot.Range
	logger *zap.Logger
}

// New creates a server for gs. span is the window shown when a request
// carries no start/end.
func New(gs []genes.Gene, opts plot.Options, span plot.Range) *Server {
	return &Server{
		gen:    glyph.NewGenerator(gs),
		opts:   opts,
		span:   span,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for request logging.
func (s *Server) SetLogger(log *zap.Logger) {
	s.logger = log
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleViewer)
	mux.HandleFunc("GET /plot.svg", s.handleSVG)
	mux.HandleFunc("GET /api/glyphs", s.handleGlyphs)
	mux.HandleFunc("GET /api/genes", s.handleGenes)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving viewer", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("viewer stopped")
	return nil
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := s.opts
	opts.Backend = plot.BackendHTML
	fig, err := s.figure(win, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	fig.Endpoint = "/plot.svg"

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fig.Render(w); err != nil {
		s.logger.Warn("write viewer", zap.Error(err))
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := s.opts
	opts.Backend = plot.BackendSVG
	fig, err := s.figure(win, opts)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := fig.Render(w); err != nil {
		s.logger.Warn("write svg", zap.Error(err))
	}
}

func (s *Server) handleGlyphs(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p := s.gen.AllGlyphs(int64(win.Start), int64(win.End))

	w.Header().Set("Content-Type", "application/json")
	if err := output.WritePatchesJSON(w, p); err != nil {
		s.logger.Warn("write glyphs", zap.Error(err))
	}
}

func (s *Server) handleGenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	if err := output.NewGeneWriter(w).WriteAll(s.gen.Genes()); err != nil {
		s.logger.Warn("write genes", zap.Error(err))
	}
}

func (s *Server) figure(win plot.Range, opts plot.Options) (*plot.Figure, error) {
	p := s.gen.AllGlyphs(int64(win.Start), int64(win.End))
	return plot.NewFigure(p, win, opts)
}

// window reads start/end from the query, falling back to the server span.
func (s *Server) window(r *http.Request) (plot.Range, error) {
	win := s.span
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return plot.Range{}, fmt.Errorf("invalid start %q", v)
		}
		win.Start = float64(n)
	}
	if v := q.Get("end"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return plot.Range{}, fmt.Errorf("invalid end %q", v)
		}
		win.End = float64(n)
	}
	if !(win.End > win.Start) {
		return plot.Range{}, fmt.Errorf("invalid window %d-%d: end must be greater than start",
			int64(win.Start), int64(win.End))
	}
	return win, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("render failed", zap.Error(err))
	http.Error(w, "render failed", http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
