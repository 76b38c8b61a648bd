// Package output provides gene table and patch dictionary writers.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/genome-track/internal/genes"
)

// GeneWriter writes gene records in tab-delimited format.
type GeneWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewGeneWriter creates a new tab-delimited gene writer.
func NewGeneWriter(w io.Writer) *GeneWriter {
	return &GeneWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#seqid",
			"type",
			"start",
			"end",
			"strand",
			"gene",
			"locus_tag",
			"gene_or_locus",
			"product",
		},
	}
}

// WriteHeader writes the header line.
func (gw *GeneWriter) WriteHeader() error {
	_, err := gw.w.WriteString(strings.Join(gw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene. Start and End are written as normalized,
// so reverse-strand genes have start > end.
func (gw *GeneWriter) Write(g *genes.Gene) error {
	values := []string{
		orDash(g.SeqID),
		orDash(g.Type),
		strconv.FormatInt(g.Start, 10),
		strconv.FormatInt(g.End, 10),
		orDash(g.Strand),
		orDash(g.Gene),
		orDash(g.LocusTag),
		orDash(g.GeneOrLocus),
		orDash(g.Product),
	}
	_, err := gw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every gene.
func (gw *GeneWriter) WriteAll(gs []genes.Gene) error {
	if err := gw.WriteHeader(); err != nil {
		return err
	}
	for i := range gs {
		if err := gw.Write(&gs[i]); err != nil {
			return err
		}
	}
	return gw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GeneWriter) Flush() error {
	return gw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
