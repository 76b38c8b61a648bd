// Package store persists GFF3 annotation tables in DuckDB and answers
// window queries against them.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/genome-track/internal/gff"
)

// Store manages a DuckDB connection holding one imported annotation table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS annotations (
			ord BIGINT,
			seqid VARCHAR,
			source VARCHAR,
			type VARCHAR,
			start BIGINT,
			end_ BIGINT,
			score VARCHAR,
			strand VARCHAR,
			phase VARCHAR,
			attributes VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS sequence_regions (
			seqid VARCHAR PRIMARY KEY,
			start BIGINT,
			end_ BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// WriteAnnotations replaces the stored table with t using the Appender API.
// The recorded source is cleared first and the replacement runs in one
// transaction, so a failed write leaves the previous rows and forces a
// re-import.
func (s *Store) WriteAnnotations(t *gff.Table) error {
	if err := s.clearSource(); err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := writeAnnotations(ctx, conn, t); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit annotations: %w", err)
	}
	return nil
}

func writeAnnotations(ctx context.Context, conn *sql.Conn, t *gff.Table) error {
	for _, stmt := range []string{"DELETE FROM annotations", "DELETE FROM sequence_regions"} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear annotations: %w", err)
		}
	}
	if _, err := conn.ExecContext(ctx, `INSERT OR REPLACE INTO metadata VALUES ('gff_version', ?)`, t.Version); err != nil {
		return fmt.Errorf("set metadata gff_version: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "annotations")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for i, r := range t.Records {
		if err := appender.AppendRow(
			int64(i), r.SeqID, r.Source, r.Type, r.Start, r.End,
			r.Score, r.Strand, r.Phase, r.Attributes,
		); err != nil {
			appender.Close()
			return fmt.Errorf("append annotation: %w", err)
		}
	}
	// Close flushes the remaining rows.
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush annotations: %w", err)
	}

	for _, sr := range t.SequenceRegions {
		if _, err := conn.ExecContext(ctx, `INSERT INTO sequence_regions VALUES (?, ?, ?)`, sr.SeqID, sr.Start, sr.End); err != nil {
			return fmt.Errorf("insert sequence region: %w", err)
		}
	}
	return nil
}

// AnnotationCount returns the number of stored records.
func (s *Store) AnnotationCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM annotations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return n, nil
}

// QueryWindow returns stored records in file order. An empty seqID matches
// every landmark; a nil bounds matches every record. Overlap follows the
// loader: start < bounds.End AND end > bounds.Start.
func (s *Store) QueryWindow(seqID string, bounds *gff.Bounds) (*gff.Table, error) {
	query := `SELECT seqid, source, type, start, end_, score, strand, phase, attributes
		FROM annotations WHERE (? = '' OR seqid = ?)`
	args := []any{seqID, seqID}
	if bounds != nil {
		query += ` AND start < ? AND end_ > ?`
		args = append(args, bounds.End, bounds.Start)
	}
	query += ` ORDER BY ord`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	t := &gff.Table{
		SequenceRegions: make(map[string]gff.SequenceRegion),
		Records:         []gff.Record{},
	}
	for rows.Next() {
		var r gff.Record
		if err := rows.Scan(&r.SeqID, &r.Source, &r.Type, &r.Start, &r.End,
			&r.Score, &r.Strand, &r.Phase, &r.Attributes); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		r.Left = r.Start
		r.Right = r.End
		t.Records = append(t.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}

	if t.Version, err = s.getMeta("gff_version"); err != nil {
		return nil, err
	}
	if err := s.loadSequenceRegions(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) loadSequenceRegions(t *gff.Table) error {
	rows, err := s.db.Query(`SELECT seqid, start, end_ FROM sequence_regions`)
	if err != nil {
		return fmt.Errorf("query sequence regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sr gff.SequenceRegion
		if err := rows.Scan(&sr.SeqID, &sr.Start, &sr.End); err != nil {
			return fmt.Errorf("scan sequence region: %w", err)
		}
		t.SequenceRegions[sr.SeqID] = sr
	}
	return rows.Err()
}
