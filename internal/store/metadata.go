package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// SetSource records the fingerprint of the imported GFF3 file.
func (s *Store) SetSource(fp FileFingerprint) error {
	entries := []struct{ key, val string }{
		{"source_path", fp.Path},
		{"source_size", strconv.FormatInt(fp.Size, 10)},
		{"source_modtime", fp.ModTime.UTC().Format(time.RFC3339Nano)},
		{"imported_at", time.Now().UTC().Format(time.RFC3339)},
	}
	for _, e := range entries {
		if err := s.setMeta(e.key, e.val); err != nil {
			return err
		}
	}
	return nil
}

// SourceValid reports whether the stored table was imported from a file
// with the same path, size and modification time.
func (s *Store) SourceValid(fp FileFingerprint) bool {
	checks := []struct{ key, val string }{
		{"source_path", fp.Path},
		{"source_size", strconv.FormatInt(fp.Size, 10)},
		{"source_modtime", fp.ModTime.UTC().Format(time.RFC3339Nano)},
	}
	for _, c := range checks {
		v, err := s.getMeta(c.key)
		if err != nil || v != c.val {
			return false
		}
	}
	return true
}

// clearSource forgets the recorded source so SourceValid reports false.
func (s *Store) clearSource() error {
	if _, err := s.db.Exec(`DELETE FROM metadata WHERE key IN ('source_path', 'source_size', 'source_modtime', 'imported_at')`); err != nil {
		return fmt.Errorf("clear source metadata: %w", err)
	}
	return nil
}

func (s *Store) setMeta(key, value string) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO metadata VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// getMeta returns "" for a missing key.
func (s *Store) getMeta(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return v, nil
}
