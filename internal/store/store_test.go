package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genome-track/internal/gff"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func loadSample(t *testing.T) *gff.Table {
	t.Helper()
	tbl, err := gff.NewLoader("../../testdata/sample.gff3").Load(nil)
	require.NoError(t, err)
	return tbl
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())

	n, err := s.AnnotationCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteAndQueryAll(t *testing.T) {
	s := openInMemory(t)
	tbl := loadSample(t)

	require.NoError(t, s.WriteAnnotations(tbl))

	n, err := s.AnnotationCount()
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), n)

	got, err := s.QueryWindow("", nil)
	require.NoError(t, err)
	assert.Equal(t, tbl.Records, got.Records, "records round-trip in file order")
	assert.Equal(t, "3", got.Version)
	assert.Equal(t, tbl.SequenceRegions, got.SequenceRegions)
}

func TestQueryWindow_MatchesLoader(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteAnnotations(loadSample(t)))

	bounds := &gff.Bounds{Start: 5000, End: 6000}
	want, err := gff.NewLoader("../../testdata/sample.gff3").Load(bounds)
	require.NoError(t, err)

	got, err := s.QueryWindow("", bounds)
	require.NoError(t, err)
	assert.Equal(t, want.Records, got.Records)
}

func TestQueryWindow_SeqID(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteAnnotations(loadSample(t)))

	got, err := s.QueryWindow("chrX", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.NotNil(t, got.Records)

	got, err = s.QueryWindow("NC_000913.3", &gff.Bounds{Start: 100, End: 300})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len(), "region, thrL gene and CDS")
}

func TestWriteAnnotations_Replaces(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteAnnotations(loadSample(t)))

	small := &gff.Table{Records: []gff.Record{
		{SeqID: "chr1", Source: ".", Type: "CDS", Start: 1, End: 10, Score: ".", Strand: "+", Phase: "0", Attributes: "ID=a"},
	}}
	require.NoError(t, s.WriteAnnotations(small))

	n, err := s.AnnotationCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSourceFingerprint(t *testing.T) {
	s := openInMemory(t)

	path := filepath.Join(t.TempDir(), "a.gff3")
	require.NoError(t, os.WriteFile(path, []byte("##gff-version 3\n"), 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.False(t, s.SourceValid(fp), "nothing imported yet")

	require.NoError(t, s.SetSource(fp))
	assert.True(t, s.SourceValid(fp))

	changed := fp
	changed.ModTime = fp.ModTime.Add(time.Second)
	assert.False(t, s.SourceValid(changed))

	changed = fp
	changed.Size++
	assert.False(t, s.SourceValid(changed))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "track.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteAnnotations(loadSample(t)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.AnnotationCount()
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestWriteAnnotations_FailureKeepsRowsAndInvalidatesSource(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteAnnotations(loadSample(t)))

	path := filepath.Join(t.TempDir(), "a.gff3")
	require.NoError(t, os.WriteFile(path, []byte("##gff-version 3\n"), 0o644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SetSource(fp))

	// Make the replacement fail partway through.
	_, err = s.DB().Exec(`DROP TABLE sequence_regions`)
	require.NoError(t, err)

	small := &gff.Table{Records: []gff.Record{
		{SeqID: "chr1", Source: ".", Type: "CDS", Start: 1, End: 10, Score: ".", Strand: "+", Phase: "0", Attributes: "ID=a"},
	}}
	require.Error(t, s.WriteAnnotations(small))

	n, err := s.AnnotationCount()
	require.NoError(t, err)
	assert.Equal(t, 12, n, "previous rows survive a failed write")
	assert.False(t, s.SourceValid(fp), "a failed write forces the next import")
}
