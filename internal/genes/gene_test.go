package genes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genome-track/internal/gff"
)

func TestExtractAttribute(t *testing.T) {
	const attrs = "ID=g1;gene=thrA;product=threonine synthase"

	tests := []struct {
		name   string
		attrs  string
		key    string
		want   string
		wantOK bool
	}{
		{"gene", attrs, "gene", "thrA", true},
		{"product with spaces", attrs, "product", "threonine synthase", true},
		{"absent key", attrs, "note", "", false},
		{"capitalized first letter", "ID=g1;Gene=thrB", "gene", "thrB", true},
		{"lower first letter for capital key", "iD=g1", "ID", "g1", true},
		{"rest of key is case sensitive", "id=g1", "ID", "", false},
		{"only first letter folds", "GENE=thrC", "gene", "", false},
		{"suffix of another key", "pseudogene=x;old_gene=y", "gene", "", false},
		{"empty value", "gene=;locus_tag=b1", "gene", "", false},
		{"first match wins", "gene=a;gene=b", "gene", "a", true},
		{"value keeps equals", "note=a=b", "note", "a=b", true},
		{"last field", "locus_tag=b0001", "locus_tag", "b0001", true},
		{"empty attributes", "", "gene", "", false},
		{"empty key", attrs, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAttribute(tt.attrs, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTable(recs ...gff.Record) *gff.Table {
	for i := range recs {
		recs[i].Left = recs[i].Start
		recs[i].Right = recs[i].End
	}
	return &gff.Table{Records: recs}
}

func TestExtract_TypeFilter(t *testing.T) {
	tbl := newTable(
		gff.Record{Type: "region", Start: 1, End: 10000, Strand: "+"},
		gff.Record{Type: "gene", Start: 100, End: 500, Strand: "+"},
		gff.Record{Type: "CDS", Start: 100, End: 500, Strand: "+"},
		gff.Record{Type: "repeat_region", Start: 600, End: 650, Strand: "+"},
		gff.Record{Type: "ncRNA", Start: 700, End: 800, Strand: "-"},
		gff.Record{Type: "rRNA", Start: 900, End: 1000, Strand: "-"},
		gff.Record{Type: "tRNA", Start: 1100, End: 1180, Strand: "+"},
		gff.Record{Type: "exon", Start: 1100, End: 1180, Strand: "+"},
	)

	got := Extract(tbl)
	var types []string
	for _, g := range got {
		types = append(types, g.Type)
	}
	assert.Equal(t, []string{"CDS", "repeat_region", "ncRNA", "rRNA", "tRNA"}, types)
}

func TestExtract_StrandNormalization(t *testing.T) {
	tbl := newTable(
		gff.Record{Type: "CDS", Start: 100, End: 500, Strand: "+"},
		gff.Record{Type: "CDS", Start: 600, End: 900, Strand: "-"},
		gff.Record{Type: "CDS", Start: 1000, End: 1200, Strand: "."},
	)

	got := Extract(tbl)
	require.Len(t, got, 3)

	assert.Equal(t, int64(100), got[0].Start)
	assert.Equal(t, int64(500), got[0].End)

	assert.Equal(t, int64(900), got[1].Start)
	assert.Equal(t, int64(600), got[1].End)
	assert.Equal(t, int64(600), got[1].Left)
	assert.Equal(t, int64(900), got[1].Right)

	assert.Equal(t, int64(1000), got[2].Start)
	assert.Equal(t, int64(1200), got[2].End)

	for _, g := range got {
		switch {
		case g.IsForwardStrand():
			assert.LessOrEqual(t, g.Start, g.End)
		case g.IsReverseStrand():
			assert.GreaterOrEqual(t, g.Start, g.End)
		}
	}
}

func TestExtract_Names(t *testing.T) {
	tbl := newTable(
		gff.Record{Type: "CDS", Start: 100, End: 500, Strand: "+", Attributes: "ID=a;gene=thrA;locus_tag=b0002;product=aspartate kinase"},
		gff.Record{Type: "CDS", Start: 600, End: 900, Strand: "-", Attributes: "ID=b;locus_tag=b0005"},
		gff.Record{Type: "repeat_region", Start: 950, End: 990, Strand: "+", Attributes: "ID=c;locus_tag=r1"},
		gff.Record{Type: "tRNA", Start: 1000, End: 1070, Strand: "+", Attributes: "ID=d"},
	)

	got := Extract(tbl)
	require.Len(t, got, 4)

	assert.Equal(t, "thrA", got[0].Gene)
	assert.Equal(t, "b0002", got[0].LocusTag)
	assert.Equal(t, "thrA", got[0].GeneOrLocus)
	assert.Equal(t, "aspartate kinase", got[0].Product)

	assert.Equal(t, "", got[1].Gene)
	assert.Equal(t, "b0005", got[1].GeneOrLocus)

	// The repeat label replaces the gene name after the fallback is derived.
	assert.Equal(t, RepeatLabel, got[2].Gene)
	assert.Equal(t, "r1", got[2].GeneOrLocus)
	assert.True(t, got[2].IsRepeat())

	assert.Equal(t, "", got[3].GeneOrLocus)

	for _, g := range got[:2] {
		if g.Gene != "" {
			assert.Equal(t, g.Gene, g.GeneOrLocus)
		} else {
			assert.Equal(t, g.LocusTag, g.GeneOrLocus)
		}
	}
}

func TestExtract_Empty(t *testing.T) {
	got := Extract(&gff.Table{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtract_SampleFile(t *testing.T) {
	tbl, err := gff.NewLoader("../../testdata/sample.gff3").Load(nil)
	require.NoError(t, err)

	got := Extract(tbl)
	require.Len(t, got, 9)

	byLocus := map[string]Gene{}
	for _, g := range got {
		byLocus[g.LocusTag] = g
	}
	assert.Equal(t, "thrB", byLocus["b0003"].Gene, "Gene= key is matched")
	assert.Equal(t, "b0005", byLocus["b0005"].GeneOrLocus)
	assert.Equal(t, int64(6459), byLocus["b0006"].Start)
}

func TestGeneMidpoint(t *testing.T) {
	g := Gene{Left: 100, Right: 501}
	assert.Equal(t, 300.5, g.Midpoint())
}
