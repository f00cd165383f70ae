package annotation

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string) ([]Record, Stats) {
	t.Helper()
	var records []Record
	stats, err := Parse(strings.NewReader(input), func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	return records, stats
}

func TestParse_BasicRecords(t *testing.T) {
	input := "chr1\t100\t200\tGENE_A\nchr1\t150\t250\tGENE_B\nchr2\t10\t20\tGENE_C\n"
	records, stats := collect(t, input)

	require.Len(t, records, 3)
	assert.Equal(t, Record{Chrom: "chr1", Feature: Feature{Start: 100, End: 200, Name: "GENE_A"}}, records[0])
	assert.Equal(t, Record{Chrom: "chr1", Feature: Feature{Start: 150, End: 250, Name: "GENE_B"}}, records[1])
	assert.Equal(t, Record{Chrom: "chr2", Feature: Feature{Start: 10, End: 20, Name: "GENE_C"}}, records[2])
	assert.Equal(t, 3, stats.Lines)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 0, stats.Skipped)
}

func TestParse_SkipsShortLines(t *testing.T) {
	input := "chr1\t100\t200\tGENE_A\n" +
		"chr1\t100\t200\n" + // 3 fields
		"just one field\n" +
		"\n" +
		"chr2\t10\t20\tGENE_C\n"
	records, stats := collect(t, input)

	require.Len(t, records, 2)
	assert.Equal(t, "GENE_A", records[0].Feature.Name)
	assert.Equal(t, "GENE_C", records[1].Feature.Name)
	assert.Equal(t, 3, stats.Skipped)
}

func TestParse_ExtraFieldsIgnored(t *testing.T) {
	input := "chr1\t100\t200\tGENE_A\t+\t0.9\n"
	records, _ := collect(t, input)

	require.Len(t, records, 1)
	assert.Equal(t, "GENE_A", records[0].Feature.Name)
}

func TestParse_NonIntegerBoundsFatal(t *testing.T) {
	input := "chr1\t100\t200\tGENE_A\nchr1\tabc\t200\tGENE_B\n"
	count := 0
	_, err := Parse(strings.NewReader(input), func(Record) error {
		count++
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, 1, count, "records before the bad line are still delivered")

	_, err = Parse(strings.NewReader("chr1\t100\t2.5e3\tGENE_A\n"), func(Record) error { return nil })
	require.Error(t, err, "float end field is fatal")
}

func TestParse_NoWhitespaceNormalization(t *testing.T) {
	input := "chr1 \t100\t200\t GENE_A\n"
	records, _ := collect(t, input)

	require.Len(t, records, 1)
	assert.Equal(t, "chr1 ", records[0].Chrom)
	assert.Equal(t, " GENE_A", records[0].Feature.Name)
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.tsv"), func(Record) error { return nil })
	require.Error(t, err)
}

func TestParseFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("chr1\t100\t200\tGENE_A\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	var records []Record
	_, err = ParseFile(path, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "GENE_A", records[0].Feature.Name)
}

func TestCountLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	n, err := CountLines(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFeature_Covers(t *testing.T) {
	f := Feature{Start: 100, End: 200, Name: "GENE_A"}

	assert.True(t, f.Covers(150))
	assert.True(t, f.Covers(101))
	assert.True(t, f.Covers(199))
	assert.False(t, f.Covers(100), "start bound exclusive")
	assert.False(t, f.Covers(200), "end bound exclusive")
	assert.False(t, f.Covers(99))
	assert.False(t, f.Covers(201))

	inverted := Feature{Start: 200, End: 100}
	assert.False(t, inverted.Covers(150), "inverted interval matches nothing")

	empty := Feature{Start: 100, End: 100}
	assert.False(t, empty.Covers(100), "empty interval matches nothing")
}
