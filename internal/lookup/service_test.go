package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioFile = "chr1\t100\t200\tGENE_A\n" +
	"chr1\t150\t250\tGENE_B\n" +
	"chr2\t10\t20\tGENE_C\n"

func writeAnnotation(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genes.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// checkScenario runs the reference queries against a service; both backends
// must produce identical answers.
func checkScenario(t *testing.T, svc *Service) {
	t.Helper()

	cases := []struct {
		chrom string
		pos   int64
		want  string
	}{
		{"chr1", 160, "GENE_A"}, // overlapping: first in file order
		{"chr1", 120, "GENE_A"},
		{"chr1", 220, "GENE_B"},
		{"chr1", 100, ""}, // exclusive start bound
		{"chr3", 5, ""},   // chromosome absent
		{"chr2", 25, ""},  // position absent
	}
	for _, c := range cases {
		name, err := svc.Lookup(c.chrom, c.pos)
		require.NoError(t, err, "%s:%d", c.chrom, c.pos)
		assert.Equal(t, c.want, name, "%s:%d", c.chrom, c.pos)
	}
}

func TestService_InMemoryBackend(t *testing.T) {
	svc, err := New(writeAnnotation(t, scenarioFile), Config{})
	require.NoError(t, err)
	defer svc.Close()

	checkScenario(t, svc)
}

func TestService_StoreBackend(t *testing.T) {
	// A threshold of 1 puts the 3-line file at/above threshold, forcing
	// the persistent store path.
	svc, err := New(writeAnnotation(t, scenarioFile), Config{
		LineThreshold: 1,
		StorePath:     filepath.Join(t.TempDir(), "genes.duckdb"),
	})
	require.NoError(t, err)
	defer svc.Close()

	checkScenario(t, svc)
}

func TestService_ThresholdBoundary(t *testing.T) {
	// Exactly at the threshold the store backend must be chosen: the
	// default store path sits next to the annotation file.
	path := writeAnnotation(t, scenarioFile)
	svc, err := New(path, Config{LineThreshold: 3})
	require.NoError(t, err)
	defer svc.Close()

	checkScenario(t, svc)
	_, err = os.Stat(path + ".duckdb")
	assert.NoError(t, err, "store created at default path")
}

func TestService_BelowThresholdStaysInMemory(t *testing.T) {
	path := writeAnnotation(t, scenarioFile)
	svc, err := New(path, Config{LineThreshold: 4})
	require.NoError(t, err)
	defer svc.Close()

	checkScenario(t, svc)
	_, err = os.Stat(path + ".duckdb")
	assert.True(t, os.IsNotExist(err), "no store file for the in-memory path")
}

func TestService_ConstructionErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.tsv"), Config{})
	require.Error(t, err, "missing annotation file")

	_, err = New(writeAnnotation(t, "chr1\tabc\t200\tGENE_A\n"), Config{})
	require.Error(t, err, "non-integer bound aborts construction")
}

func TestService_MalformedLinesTolerated(t *testing.T) {
	content := "chr1\t100\t200\tGENE_A\nshort\tline\n"
	svc, err := New(writeAnnotation(t, content), Config{})
	require.NoError(t, err)
	defer svc.Close()

	name, err := svc.Lookup("chr1", 150)
	require.NoError(t, err)
	assert.Equal(t, "GENE_A", name)
}
