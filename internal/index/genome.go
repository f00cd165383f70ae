package index

import (
	"errors"
	"sort"

	"github.com/inodb/vibe-gene/internal/annotation"
)

// Query-time not-found conditions. Both are recoverable; callers translate
// them into an empty result plus a diagnostic.
var (
	ErrChromosomeNotFound = errors.New("chromosome not found in index")
	ErrPositionNotFound   = errors.New("no feature covers position")
)

// GenomeIndex maps chromosome names to their feature indexes.
// Built once from a single pass over an annotation file; immutable after
// Build returns, and therefore safe for concurrent readers.
type GenomeIndex struct {
	chromosomes map[string]*ChromosomeIndex
	skipped     int // malformed lines dropped during the build
}

// BuildOptions tunes index construction.
type BuildOptions struct {
	// TreeCutoff is the per-chromosome record count at which point queries
	// use the interval tree instead of a linear scan. Zero means the
	// default; negative disables the tree entirely.
	TreeCutoff int
}

// Build streams the annotation file once and constructs the index.
// Open failures and non-integer start/end fields are fatal.
func Build(path string, opts BuildOptions) (*GenomeIndex, error) {
	cutoff := opts.TreeCutoff
	if cutoff == 0 {
		cutoff = treeCutoffDefault
	}

	gi := &GenomeIndex{chromosomes: make(map[string]*ChromosomeIndex)}

	stats, err := annotation.ParseFile(path, func(rec annotation.Record) error {
		ci, ok := gi.chromosomes[rec.Chrom]
		if !ok {
			ci = &ChromosomeIndex{}
			gi.chromosomes[rec.Chrom] = ci
		}
		ci.Append(rec.Feature)
		return nil
	})
	if err != nil {
		return nil, err
	}
	gi.skipped = stats.Skipped

	for _, ci := range gi.chromosomes {
		ci.Freeze(cutoff)
	}
	return gi, nil
}

// Query returns the name of the first feature covering pos on chrom.
// Returns ErrChromosomeNotFound or ErrPositionNotFound on the two
// not-found conditions.
func (gi *GenomeIndex) Query(chrom string, pos int64) (string, error) {
	ci, ok := gi.chromosomes[chrom]
	if !ok {
		return "", ErrChromosomeNotFound
	}
	name, ok := ci.Query(pos)
	if !ok {
		return "", ErrPositionNotFound
	}
	return name, nil
}

// Chromosomes returns a sorted list of chromosomes in the index.
func (gi *GenomeIndex) Chromosomes() []string {
	chroms := make([]string, 0, len(gi.chromosomes))
	for chrom := range gi.chromosomes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FeatureCount returns the total number of features in the index.
func (gi *GenomeIndex) FeatureCount() int {
	count := 0
	for _, ci := range gi.chromosomes {
		count += ci.Len()
	}
	return count
}

// SkippedLines returns the number of malformed lines dropped during build.
func (gi *GenomeIndex) SkippedLines() int {
	return gi.skipped
}
