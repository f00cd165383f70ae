// Package index provides the in-memory genome feature index.
package index

import "github.com/inodb/vibe-gene/internal/annotation"

// treeCutoffDefault is the per-chromosome record count at which queries
// switch from linear scan to the interval tree.
const treeCutoffDefault = 64

// ChromosomeIndex holds the features of one chromosome in file order.
// Append-only during build; query-only afterward.
type ChromosomeIndex struct {
	features []annotation.Feature
	tree     *intervalTree
}

// Append adds a feature. Must not be called after Freeze.
func (ci *ChromosomeIndex) Append(f annotation.Feature) {
	ci.features = append(ci.features, f)
}

// Freeze marks the end of the build phase. Chromosomes with many records
// get an interval tree; queries on the rest stay a linear scan.
func (ci *ChromosomeIndex) Freeze(treeCutoff int) {
	if treeCutoff > 0 && len(ci.features) >= treeCutoff {
		ci.tree = buildIntervalTree(ci.features)
	}
}

// Query returns the name of the first feature, in file order, that strictly
// covers pos, or ("", false) if none does.
func (ci *ChromosomeIndex) Query(pos int64) (string, bool) {
	if ci.tree != nil {
		return ci.tree.query(pos)
	}
	for _, f := range ci.features {
		if f.Covers(pos) {
			return f.Name, true
		}
	}
	return "", false
}

// Len returns the number of features in this chromosome.
func (ci *ChromosomeIndex) Len() int {
	return len(ci.features)
}
