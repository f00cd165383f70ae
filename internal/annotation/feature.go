// Package annotation provides parsing of tab-separated genome annotation files.
package annotation

// Feature represents one named genomic span from an annotation file.
type Feature struct {
	Start int64  // Feature start position
	End   int64  // Feature end position
	Name  string // Feature name (e.g., gene symbol)
}

// Covers returns true if pos lies strictly between the feature boundaries.
// Both bounds are exclusive: pos == Start or pos == End does not match.
// A record with Start >= End can never cover any position.
func (f Feature) Covers(pos int64) bool {
	return pos > f.Start && pos < f.End
}
