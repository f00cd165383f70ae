package index

import (
	"sort"

	"github.com/inodb/vibe-gene/internal/annotation"
)

// intervalTree provides O(log n + k) point queries using a sorted-slice
// approach. Features are loaded once and never modified after build.
//
// Each interval carries its original file rank; query returns the covering
// interval with the smallest rank, so results are identical to a linear
// scan in file order even when features overlap.
type intervalTree struct {
	intervals []treeInterval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type treeInterval struct {
	start int64
	end   int64
	rank  int // position in the source file's ordering for this chromosome
	name  string
}

// buildIntervalTree creates an interval tree from features in file order.
func buildIntervalTree(features []annotation.Feature) *intervalTree {
	if len(features) == 0 {
		return &intervalTree{}
	}

	intervals := make([]treeInterval, len(features))
	for i, f := range features {
		intervals[i] = treeInterval{start: f.Start, end: f.End, rank: i, name: f.Name}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[:i+1]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &intervalTree{intervals: intervals, maxEnd: maxEnd}
}

// query returns the name of the minimum-rank interval strictly containing
// pos (start < pos < end), or ("", false) if none does.
func (t *intervalTree) query(pos int64) (string, bool) {
	if len(t.intervals) == 0 {
		return "", false
	}

	// Binary search: first index with start >= pos. Strict containment
	// needs start < pos, so candidates are [0, hi).
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start >= pos
	})

	best := -1
	name := ""
	for i := hi - 1; i >= 0; i-- {
		// Prune: maxEnd[i] bounds every end in intervals[:i+1].
		// If it does not reach past pos, nothing earlier can either.
		if t.maxEnd[i] <= pos {
			break
		}
		if t.intervals[i].end > pos {
			if best == -1 || t.intervals[i].rank < best {
				best = t.intervals[i].rank
				name = t.intervals[i].name
			}
		}
	}
	if best == -1 {
		return "", false
	}
	return name, true
}
