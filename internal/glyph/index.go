package glyph

import (
	"sort"

	"github.com/inodb/genome-track/internal/genes"
)

// Index provides window queries over genes using a sorted-slice approach.
// Genes are indexed once and never modified after build.
type Index struct {
	intervals []interval
	maxRight  []int64 // maxRight[i] = max(right) for intervals[:i+1]
}

type interval struct {
	left  int64
	right int64
	ord   int // position in the input slice
}

// BuildIndex creates a window index over genes keyed by Left/Right.
func BuildIndex(gs []genes.Gene) *Index {
	if len(gs) == 0 {
		return &Index{}
	}

	intervals := make([]interval, len(gs))
	for i := range gs {
		intervals[i] = interval{left: gs[i].Left, right: gs[i].Right, ord: i}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].left < intervals[j].left
	})

	// Build prefix-max array: maxRight[i] = max(right) for intervals[:i+1]
	maxRight := make([]int64, len(intervals))
	maxRight[0] = intervals[0].right
	for i := 1; i < len(intervals); i++ {
		maxRight[i] = max(maxRight[i-1], intervals[i].right)
	}

	return &Index{intervals: intervals, maxRight: maxRight}
}

// Window returns the input positions of genes with Right > left and Left < right,
// in input order.
func (x *Index) Window(left, right int64) []int {
	if len(x.intervals) == 0 {
		return nil
	}

	// hi is the first index with left >= right; candidates are [0, hi).
	hi := sort.Search(len(x.intervals), func(i int) bool {
		return x.intervals[i].left >= right
	})

	var result []int
	for i := hi - 1; i >= 0; i-- {
		// Prune: no interval in [0, i] reaches past left.
		if x.maxRight[i] <= left {
			break
		}
		if x.intervals[i].right > left {
			result = append(result, x.intervals[i].ord)
		}
	}

	sort.Ints(result)
	return result
}
