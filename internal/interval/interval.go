// Package interval stabilizes raw talking intervals into the disjoint,
// minimum-held "ducking intervals" the volume envelope evaluates against.
// Running this before envelope evaluation is what lets the envelope use
// nearest-interval distances instead of a per-frame convolution.
package interval

import "sort"

// Interval is a half-open frame span [Start, End).
type Interval struct {
	Start int
	End   int
}

// Stabilize sorts raw by Start, extends each interval to at least
// minHoldFrames wide (capped at maxEndFrame), then folds together any pair
// of adjacent intervals separated by no more than mergeGapFrames. The result
// is sorted, pairwise-disjoint, and stable under repeated application.
func Stabilize(raw []Interval, mergeGapFrames, minHoldFrames, maxEndFrame int) []Interval {
	if len(raw) == 0 {
		return nil
	}

	sorted := make([]Interval, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	held := make([]Interval, len(sorted))
	for i, iv := range sorted {
		end := iv.End
		if minHeld := iv.Start + minHoldFrames; end < minHeld {
			end = minHeld
		}
		if end > maxEndFrame {
			end = maxEndFrame
		}
		held[i] = Interval{Start: iv.Start, End: end}
	}

	folded := make([]Interval, 0, len(held))
	cur := held[0]
	for _, iv := range held[1:] {
		if iv.Start <= cur.End+mergeGapFrames {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		folded = append(folded, cur)
		cur = iv
	}
	folded = append(folded, cur)
	return folded
}
