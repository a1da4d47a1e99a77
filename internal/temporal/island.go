// Package temporal groups database matches into islands of neighbouring
// frames and tracks how many consecutive queries matched the same region.
package temporal

import (
	"cmp"
	"slices"

	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/core"
)

// Island is a run of matched frames with small gaps between them.
type Island struct {
	First, Last core.FrameID
	// Best is the highest scoring frame of the island.
	Best      core.FrameID
	BestScore float64
	// Score is the sum of the member scores.
	Score float64
}

// Span returns the number of frames the island covers.
func (i Island) Span() int { return int(i.Last-i.First) + 1 }

// near reports whether the ranges of a and b overlap or are at most gap frames apart.
func near(a, b Island, gap int) bool {
	if a.First <= b.Last && b.First <= a.Last {
		return true
	}
	var d core.FrameID
	if a.First > b.Last {
		d = a.First - b.Last
	} else {
		d = b.First - a.Last
	}
	return int(d) <= gap
}

// ComputeIslands groups results by frame. Consecutive frames closer than
// maxGap join the same island. Islands covering fewer than minSpan frames are
// dropped, except that a single result always forms an island. The islands
// are returned by score descending, then by first frame.
func ComputeIslands(results []bow.Result, maxGap, minSpan int) []Island {
	if len(results) == 0 {
		return nil
	}
	if len(results) == 1 {
		r := results[0]
		return []Island{{First: r.Frame, Last: r.Frame, Best: r.Frame, BestScore: r.Score, Score: r.Score}}
	}

	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b bow.Result) int { return cmp.Compare(a.Frame, b.Frame) })

	var islands []Island
	cur := Island{First: sorted[0].Frame, Last: sorted[0].Frame, Best: sorted[0].Frame, BestScore: sorted[0].Score, Score: sorted[0].Score}
	flush := func() {
		if cur.Span() >= minSpan {
			islands = append(islands, cur)
		}
	}
	for _, r := range sorted[1:] {
		if int(r.Frame-cur.Last) < maxGap {
			cur.Last = r.Frame
			cur.Score += r.Score
			if r.Score > cur.BestScore {
				cur.Best, cur.BestScore = r.Frame, r.Score
			}
			continue
		}
		flush()
		cur = Island{First: r.Frame, Last: r.Frame, Best: r.Frame, BestScore: r.Score, Score: r.Score}
	}
	flush()

	slices.SortStableFunc(islands, func(a, b Island) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.First, b.First)
	})
	return islands
}
