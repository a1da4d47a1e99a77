package geometry

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/feature"
)

// Correspondence pairs a query keypoint with a candidate keypoint.
type Correspondence struct {
	Query, Train           r2.Point
	QueryIndex, TrainIndex int
	Distance               float64
}

// MatchOptions configures descriptor matching.
type MatchOptions struct {
	// MaxDistance is the largest accepted native descriptor distance.
	// Zero disables the limit.
	MaxDistance float64
	// MaxRatio is the largest accepted best/second-best distance ratio.
	// Zero disables the test.
	MaxRatio float64
}

// Frame is the keypoints and descriptors of one image.
type Frame[D feature.Descriptor] struct {
	Keypoints   []feature.Keypoint
	Descriptors []D
}

// Match finds correspondences between every query and every train descriptor.
func Match[D feature.Descriptor](query, train Frame[D], opts MatchOptions) []Correspondence {
	qi := indices(len(query.Descriptors))
	ti := indices(len(train.Descriptors))
	return resolve(query, train, matchSets(query.Descriptors, train.Descriptors, qi, ti, opts))
}

// MatchDirect finds correspondences only between descriptors that share a
// node in the two direct indexes.
func MatchDirect[D feature.Descriptor](query, train Frame[D], qdi, tdi bow.DirectIndex, opts MatchOptions) []Correspondence {
	var cands []candidate
	for _, node := range slices.Sorted(maps.Keys(qdi)) {
		ti, ok := tdi[node]
		if !ok {
			continue
		}
		cands = append(cands, matchSets(query.Descriptors, train.Descriptors, qdi[node], ti, opts)...)
	}
	return resolve(query, train, cands)
}

type candidate struct {
	q, t int
	dist float64
}

func matchSets[D feature.Descriptor](qd, td []D, qi, ti []int, opts MatchOptions) []candidate {
	var out []candidate
	for _, q := range qi {
		best, second := math.Inf(1), math.Inf(1)
		bestIdx := -1
		for _, t := range ti {
			d := feature.Distance(qd[q], td[t])
			switch {
			case d < best:
				second = best
				best, bestIdx = d, t
			case d < second:
				second = d
			}
		}
		if bestIdx < 0 {
			continue
		}
		if opts.MaxDistance > 0 && best > opts.MaxDistance {
			continue
		}
		if opts.MaxRatio > 0 && !math.IsInf(second, 1) {
			if second == 0 || best/second > opts.MaxRatio {
				continue
			}
		}
		out = append(out, candidate{q: q, t: bestIdx, dist: best})
	}
	return out
}

// resolve keeps the closest query for each train keypoint and returns the
// surviving correspondences in query order.
func resolve[D feature.Descriptor](query, train Frame[D], cands []candidate) []Correspondence {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.q, b.q)
	})

	usedQ := make(map[int]bool, len(cands))
	usedT := make(map[int]bool, len(cands))
	out := make([]Correspondence, 0, len(cands))
	for _, c := range cands {
		if usedQ[c.q] || usedT[c.t] {
			continue
		}
		usedQ[c.q], usedT[c.t] = true, true
		out = append(out, Correspondence{
			Query:      query.Keypoints[c.q].Pt,
			Train:      train.Keypoints[c.t].Pt,
			QueryIndex: c.q,
			TrainIndex: c.t,
			Distance:   c.dist,
		})
	}

	slices.SortFunc(out, func(a, b Correspondence) int { return cmp.Compare(a.QueryIndex, b.QueryIndex) })
	return out
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
