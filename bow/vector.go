package bow

import (
	"maps"
	"math"
	"slices"

	"github.com/hupe1980/loopgo/core"
)

// Vector is a sparse bag-of-words vector: word to weight.
type Vector map[core.WordID]float64

// Result is one database match.
type Result struct {
	Frame core.FrameID
	Score float64
}

// DirectIndex maps a vocabulary node to the indices of the keypoints whose
// descriptors fell under it, in keypoint order.
type DirectIndex map[core.NodeID][]int

// Words returns the words of v in ascending order.
func (v Vector) Words() []core.WordID {
	return slices.Sorted(maps.Keys(v))
}

// Normalize scales v to unit L1 norm. Empty or all-zero vectors are left as is.
func (v Vector) Normalize() {
	var norm float64
	for _, w := range v.Words() {
		norm += math.Abs(v[w])
	}
	if norm == 0 {
		return
	}
	for w := range v {
		v[w] /= norm
	}
}

// Score returns the L1 similarity of two L1-normalized vectors.
// Only common words contribute: 0.5 * sum(|a|+|b|-|a-b|) over the intersection
// equals 1 - 0.5*|a-b|_1 for normalized inputs.
func Score(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for _, w := range a.Words() {
		bw, ok := b[w]
		if !ok {
			continue
		}
		aw := a[w]
		s += math.Abs(aw) + math.Abs(bw) - math.Abs(aw-bw)
	}
	return s / 2
}
