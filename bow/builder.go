package bow

import (
	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/feature"
)

// Builder converts descriptor sets into normalized vectors.
type Builder[D feature.Descriptor] struct {
	voc    Vocabulary[D]
	levels int
	direct bool
}

// NewBuilder creates a builder. When direct is true, Build also returns a
// direct index at levels above the words (0 indexes words directly).
func NewBuilder[D feature.Descriptor](voc Vocabulary[D], direct bool, levels int) *Builder[D] {
	return &Builder[D]{voc: voc, direct: direct, levels: levels}
}

// Build quantizes descs, sums per-word weights and L1-normalizes the vector.
// Words with zero weight are not added. The direct index is nil unless
// enabled.
func (b *Builder[D]) Build(descs []D) (Vector, DirectIndex) {
	v := make(Vector)
	var di DirectIndex
	if b.direct {
		di = make(DirectIndex)
	}

	h, _ := b.voc.(Hierarchy)
	for i, d := range descs {
		w, weight := b.voc.Transform(d)
		if weight > 0 {
			v[w] += weight
		}
		if di != nil {
			node := core.NodeID(w)
			if h != nil {
				node = h.NodeAt(w, b.levels)
			}
			di[node] = append(di[node], i)
		}
	}

	v.Normalize()
	return v, di
}
