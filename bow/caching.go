package bow

import (
	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/feature"
	"github.com/hupe1980/loopgo/internal/cache"
)

type wordWeight struct {
	word   core.WordID
	weight float64
}

// CachingVocabulary memoizes Transform through an LRU cache keyed by the
// descriptor bytes. Revisited places repeat many descriptors exactly.
type CachingVocabulary[D feature.Descriptor] struct {
	inner Vocabulary[D]
	lru   *cache.LRU[string, wordWeight]
}

// NewCachingVocabulary wraps inner with a cache of the given capacity.
func NewCachingVocabulary[D feature.Descriptor](inner Vocabulary[D], capacity int) *CachingVocabulary[D] {
	return &CachingVocabulary[D]{
		inner: inner,
		lru:   cache.NewLRU[string, wordWeight](capacity),
	}
}

// Transform returns the cached word of d, quantizing on a miss.
func (c *CachingVocabulary[D]) Transform(d D) (core.WordID, float64) {
	key := feature.Key(d)
	if ww, ok := c.lru.Get(key); ok {
		return ww.word, ww.weight
	}
	w, weight := c.inner.Transform(d)
	c.lru.Set(key, wordWeight{word: w, weight: weight})
	return w, weight
}

// Size returns the size of the wrapped vocabulary.
func (c *CachingVocabulary[D]) Size() int { return c.inner.Size() }

// NodeAt forwards to the wrapped vocabulary, or returns the word when it has no hierarchy.
func (c *CachingVocabulary[D]) NodeAt(word core.WordID, levelsUp int) core.NodeID {
	if h, ok := c.inner.(Hierarchy); ok {
		return h.NodeAt(word, levelsUp)
	}
	return core.NodeID(word)
}

// Stats returns the cache hit and miss counts.
func (c *CachingVocabulary[D]) Stats() (hits, misses int64) {
	return c.lru.Stats()
}
