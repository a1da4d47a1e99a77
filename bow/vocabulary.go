package bow

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/feature"
	"github.com/hupe1980/loopgo/internal/kmeans"
)

// ErrEmptyVocabulary is returned when a vocabulary has no words.
var ErrEmptyVocabulary = errors.New("vocabulary has no words")

// Vocabulary quantizes descriptors to weighted visual words.
// Implementations must be deterministic and safe for concurrent use.
type Vocabulary[D feature.Descriptor] interface {
	// Transform returns the word of d and the weight it contributes.
	Transform(d D) (core.WordID, float64)
	// Size returns the number of words.
	Size() int
}

// Hierarchy is implemented by vocabularies whose words are leaves of a tree.
type Hierarchy interface {
	// NodeAt returns the ancestor of word levelsUp levels above it.
	// levelsUp <= 0 returns the word itself.
	NodeAt(word core.WordID, levelsUp int) core.NodeID
}

// FlatVocabulary holds its words in a single list with an implicit tree on
// top: word w sits under node w / branching^l at l levels up.
type FlatVocabulary[D feature.Descriptor] struct {
	words     []D
	weights   []float64
	branching int
}

var (
	_ Vocabulary[feature.Binary] = (*FlatVocabulary[feature.Binary])(nil)
	_ Hierarchy                  = (*FlatVocabulary[feature.Binary])(nil)
)

// NewFlatVocabulary creates a vocabulary from words and their weights.
// A nil weights slice gives every word weight 1.
func NewFlatVocabulary[D feature.Descriptor](words []D, weights []float64, branching int) (*FlatVocabulary[D], error) {
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if weights == nil {
		weights = make([]float64, len(words))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(words) {
		return nil, fmt.Errorf("vocabulary: %d weights for %d words", len(weights), len(words))
	}
	if branching < 2 {
		branching = 10
	}
	return &FlatVocabulary[D]{words: words, weights: weights, branching: branching}, nil
}

// Transform returns the nearest word by native distance. Ties go to the lower id.
func (v *FlatVocabulary[D]) Transform(d D) (core.WordID, float64) {
	w := kmeans.Assign(d, v.words)
	return core.WordID(w), v.weights[w]
}

// Size returns the number of words.
func (v *FlatVocabulary[D]) Size() int { return len(v.words) }

// Word returns the centroid of word w.
func (v *FlatVocabulary[D]) Word(w core.WordID) D { return v.words[w] }

// Weight returns the weight of word w.
func (v *FlatVocabulary[D]) Weight(w core.WordID) float64 { return v.weights[w] }

// NodeAt implements Hierarchy.
func (v *FlatVocabulary[D]) NodeAt(word core.WordID, levelsUp int) core.NodeID {
	node := uint64(word)
	for range max(levelsUp, 0) {
		node /= uint64(v.branching)
	}
	return core.NodeID(node)
}

// TrainOptions configures Train.
type TrainOptions struct {
	// Words is the vocabulary size.
	Words int
	// Branching is the fan-out of the implicit tree used by NodeAt.
	Branching int
	// MaxIterations bounds the clustering iterations.
	MaxIterations int
	// Seed makes training reproducible.
	Seed int64
}

// Train clusters the descriptors of a set of training images into words and
// weights each word by its inverse document frequency log(N / n_w), where
// n_w counts the images containing w.
//
// Train is a small flat k-means meant for demos and tests. Production
// vocabularies are trained offline and loaded with NewFlatVocabulary.
func Train[D feature.Descriptor](images [][]D, opts TrainOptions) (*FlatVocabulary[D], error) {
	var all []D
	for _, img := range images {
		all = append(all, img...)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 25
	}

	words, err := kmeans.Train(all, opts.Words, opts.MaxIterations, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}

	docs := make([]int, len(words))
	for _, img := range images {
		seen := make(map[int]struct{})
		for _, d := range img {
			seen[kmeans.Assign(d, words)] = struct{}{}
		}
		for w := range seen {
			docs[w]++
		}
	}

	weights := make([]float64, len(words))
	for w, n := range docs {
		if n > 0 {
			weights[w] = math.Log(float64(len(images)) / float64(n))
		}
	}
	return NewFlatVocabulary(words, weights, opts.Branching)
}
