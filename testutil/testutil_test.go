package testutil

import (
	"testing"

	"github.com/hupe1980/loopgo/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryDescriptors(t *testing.T) {
	rng := NewRNG(4711)

	d := rng.BinaryDescriptors(8, 32)

	require.Len(t, d, 8)
	for _, v := range d {
		assert.Len(t, v, 32)
	}
	assert.NotEqual(t, d[0], d[1])
}

func TestNoisy(t *testing.T) {
	rng := NewRNG(4711)
	d := rng.BinaryDescriptors(1, 32)[0]

	n := rng.Noisy(d, 5)

	assert.Equal(t, 5, feature.Hamming(d, n))
}

func TestPoolsAreDisjoint(t *testing.T) {
	rng := NewRNG(1)

	pools := rng.Pools(100, 4, 20)

	seen := map[int]bool{}
	for _, p := range pools {
		require.Len(t, p, 20)
		for _, w := range p {
			assert.False(t, seen[w])
			seen[w] = true
		}
	}
}

func TestShuffleKeepsDescriptors(t *testing.T) {
	rng := NewRNG(2)
	words := rng.BinaryDescriptors(16, 32)
	f := rng.Place(words, []int{0, 1, 2, 3}, 12, 0, 640, 480)

	s := rng.Shuffle(f)

	assert.Equal(t, f.Descriptors, s.Descriptors)
	assert.ElementsMatch(t, f.Keypoints, s.Keypoints)
}
