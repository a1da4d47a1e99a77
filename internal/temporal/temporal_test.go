package temporal

import (
	"testing"

	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIslands(t *testing.T) {
	results := []bow.Result{
		{Frame: 12, Score: 0.4},
		{Frame: 10, Score: 0.5},
		{Frame: 11, Score: 0.9},
		{Frame: 30, Score: 0.3},
		{Frame: 14, Score: 0.2},
		{Frame: 50, Score: 1.0},
		{Frame: 52, Score: 0.7},
	}

	islands := ComputeIslands(results, 3, 1)

	require.Len(t, islands, 3)
	assert.Equal(t, Island{First: 10, Last: 14, Best: 11, BestScore: 0.9, Score: 2.0}, roundScore(islands[0]))
	assert.Equal(t, Island{First: 50, Last: 52, Best: 50, BestScore: 1.0, Score: 1.7}, roundScore(islands[1]))
	assert.Equal(t, Island{First: 30, Last: 30, Best: 30, BestScore: 0.3, Score: 0.3}, islands[2])
	assert.Equal(t, 5, islands[0].Span())
}

func roundScore(i Island) Island {
	i.Score = float64(int(i.Score*1e9+0.5)) / 1e9
	return i
}

func TestComputeIslandsGapIsExclusive(t *testing.T) {
	results := []bow.Result{{Frame: 0, Score: 1}, {Frame: 3, Score: 1}}

	assert.Len(t, ComputeIslands(results, 3, 1), 2)
	assert.Len(t, ComputeIslands(results, 4, 1), 1)
}

func TestComputeIslandsMinSpan(t *testing.T) {
	results := []bow.Result{
		{Frame: 0, Score: 1},
		{Frame: 1, Score: 1},
		{Frame: 2, Score: 1},
		{Frame: 20, Score: 5},
	}

	islands := ComputeIslands(results, 2, 3)
	require.Len(t, islands, 1)
	assert.Equal(t, core.FrameID(0), islands[0].First)

	// A lone result is always an island.
	single := ComputeIslands(results[3:], 2, 3)
	require.Len(t, single, 1)
	assert.Equal(t, core.FrameID(20), single[0].Best)

	assert.Empty(t, ComputeIslands(nil, 2, 1))
}

func TestWindow(t *testing.T) {
	w := NewWindow(2, 3)
	isl := func(first, last core.FrameID) []Island {
		return []Island{{First: first, Last: last, Best: first}}
	}

	assert.Equal(t, 1, w.Update(100, isl(10, 12))[0].Length)
	assert.Equal(t, 2, w.Update(101, isl(12, 14))[0].Length) // overlap
	assert.Equal(t, 3, w.Update(103, isl(17, 18))[0].Length) // 3 frames apart
	assert.Equal(t, 1, w.Update(104, isl(40, 41))[0].Length) // different place
	assert.Equal(t, 1, w.Update(110, isl(40, 41))[0].Length) // queries too far apart

	w.Reset()
	assert.Empty(t, w.Chains())
	assert.Equal(t, 1, w.Update(111, isl(40, 41))[0].Length)
}

func TestWindowTracksIslandsIndependently(t *testing.T) {
	w := NewWindow(2, 3)

	w.Update(1, []Island{{First: 10, Last: 11}, {First: 50, Last: 51}})
	w.Update(2, []Island{{First: 11, Last: 12}})
	chains := w.Update(3, []Island{{First: 51, Last: 52}, {First: 12, Last: 13}})

	require.Len(t, chains, 2)
	// The 50s region was absent in call 2, so its chain restarts.
	assert.Equal(t, 1, chains[0].Length)
	assert.Equal(t, 3, chains[1].Length)
}
