package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/internal/queue"
)

// ErrDuplicateFrame is returned when a frame is added twice.
var ErrDuplicateFrame = errors.New("frame already in database")

// Memory is an in-memory inverted file. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	postings map[core.WordID]*roaring.Bitmap
	vectors  map[core.FrameID]bow.Vector
	frames   *roaring.Bitmap
}

// NewMemory creates an empty database.
func NewMemory() *Memory {
	return &Memory{
		postings: make(map[core.WordID]*roaring.Bitmap),
		vectors:  make(map[core.FrameID]bow.Vector),
		frames:   roaring.New(),
	}
}

// Add stores vec under frame. The vector is retained; callers must not modify it.
func (m *Memory) Add(_ context.Context, frame core.FrameID, vec bow.Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.frames.Contains(uint32(frame)) {
		return fmt.Errorf("%w: %d", ErrDuplicateFrame, frame)
	}
	m.insert(frame, vec)
	return nil
}

func (m *Memory) insert(frame core.FrameID, vec bow.Vector) {
	m.frames.Add(uint32(frame))
	m.vectors[frame] = vec
	for w := range vec {
		bm, ok := m.postings[w]
		if !ok {
			bm = roaring.New()
			m.postings[w] = bm
		}
		bm.Add(uint32(frame))
	}
}

// Query returns up to maxResults frames no newer than maxFrame that share a
// word with vec, ranked by score descending and frame ascending. A
// non-positive maxResults returns every match.
func (m *Memory) Query(ctx context.Context, vec bow.Vector, maxResults int, maxFrame core.FrameID) ([]bow.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := m.candidates(vec, maxFrame)

	top := queue.NewTopK(maxResults)
	it := candidates.Iterator()
	for n := 0; it.HasNext(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		frame := core.FrameID(it.Next())
		if s := bow.Score(vec, m.vectors[frame]); s > 0 {
			top.Push(queue.Item{Frame: frame, Score: s})
		}
	}

	items := top.Sorted()
	results := make([]bow.Result, len(items))
	for i, it := range items {
		results[i] = bow.Result{Frame: it.Frame, Score: it.Score}
	}
	return results, nil
}

// candidates unions the postings of vec's words and drops frames above maxFrame.
func (m *Memory) candidates(vec bow.Vector, maxFrame core.FrameID) *roaring.Bitmap {
	lists := make([]*roaring.Bitmap, 0, len(vec))
	for _, w := range vec.Words() {
		if bm, ok := m.postings[w]; ok {
			lists = append(lists, bm)
		}
	}
	union := roaring.FastOr(lists...)
	union.RemoveRange(uint64(maxFrame)+1, math.MaxUint32+1)
	return union
}

// Size returns the number of stored frames.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int(m.frames.GetCardinality())
}

// Contains reports whether frame is stored.
func (m *Memory) Contains(frame core.FrameID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frames.Contains(uint32(frame))
}

// Vector returns the stored vector of frame.
func (m *Memory) Vector(frame core.FrameID) (bow.Vector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[frame]
	return v, ok
}

// WordFrequency returns the number of frames containing word.
func (m *Memory) WordFrequency(word core.WordID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if bm, ok := m.postings[word]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}
