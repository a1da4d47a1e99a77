// Package queue provides bounded top-k selection of scored frames.
package queue

import "github.com/hupe1980/loopgo/core"

// Item is a scored frame.
type Item struct {
	Frame core.FrameID
	Score float64
}

// better reports whether a ranks before b: higher score first, then lower frame.
func better(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Frame < b.Frame
}

// TopK keeps the k best items pushed so far.
// The root of the heap is the worst retained item.
type TopK struct {
	k     int
	items []Item
}

// NewTopK creates a selector for the k best items. k <= 0 keeps everything.
func NewTopK(k int) *TopK {
	c := k
	if c <= 0 {
		c = 16
	}
	return &TopK{k: k, items: make([]Item, 0, c)}
}

// Len returns the number of retained items.
func (q *TopK) Len() int { return len(q.items) }

// Push offers an item; it is kept if fewer than k items are held or it beats the worst.
func (q *TopK) Push(it Item) {
	if q.k <= 0 || len(q.items) < q.k {
		q.items = append(q.items, it)
		q.siftUp(len(q.items) - 1)
		return
	}
	if !better(it, q.items[0]) {
		return
	}
	q.items[0] = it
	q.siftDown(0)
}

// Worst returns the lowest ranked retained item.
func (q *TopK) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Sorted drains the queue and returns the items best first.
func (q *TopK) Sorted() []Item {
	out := make([]Item, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *TopK) pop() Item {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if n > 1 {
		q.siftDown(0)
	}
	return root
}

// less orders the heap so the worst item is at the root.
func (q *TopK) less(i, j int) bool {
	return better(q.items[j], q.items[i])
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		if r := l + 1; r < n && q.less(r, l) {
			worst = r
		}
		if !q.less(worst, i) {
			return
		}
		q.items[i], q.items[worst] = q.items[worst], q.items[i]
		i = worst
	}
}
