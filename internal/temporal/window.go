package temporal

import "github.com/hupe1980/loopgo/core"

// Chain is an island together with the number of consecutive grouping
// calls that matched its region.
type Chain struct {
	Island
	Length int
}

// Window carries chains from one grouping call to the next.
// It is not safe for concurrent use.
type Window struct {
	maxQueryGap int
	maxGroupGap int

	lastQuery core.FrameID
	started   bool
	chains    []Chain
}

// NewWindow creates a window. A chain continues when the previous call was at
// most maxQueryGap frames earlier and its island overlaps or lies within
// maxGroupGap frames of the new one.
func NewWindow(maxQueryGap, maxGroupGap int) *Window {
	return &Window{maxQueryGap: maxQueryGap, maxGroupGap: maxGroupGap}
}

// Update records the islands of query and returns one chain per island, in
// island order. Each continues the longest matching chain of the previous
// call, or starts at length 1.
func (w *Window) Update(query core.FrameID, islands []Island) []Chain {
	recent := w.started && query > w.lastQuery && int(query-w.lastQuery) <= w.maxQueryGap

	chains := make([]Chain, len(islands))
	for i, isl := range islands {
		chains[i] = Chain{Island: isl, Length: 1}
		if !recent {
			continue
		}
		for _, prev := range w.chains {
			if near(isl, prev.Island, w.maxGroupGap) && prev.Length+1 > chains[i].Length {
				chains[i].Length = prev.Length + 1
			}
		}
	}

	w.chains = chains
	w.lastQuery = query
	w.started = true
	return chains
}

// Chains returns the chains recorded by the last Update.
func (w *Window) Chains() []Chain { return w.chains }

// Reset forgets all chains.
func (w *Window) Reset() {
	w.chains = nil
	w.started = false
}
