package testutil

import (
	"image"
	"image/color"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/loopgo/feature"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		//nolint:gosec
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// BinaryDescriptors generates num random binary descriptors of size bytes.
// Uses a single backing array for efficiency.
func (r *RNG) BinaryDescriptors(num, size int) []feature.Binary {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, num*size)
	r.rand.Read(data)
	out := make([]feature.Binary, num)
	for i := range num {
		out[i] = data[i*size : (i+1)*size : (i+1)*size]
	}
	return out
}

// Noisy returns a copy of d with flips randomly chosen bits inverted.
func (r *RNG) Noisy(d feature.Binary, flips int) feature.Binary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := slices.Clone(d)
	for _, bit := range r.rand.Perm(len(d) * 8)[:min(flips, len(d)*8)] {
		out[bit>>3] ^= 1 << (bit & 7)
	}
	return out
}

// Pools partitions word indices [0, words) into n disjoint pools of size each.
// The partition is a seeded shuffle, so pools are not contiguous index ranges.
func (r *RNG) Pools(words, n, size int) [][]int {
	perm := r.Perm(words)
	pools := make([][]int, n)
	for i := range n {
		pools[i] = perm[i*size : (i+1)*size]
	}
	return pools
}

// Frame is a synthetic set of keypoints with one descriptor each.
type Frame struct {
	Keypoints   []feature.Keypoint
	Descriptors []feature.Binary
}

// Place samples count descriptors from the given word pool, each a noisy
// copy (flips bits) of one of the words, with keypoints scattered over a
// width x height image.
func (r *RNG) Place(words []feature.Binary, pool []int, count, flips, width, height int) Frame {
	f := Frame{
		Keypoints:   make([]feature.Keypoint, count),
		Descriptors: make([]feature.Binary, count),
	}
	for i := range count {
		w := pool[i%len(pool)]
		f.Descriptors[i] = r.Noisy(words[w], flips)
		f.Keypoints[i] = feature.NewKeypoint(r.Intn(width), r.Intn(height), 31, float64(count-i))
	}
	return f
}

// Revisit returns a copy of f with every descriptor re-noised (flips bits)
// and every keypoint translated by (dx, dy).
func (r *RNG) Revisit(f Frame, flips int, dx, dy float64) Frame {
	out := Frame{
		Keypoints:   slices.Clone(f.Keypoints),
		Descriptors: make([]feature.Binary, len(f.Descriptors)),
	}
	for i, d := range f.Descriptors {
		out.Descriptors[i] = r.Noisy(d, flips)
		out.Keypoints[i].Pt.X += dx
		out.Keypoints[i].Pt.Y += dy
	}
	return out
}

// Shuffle returns a copy of f whose keypoint locations are randomly permuted
// while descriptors stay in place, destroying spatial correspondence.
func (r *RNG) Shuffle(f Frame) Frame {
	out := Frame{
		Keypoints:   make([]feature.Keypoint, len(f.Keypoints)),
		Descriptors: slices.Clone(f.Descriptors),
	}
	for i, j := range r.Perm(len(f.Keypoints)) {
		out.Keypoints[i] = f.Keypoints[j]
	}
	return out
}

// Scene renders a width x height grayscale image of rects random
// axis-aligned rectangles on a mid-gray background. Rectangle corners are
// strong FAST corners.
func (r *RNG) Scene(width, height, rects int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	for range rects {
		w := 8 + r.Intn(width/4)
		h := 8 + r.Intn(height/4)
		x := r.Intn(width - w)
		y := r.Intn(height - h)
		var shade color.Gray
		if r.Intn(2) == 0 {
			shade.Y = uint8(20 + r.Intn(60))
		} else {
			shade.Y = uint8(180 + r.Intn(60))
		}
		for yy := y; yy < y+h; yy++ {
			for xx := x; xx < x+w; xx++ {
				img.SetGray(xx, yy, shade)
			}
		}
	}
	return img
}

// Blank returns a uniform width x height grayscale image without features.
func Blank(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}
