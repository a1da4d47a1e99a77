package feature

import (
	"math"
	"math/rand"
)

// Pair is one intensity comparison of a BRIEF test: bit = I(p+(X1,Y1)) < I(p+(X2,Y2)).
type Pair struct {
	X1, Y1, X2, Y2 int
}

// Pattern is an ordered set of BRIEF comparisons. The order defines the bit
// layout of the descriptors, so descriptors are only comparable when computed
// with the same pattern.
type Pattern []Pair

// DefaultSmoothingRadius is the half-size of the box used to smooth the
// intensities compared by a pattern (5x5 box).
const DefaultSmoothingRadius = 2

// Bits returns the descriptor length in bits.
func (p Pattern) Bits() int { return len(p) }

// Bytes returns the descriptor length in bytes.
func (p Pattern) Bytes() int { return (len(p) + 7) / 8 }

// Reach returns the largest absolute offset of any test point. Rotated
// patterns reach up to sqrt(2) times further.
func (p Pattern) Reach() int {
	var r int
	for _, t := range p {
		r = max(r, abs(t.X1), abs(t.Y1), abs(t.X2), abs(t.Y2))
	}
	return r
}

// Describe computes the descriptor of kp. When steered is true, test offsets
// are rotated by kp.Angle.
func (p Pattern) Describe(ii *Integral, kp Keypoint, smooth int, steered bool) Binary {
	d := make(Binary, p.Bytes())
	c := kp.Pixel()
	sin, cos := 0.0, 1.0
	if steered {
		sin, cos = math.Sincos(kp.Angle)
	}
	rot := func(x, y int) (int, int) {
		if !steered {
			return x, y
		}
		fx, fy := float64(x), float64(y)
		return int(math.Round(fx*cos - fy*sin)), int(math.Round(fx*sin + fy*cos))
	}
	for i, t := range p {
		x1, y1 := rot(t.X1, t.Y1)
		x2, y2 := rot(t.X2, t.Y2)
		if ii.BoxSum(c.X+x1, c.Y+y1, smooth) < ii.BoxSum(c.X+x2, c.Y+y2, smooth) {
			d.SetBit(i)
		}
	}
	return d
}

// RandomPattern draws n comparisons from an isotropic Gaussian with standard
// deviation patchSize/5, clipped to the patch (BRIEF sampling strategy G II).
// The same seed always yields the same pattern.
func RandomPattern(n, patchSize int, seed int64) Pattern {
	//nolint:gosec
	rng := rand.New(rand.NewSource(seed))
	half := patchSize / 2
	sigma := float64(patchSize) / 5
	sample := func() int {
		v := int(math.Round(rng.NormFloat64() * sigma))
		return max(-half, min(half, v))
	}
	p := make(Pattern, n)
	for i := range p {
		p[i] = Pair{X1: sample(), Y1: sample(), X2: sample(), Y2: sample()}
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
