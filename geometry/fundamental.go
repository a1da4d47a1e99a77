package geometry

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const sampleSize = 8

var (
	// ErrTooFewCorrespondences is returned when there are not enough
	// correspondences to estimate or accept a model.
	ErrTooFewCorrespondences = errors.New("too few correspondences")
	// ErrNoModel is returned when no sample produced a usable model.
	ErrNoModel = errors.New("no fundamental matrix found")
)

// FundamentalConfig configures FundamentalVerifier.
type FundamentalConfig struct {
	// Width and Height of the images, used to normalize coordinates.
	// Zero derives the extent from the correspondences.
	Width, Height int
	// MinInliers is the number of inliers required to accept.
	MinInliers int
	// MaxIterations bounds the RANSAC iterations.
	MaxIterations int
	// Probability of drawing at least one outlier-free sample; lowers the
	// iteration count as the inlier ratio grows.
	Probability float64
	// Threshold is the largest accepted epipolar distance in pixels.
	Threshold float64
	// Seed makes estimation reproducible.
	Seed int64
}

// FundamentalVerifier accepts correspondences that agree with a fundamental
// matrix estimated by RANSAC over normalized 8-point solutions.
// It is safe for concurrent use.
type FundamentalVerifier struct {
	cfg FundamentalConfig
}

var _ InlierVerifier = (*FundamentalVerifier)(nil)

// NewFundamentalVerifier creates a verifier. Zero fields take defaults.
func NewFundamentalVerifier(cfg FundamentalConfig) *FundamentalVerifier {
	cfg.MinInliers = max(cfg.MinInliers, sampleSize)
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 500
	}
	if cfg.Probability <= 0 || cfg.Probability >= 1 {
		cfg.Probability = 0.99
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 2
	}
	return &FundamentalVerifier{cfg: cfg}
}

// Verify reports whether enough correspondences support one fundamental matrix.
func (v *FundamentalVerifier) Verify(corrs []Correspondence) bool {
	_, ok := v.VerifyInliers(corrs)
	return ok
}

// VerifyInliers returns the inlier count of the best model and whether it is accepted.
func (v *FundamentalVerifier) VerifyInliers(corrs []Correspondence) (int, bool) {
	_, inliers, err := v.Estimate(corrs)
	if err != nil {
		return len(inliers), false
	}
	return len(inliers), len(inliers) >= v.cfg.MinInliers
}

// Estimate runs RANSAC and returns the best fundamental matrix F, with
// Train^T F Query = 0, and the indices of its inliers.
func (v *FundamentalVerifier) Estimate(corrs []Correspondence) (*mat.Dense, []int, error) {
	n := len(corrs)
	if n < sampleSize || n < v.cfg.MinInliers {
		return nil, nil, ErrTooFewCorrespondences
	}

	t1, t2 := v.normalizers(corrs)
	q := make([][3]float64, n)
	t := make([][3]float64, n)
	for i, c := range corrs {
		q[i] = apply(t1, c.Query.X, c.Query.Y)
		t[i] = apply(t2, c.Train.X, c.Train.Y)
	}

	//nolint:gosec
	rng := rand.New(rand.NewSource(v.cfg.Seed))
	thSq := v.cfg.Threshold * v.cfg.Threshold

	var bestF *mat.Dense
	var best []int
	iterations := v.cfg.MaxIterations
	for it := 0; it < iterations; it++ {
		sample := sampleDistinct(rng, n)
		fn, ok := eightPoint(q, t, sample[:])
		if !ok {
			continue
		}
		f := denormalize(fn, t1, t2)

		inliers := make([]int, 0, len(best)+1)
		for i, c := range corrs {
			if epipolarDistSq(f, c) <= thSq {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) > len(best) {
			best, bestF = inliers, f
			iterations = min(iterations, adaptiveIterations(len(best), n, v.cfg.Probability))
		}
	}

	if bestF == nil {
		return nil, nil, ErrNoModel
	}
	return bestF, best, nil
}

// adaptiveIterations returns the number of samples needed to draw an
// all-inlier sample with probability p at the given inlier ratio.
func adaptiveIterations(inliers, n int, p float64) int {
	w := float64(inliers) / float64(n)
	pw := math.Pow(w, sampleSize)
	if pw >= 1 {
		return 0
	}
	if pw <= 0 {
		return math.MaxInt
	}
	k := math.Log(1-p) / math.Log(1-pw)
	if k > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(k))
}

func sampleDistinct(rng *rand.Rand, n int) [sampleSize]int {
	var idx [sampleSize]int
	for i := 0; i < sampleSize; i++ {
		for {
			idx[i] = rng.Intn(n)
			unique := true
			for j := 0; j < i; j++ {
				if idx[i] == idx[j] {
					unique = false
					break
				}
			}
			if unique {
				break
			}
		}
	}
	return idx
}

// normalizers map image coordinates of each side to [-1, 1].
func (v *FundamentalVerifier) normalizers(corrs []Correspondence) (*mat.Dense, *mat.Dense) {
	w, h := float64(v.cfg.Width), float64(v.cfg.Height)
	if w <= 0 || h <= 0 {
		for _, c := range corrs {
			w = max(w, c.Query.X, c.Train.X)
			h = max(h, c.Query.Y, c.Train.Y)
		}
		w, h = max(w, 1), max(h, 1)
	}
	t := mat.NewDense(3, 3, []float64{
		2 / w, 0, -1,
		0, 2 / h, -1,
		0, 0, 1,
	})
	return t, t
}

func apply(t *mat.Dense, x, y float64) [3]float64 {
	return [3]float64{
		t.At(0, 0)*x + t.At(0, 1)*y + t.At(0, 2),
		t.At(1, 0)*x + t.At(1, 1)*y + t.At(1, 2),
		1,
	}
}

// eightPoint solves t^T F q = 0 for the sampled pairs and enforces rank 2.
func eightPoint(q, t [][3]float64, sample []int) (*mat.Dense, bool) {
	a := mat.NewDense(len(sample), 9, nil)
	for r, i := range sample {
		x1, y1 := q[i][0], q[i][1]
		x2, y2 := t[i][0], t[i][1]
		a.SetRow(r, []float64{x2 * x1, x2 * y1, x2, y2 * x1, y2 * y1, y2, x1, y1, 1})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, false
	}
	var vt mat.Dense
	svd.VTo(&vt)
	f := mat.NewDense(3, 3, mat.Col(nil, 8, &vt))

	// Rank 2: zero the smallest singular value.
	var fs mat.SVD
	if !fs.Factorize(f, mat.SVDFull) {
		return nil, false
	}
	var u, vv mat.Dense
	fs.UTo(&u)
	fs.VTo(&vv)
	s := fs.Values(nil)
	d := mat.NewDiagDense(3, []float64{s[0], s[1], 0})

	var out mat.Dense
	out.Product(&u, d, vv.T())
	return &out, true
}

// denormalize returns T2^T Fn T1.
func denormalize(fn, t1, t2 *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Product(t2.T(), fn, t1)
	return &out
}

// epipolarDistSq returns the larger squared distance of each point to the
// epipolar line induced by the other.
func epipolarDistSq(f *mat.Dense, c Correspondence) float64 {
	x1, y1 := c.Query.X, c.Query.Y
	x2, y2 := c.Train.X, c.Train.Y

	// l2 = F q, line in the train image.
	a2 := f.At(0, 0)*x1 + f.At(0, 1)*y1 + f.At(0, 2)
	b2 := f.At(1, 0)*x1 + f.At(1, 1)*y1 + f.At(1, 2)
	c2 := f.At(2, 0)*x1 + f.At(2, 1)*y1 + f.At(2, 2)

	// l1 = F^T t, line in the query image.
	a1 := f.At(0, 0)*x2 + f.At(1, 0)*y2 + f.At(2, 0)
	b1 := f.At(0, 1)*x2 + f.At(1, 1)*y2 + f.At(2, 1)

	num := a2*x2 + b2*y2 + c2
	num *= num

	n2 := a2*a2 + b2*b2
	n1 := a1*a1 + b1*b1
	if n1 == 0 || n2 == 0 {
		return math.Inf(1)
	}
	return max(num/n2, num/n1)
}
