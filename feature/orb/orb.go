// Package orb implements the ORB-style extractor variant: FAST corners with
// an intensity-centroid orientation, described by a BRIEF pattern rotated to
// that orientation.
//
// The sampling pattern is generated from a fixed seed at construction, so two
// extractors with the same seed produce compatible descriptors.
package orb

import (
	"errors"
	"image"
	"math"

	"github.com/hupe1980/loopgo/feature"
)

const (
	// DefaultMaxFeatures is the feature budget when WithMaxFeatures is not given.
	DefaultMaxFeatures = 500
	// DefaultPatchSize is the side of the square patch the pattern is drawn from.
	DefaultPatchSize = 31
	// DefaultSeed seeds the sampling pattern.
	DefaultSeed int64 = 0x0b5
	// DescriptorBits is the descriptor length.
	DescriptorBits = 256
)

type options struct {
	maxFeatures   int
	fastThreshold int
	patchSize     int
	seed          int64
}

// Option configures an Extractor.
type Option func(*options)

// WithMaxFeatures bounds the number of keypoints returned per image.
func WithMaxFeatures(n int) Option {
	return func(o *options) { o.maxFeatures = n }
}

// WithFASTThreshold sets the corner detector intensity threshold.
func WithFASTThreshold(th int) Option {
	return func(o *options) { o.fastThreshold = th }
}

// WithPatchSize sets the patch side used for orientation and sampling.
func WithPatchSize(n int) Option {
	return func(o *options) { o.patchSize = n }
}

// WithSeed sets the seed of the sampling pattern.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// Extractor computes oriented BRIEF descriptors at FAST corners.
// It is immutable and safe for concurrent use.
type Extractor struct {
	pattern  feature.Pattern
	detector *feature.FAST
	radius   int
	border   int
	opts     options
}

var _ feature.Extractor[feature.Binary] = (*Extractor)(nil)

// New creates an Extractor.
func New(optFns ...Option) (*Extractor, error) {
	o := options{
		maxFeatures:   DefaultMaxFeatures,
		fastThreshold: feature.DefaultFASTThreshold,
		patchSize:     DefaultPatchSize,
		seed:          DefaultSeed,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.maxFeatures <= 0 {
		return nil, feature.NewConfigError("max features", errors.New("must be positive"))
	}
	if o.patchSize < 7 {
		return nil, feature.NewConfigError("patch size", errors.New("must be at least 7"))
	}

	p := feature.RandomPattern(DescriptorBits, o.patchSize, o.seed)
	radius := o.patchSize / 2
	// Steered offsets reach up to sqrt(2) times the unrotated reach.
	reach := int(math.Ceil(float64(p.Reach()) * math.Sqrt2))

	return &Extractor{
		pattern:  p,
		detector: &feature.FAST{Threshold: o.fastThreshold, NonmaxSuppression: true},
		radius:   radius,
		border:   max(radius, reach+feature.DefaultSmoothingRadius),
		opts:     o,
	}, nil
}

// Pattern returns the unrotated sampling pattern.
func (e *Extractor) Pattern() feature.Pattern { return e.pattern }

// MaxFeatures returns the per-image feature budget.
func (e *Extractor) MaxFeatures() int { return e.opts.maxFeatures }

// Extract detects up to MaxFeatures corners, orients and describes each one.
func (e *Extractor) Extract(img *image.Gray) ([]feature.Keypoint, []feature.Binary, error) {
	if img == nil {
		return nil, nil, feature.ErrNilImage
	}

	kps := feature.FilterBorder(e.detector.Detect(img), img.Bounds(), e.border)
	kps = feature.RetainBest(kps, e.opts.maxFeatures)

	ii := feature.NewIntegral(img)
	descs := make([]feature.Binary, len(kps))
	for i := range kps {
		kps[i].Size = float64(e.opts.patchSize)
		kps[i].Angle = orientation(img, kps[i].Pixel(), e.radius)
		descs[i] = e.pattern.Describe(ii, kps[i], feature.DefaultSmoothingRadius, true)
	}
	return kps, descs, nil
}

// orientation returns the angle in radians from c to the intensity centroid
// of the disc of the given radius.
func orientation(img *image.Gray, c image.Point, radius int) float64 {
	var m01, m10 int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		row := img.PixOffset(c.X, c.Y+dy)
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			v := int(img.Pix[row+dx])
			m10 += dx * v
			m01 += dy * v
		}
	}
	return math.Atan2(float64(m01), float64(m10))
}
