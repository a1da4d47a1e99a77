package brief

import (
	"errors"
	"image"

	"github.com/hupe1980/loopgo/feature"
)

// DefaultMaxFeatures is the feature budget when WithMaxFeatures is not given.
const DefaultMaxFeatures = 500

type options struct {
	maxFeatures   int
	fastThreshold int
	smoothing     int
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

// WithSmoothing sets the half-size of the smoothing box.
func WithSmoothing(r int) Option {
	return func(o *options) { o.smoothing = r }
}

// Extractor computes BRIEF descriptors at FAST corners.
// It is immutable and safe for concurrent use.
type Extractor struct {
	pattern  feature.Pattern
	detector *feature.FAST
	opts     options
}

var _ feature.Extractor[feature.Binary] = (*Extractor)(nil)

// New creates an Extractor for the given comparison pattern.
func New(pattern feature.Pattern, optFns ...Option) (*Extractor, error) {
	o := options{
		maxFeatures:   DefaultMaxFeatures,
		fastThreshold: feature.DefaultFASTThreshold,
		smoothing:     feature.DefaultSmoothingRadius,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if len(pattern) == 0 {
		return nil, feature.NewConfigError("pattern", errPatternShape)
	}
	if o.maxFeatures <= 0 {
		return nil, feature.NewConfigError("max features", errors.New("must be positive"))
	}
	if o.smoothing < 0 {
		return nil, feature.NewConfigError("smoothing", errors.New("must not be negative"))
	}

	return &Extractor{
		pattern:  pattern,
		detector: &feature.FAST{Threshold: o.fastThreshold, NonmaxSuppression: true},
		opts:     o,
	}, nil
}

// Pattern returns the comparison pattern.
func (e *Extractor) Pattern() feature.Pattern { return e.pattern }

// MaxFeatures returns the per-image feature budget.
func (e *Extractor) MaxFeatures() int { return e.opts.maxFeatures }

// Extract detects up to MaxFeatures corners and describes each one.
func (e *Extractor) Extract(img *image.Gray) ([]feature.Keypoint, []feature.Binary, error) {
	if img == nil {
		return nil, nil, feature.ErrNilImage
	}

	// Only corners whose smoothed sampling patch is inside the image are kept.
	border := e.pattern.Reach() + e.opts.smoothing
	kps := feature.FilterBorder(e.detector.Detect(img), img.Bounds(), border)
	kps = feature.RetainBest(kps, e.opts.maxFeatures)

	ii := feature.NewIntegral(img)
	descs := make([]feature.Binary, len(kps))
	for i, kp := range kps {
		descs[i] = e.pattern.Describe(ii, kp, e.opts.smoothing, false)
	}
	return kps, descs, nil
}
