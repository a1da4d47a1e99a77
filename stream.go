package loopgo

import (
	"context"
	"fmt"
	"image"

	"github.com/hupe1980/loopgo/feature"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// StreamResult is the outcome for one image of a stream.
type StreamResult struct {
	DetectionResult
	// Index is the position of the image in the input sequence.
	Index int
	// Features is the number of extracted keypoints.
	Features int
}

type streamOptions struct {
	stride  int
	limiter *rate.Limiter
}

// StreamOption configures a Stream.
type StreamOption func(*streamOptions)

// WithStride processes only every n-th image, starting with the first.
func WithStride(n int) StreamOption {
	return func(o *streamOptions) {
		o.stride = n
	}
}

// WithRate limits extraction to fps images per second.
func WithRate(fps float64) StreamOption {
	return func(o *streamOptions) {
		if fps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(fps), 1)
		}
	}
}

// Stream extracts features from a sequence of images and feeds them to a
// Detector. Extraction of the next image overlaps detection of the current
// one; detections still run one at a time in input order.
type Stream[D feature.Descriptor] struct {
	det  *Detector[D]
	ex   feature.Extractor[D]
	opts streamOptions
}

// NewStream creates a stream feeding det with features from ex.
func NewStream[D feature.Descriptor](det *Detector[D], ex feature.Extractor[D], optFns ...StreamOption) *Stream[D] {
	o := streamOptions{stride: 1}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.stride < 1 {
		o.stride = 1
	}
	return &Stream[D]{det: det, ex: ex, opts: o}
}

type extracted[D feature.Descriptor] struct {
	index       int
	keypoints   []feature.Keypoint
	descriptors []D
}

// Run consumes images until the channel is closed, calling fn with every
// detection result. It stops at the first error from extraction, detection
// or fn, or when ctx is done.
func (s *Stream[D]) Run(ctx context.Context, images <-chan image.Image, fn func(StreamResult) error) error {
	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan extracted[D], 1)

	g.Go(func() error {
		defer close(frames)

		for index := 0; ; index++ {
			var img image.Image
			select {
			case <-gctx.Done():
				return gctx.Err()
			case next, ok := <-images:
				if !ok {
					return nil
				}
				img = next
			}
			if index%s.opts.stride != 0 {
				continue
			}
			if s.opts.limiter != nil {
				if err := s.opts.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			var gray *image.Gray
			if img != nil {
				gray = feature.ToGray(img)
			}

			start := s.det.clock()
			kps, descs, err := s.ex.Extract(gray)
			if err != nil {
				return fmt.Errorf("extract image %d: %w", index, err)
			}
			s.det.metrics.RecordExtraction(len(kps), s.det.clock().Sub(start))

			select {
			case frames <- extracted[D]{index: index, keypoints: kps, descriptors: descs}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	processed, loops := 0, 0
	g.Go(func() error {
		for f := range frames {
			res, err := s.det.Detect(gctx, f.keypoints, f.descriptors)
			if err != nil {
				return fmt.Errorf("detect image %d: %w", f.index, err)
			}
			processed++
			if res.Detected() {
				loops++
			}
			if err := fn(StreamResult{DetectionResult: res, Index: f.index, Features: len(f.keypoints)}); err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	s.det.logger.LogStream(ctx, processed, loops, err)
	return err
}
