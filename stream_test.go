package loopgo

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/feature"
	"github.com/hupe1980/loopgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameExtractor returns frames[i] for an image whose first pixel is i.
func frameExtractor(frames []testutil.Frame) feature.Extractor[feature.Binary] {
	return feature.ExtractorFunc[feature.Binary](func(img *image.Gray) ([]feature.Keypoint, []feature.Binary, error) {
		if img == nil {
			return nil, nil, feature.ErrNilImage
		}
		f := frames[img.Pix[0]]
		return f.Keypoints, f.Descriptors, nil
	})
}

func imagesOf(n int) <-chan image.Image {
	ch := make(chan image.Image, n)
	for i := range n {
		ch <- testutil.Blank(4, 4, uint8(i))
	}
	close(ch)
	return ch
}

func TestStream(t *testing.T) {
	w := newWorld(t, 11)
	frames := w.sequence(10)
	frames = append(frames, w.revisit(frames[0]))

	t.Run("DetectsInOrder", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		det := w.detector(t, testParameters(), WithMetricsCollector(metrics))

		var got []StreamResult
		err := NewStream(det, frameExtractor(frames), WithRate(1000)).Run(context.Background(), imagesOf(len(frames)), func(r StreamResult) error {
			got = append(got, r)
			return nil
		})
		require.NoError(t, err)

		require.Len(t, got, len(frames))
		for i, r := range got {
			assert.Equal(t, i, r.Index)
			assert.Equal(t, frameSize, r.Features)
		}
		assert.Equal(t, LoopDetected, got[10].Status)
		assert.Equal(t, int64(len(frames)), metrics.GetStats().ExtractionCount)
		assert.Equal(t, int64(len(frames)*frameSize), metrics.GetStats().ExtractedFeatures)
	})

	t.Run("Stride", func(t *testing.T) {
		det := w.detector(t, testParameters())

		var indices []int
		err := NewStream(det, frameExtractor(frames), WithStride(3)).Run(context.Background(), imagesOf(len(frames)), func(r StreamResult) error {
			indices = append(indices, r.Index)
			assert.Equal(t, core.FrameID(len(indices)-1), r.Query)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 3, 6, 9}, indices)
		assert.Equal(t, 4, det.Len())
	})

	t.Run("ExtractionError", func(t *testing.T) {
		boom := errors.New("boom")
		ex := feature.ExtractorFunc[feature.Binary](func(img *image.Gray) ([]feature.Keypoint, []feature.Binary, error) {
			if img.Pix[0] == 3 {
				return nil, nil, boom
			}
			return frameExtractor(frames).Extract(img)
		})

		var n int
		err := NewStream(w.detector(t, testParameters()), ex).Run(context.Background(), imagesOf(len(frames)), func(StreamResult) error {
			n++
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.LessOrEqual(t, n, 3)
	})

	t.Run("CallbackError", func(t *testing.T) {
		stop := errors.New("stop")
		var n int
		err := NewStream(w.detector(t, testParameters()), frameExtractor(frames)).Run(context.Background(), imagesOf(len(frames)), func(StreamResult) error {
			n++
			if n == 2 {
				return stop
			}
			return nil
		})
		require.ErrorIs(t, err, stop)
		assert.Equal(t, 2, n)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Never closed: only cancellation ends the run.
		images := make(chan image.Image)
		err := NewStream(w.detector(t, testParameters()), frameExtractor(frames)).Run(ctx, images, func(StreamResult) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NilImage", func(t *testing.T) {
		images := make(chan image.Image, 1)
		images <- nil
		close(images)

		err := NewStream(w.detector(t, testParameters()), frameExtractor(frames)).Run(context.Background(), images, func(StreamResult) error {
			return nil
		})
		assert.ErrorIs(t, err, feature.ErrNilImage)
	})
}
