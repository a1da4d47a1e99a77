package loopgo

import (
	"context"
	"testing"

	"github.com/hupe1980/loopgo/testutil"
)

func benchmarkDetect(b *testing.B, check GeometricCheck) {
	b.Helper()
	b.ReportAllocs()

	w := newWorld(b, 99)
	places := w.sequence(numPools)
	revisits := make([]testutil.Frame, len(places))
	for i, f := range places {
		revisits[i] = w.revisit(f)
	}

	p := testParameters()
	p.GeometricCheck = check
	det := w.detector(b, p)

	ctx := context.Background()
	for _, f := range places {
		if _, err := det.Detect(ctx, f.Keypoints, f.Descriptors); err != nil {
			b.Fatal(err)
		}
	}

	i := 0
	b.ResetTimer()
	for b.Loop() {
		f := revisits[i%len(revisits)]
		if _, err := det.Detect(ctx, f.Keypoints, f.Descriptors); err != nil {
			b.Fatal(err)
		}
		i++
	}
}

func BenchmarkDetect(b *testing.B) {
	b.Run("None", func(b *testing.B) { benchmarkDetect(b, GeometryNone) })
	b.Run("DirectIndex", func(b *testing.B) { benchmarkDetect(b, GeometryDirectIndex) })
	b.Run("FundamentalMatrix", func(b *testing.B) { benchmarkDetect(b, GeometryFundamentalMatrix) })
}
