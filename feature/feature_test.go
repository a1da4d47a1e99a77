package feature

import (
	"errors"
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetainBest(t *testing.T) {
	kps := []Keypoint{
		NewKeypoint(0, 0, 7, 5),
		NewKeypoint(1, 0, 7, 9),
		NewKeypoint(2, 0, 7, 5),
		NewKeypoint(3, 0, 7, 1),
		NewKeypoint(4, 0, 7, 5),
	}

	t.Run("Truncates", func(t *testing.T) {
		got := RetainBest(kps, 3)
		require.Len(t, got, 3)
		assert.Equal(t, 9.0, got[0].Response)
		// Ties keep detection order.
		assert.Equal(t, 0.0, got[1].Pt.X)
		assert.Equal(t, 2.0, got[2].Pt.X)
	})

	t.Run("KeepsAllBelowLimit", func(t *testing.T) {
		got := RetainBest(kps, 10)
		assert.Equal(t, kps, got)
	})

	t.Run("NonPositiveLimit", func(t *testing.T) {
		assert.Len(t, RetainBest(kps, 0), len(kps))
	})

	t.Run("DoesNotModifyInput", func(t *testing.T) {
		_ = RetainBest(kps, 2)
		assert.Equal(t, 5.0, kps[0].Response)
	})
}

func TestFilterBorder(t *testing.T) {
	kps := []Keypoint{
		NewKeypoint(2, 50, 7, 1),
		NewKeypoint(50, 50, 7, 1),
		NewKeypoint(97, 50, 7, 1),
	}

	got := FilterBorder(kps, image.Rect(0, 0, 100, 100), 5)

	require.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].Pt.X)
}

func TestDistance(t *testing.T) {
	t.Run("Hamming", func(t *testing.T) {
		a := Binary{0xFF, 0x00, 0x0F, 0, 0, 0, 0, 0, 0x01}
		b := Binary{0x00, 0x00, 0x0F, 0, 0, 0, 0, 0, 0x00}
		assert.Equal(t, 9.0, Distance(a, b))
		assert.Equal(t, MetricHamming, MetricOf[Binary]())
	})

	t.Run("L2", func(t *testing.T) {
		a := Real{0, 3}
		b := Real{4, 0}
		assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
		assert.Equal(t, MetricL2, MetricOf[Real]())
	})

	t.Run("Bits", func(t *testing.T) {
		d := make(Binary, 2)
		d.SetBit(9)
		assert.True(t, d.Bit(9))
		assert.False(t, d.Bit(8))
		assert.Equal(t, byte(0x02), d[1])
	})
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key(Real{1, 2}), Key(Real{1, 2}))
	assert.NotEqual(t, Key(Real{1, 2}), Key(Real{2, 1}))
	assert.Equal(t, "\x01\x02", Key(Binary{1, 2}))
}

func TestIntegral(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 1
	}
	img.Pix[img.PixOffset(1, 1)] = 10

	ii := NewIntegral(img)

	assert.Equal(t, uint32(9-1+10), ii.BoxSum(1, 1, 1))
	// Clipped at the corner.
	assert.Equal(t, uint32(4), ii.BoxSum(3, 3, 1))
}

func TestFASTDetectsSquareCorners(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 50
	}
	for y := 20; y < 44; y++ {
		for x := 20; x < 44; x++ {
			img.Pix[img.PixOffset(x, y)] = 220
		}
	}

	fast := &FAST{Threshold: 10, NonmaxSuppression: true}
	kps := fast.Detect(img)

	require.NotEmpty(t, kps)
	near := func(x, y int) bool {
		for _, kp := range kps {
			p := kp.Pixel()
			if abs(p.X-x) <= 2 && abs(p.Y-y) <= 2 {
				return true
			}
		}
		return false
	}
	assert.True(t, near(20, 20))
	assert.True(t, near(43, 20))
	assert.True(t, near(20, 43))
	assert.True(t, near(43, 43))
	for _, kp := range kps {
		assert.Greater(t, kp.Response, 0.0)
	}
}

func TestFASTFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	fast := &FAST{}
	assert.Empty(t, fast.Detect(img))
}

func TestRandomPatternDeterministic(t *testing.T) {
	a := RandomPattern(256, 31, 7)
	b := RandomPattern(256, 31, 7)

	assert.Equal(t, a, b)
	assert.Equal(t, 32, a.Bytes())
	assert.LessOrEqual(t, a.Reach(), 15)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("pattern.yml", os.ErrNotExist)

	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "pattern.yml")
}
