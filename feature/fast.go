package feature

import (
	"image"
)

const (
	// DefaultFASTThreshold is the corner response threshold used by the extractors.
	DefaultFASTThreshold = 10

	fastArc    = 9 // contiguous circle pixels required (FAST-9)
	fastRadius = 3
)

// circle is the Bresenham circle of radius 3 around the candidate pixel.
var circle = [16]image.Point{
	{0, -3}, {1, -3}, {2, -2}, {3, -1}, {3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1}, {-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

// FAST is a FAST-9 segment-test corner detector.
type FAST struct {
	// Threshold is the minimum intensity difference between the centre and
	// the arc pixels. If 0, DefaultFASTThreshold is used.
	Threshold int

	// NonmaxSuppression keeps only local maxima of the corner score in a 3x3
	// neighbourhood.
	NonmaxSuppression bool
}

var _ Detector = (*FAST)(nil)

// Detect returns the corners of img in raster order.
func (f *FAST) Detect(img *image.Gray) []Keypoint {
	th := f.Threshold
	if th <= 0 {
		th = DefaultFASTThreshold
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 2*fastRadius || h <= 2*fastRadius {
		return nil
	}

	scores := make([]int, w*h)
	for y := fastRadius; y < h-fastRadius; y++ {
		for x := fastRadius; x < w-fastRadius; x++ {
			scores[y*w+x] = cornerScore(img, b.Min.X+x, b.Min.Y+y, th)
		}
	}

	var kps []Keypoint
	for y := fastRadius; y < h-fastRadius; y++ {
		for x := fastRadius; x < w-fastRadius; x++ {
			s := scores[y*w+x]
			if s == 0 {
				continue
			}
			if f.NonmaxSuppression && !isLocalMax(scores, w, h, x, y) {
				continue
			}
			kps = append(kps, NewKeypoint(b.Min.X+x, b.Min.Y+y, 2*fastRadius+1, float64(s)))
		}
	}
	return kps
}

// cornerScore returns 0 if (x, y) is not a FAST-9 corner, otherwise the sum of
// absolute differences (minus threshold) over the brighter or darker set,
// whichever is larger.
func cornerScore(img *image.Gray, x, y, th int) int {
	c := int(img.GrayAt(x, y).Y)
	var diff [16]int
	for i, o := range circle {
		diff[i] = int(img.GrayAt(x+o.X, y+o.Y).Y) - c
	}

	// Quick rejection on the compass points: a 9-arc covers at least two of them.
	var brightCompass, darkCompass int
	for i := 0; i < 16; i += 4 {
		if diff[i] > th {
			brightCompass++
		} else if diff[i] < -th {
			darkCompass++
		}
	}
	if brightCompass < 2 && darkCompass < 2 {
		return 0
	}

	bright := hasArc(&diff, func(d int) bool { return d > th })
	dark := hasArc(&diff, func(d int) bool { return d < -th })
	if !bright && !dark {
		return 0
	}

	var sb, sd int
	for _, d := range diff {
		if d > th {
			sb += d - th
		} else if d < -th {
			sd += -d - th
		}
	}
	return max(sb, sd)
}

func hasArc(diff *[16]int, pred func(int) bool) bool {
	run := 0
	for i := 0; i < 16+fastArc-1; i++ {
		if pred(diff[i%16]) {
			run++
			if run >= fastArc {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// isLocalMax reports whether the score at (x, y) dominates its 3x3
// neighbourhood. Ties are resolved in favour of the earlier pixel in raster
// order so plateaus yield exactly one keypoint.
func isLocalMax(scores []int, w, h, x, y int) bool {
	s := scores[y*w+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			n := scores[ny*w+nx]
			earlier := dy < 0 || (dy == 0 && dx < 0)
			if n > s || (earlier && n == s) {
				return false
			}
		}
	}
	return true
}
