package feature

import (
	"image"
	"slices"

	"github.com/golang/geo/r2"
)

// Keypoint is a detected interest point.
type Keypoint struct {
	Pt       r2.Point // Pt is the sub-pixel image location (x = column, y = row).
	Size     float64  // Size is the diameter of the meaningful neighbourhood.
	Angle    float64  // Angle is the orientation in radians; 0 when not computed.
	Response float64  // Response is the detector strength used for ranking.
	Octave   int      // Octave is the pyramid level the keypoint was found on.
}

// NewKeypoint returns a keypoint at integer pixel coordinates.
func NewKeypoint(x, y int, size, response float64) Keypoint {
	return Keypoint{
		Pt:       r2.Point{X: float64(x), Y: float64(y)},
		Size:     size,
		Response: response,
	}
}

// Pixel returns the keypoint location rounded to the nearest pixel.
func (k Keypoint) Pixel() image.Point {
	return image.Point{X: int(k.Pt.X + 0.5), Y: int(k.Pt.Y + 0.5)}
}

// RetainBest keeps at most limit keypoints with the highest response.
//
// The sort is stable, so keypoints with equal response keep their detection
// order. A non-positive limit keeps everything. The input slice is not modified.
func RetainBest(kps []Keypoint, limit int) []Keypoint {
	out := slices.Clone(kps)
	if limit <= 0 || len(out) <= limit {
		return out
	}
	slices.SortStableFunc(out, func(a, b Keypoint) int {
		switch {
		case a.Response > b.Response:
			return -1
		case a.Response < b.Response:
			return 1
		default:
			return 0
		}
	})
	return out[:limit]
}

// FilterBorder drops keypoints closer than border pixels to the edge of bounds.
func FilterBorder(kps []Keypoint, bounds image.Rectangle, border int) []Keypoint {
	inner := bounds.Inset(border)
	out := kps[:0:0]
	for _, kp := range kps {
		if kp.Pixel().In(inner) {
			out = append(out, kp)
		}
	}
	return out
}
