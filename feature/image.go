package feature

import (
	"image"
	"image/draw"
)

// ToGray converts img to a single-channel grayscale raster.
// A *image.Gray is returned as is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// Integral is a summed-area table of a grayscale image, used to read box
// averages in constant time.
type Integral struct {
	bounds image.Rectangle
	stride int
	sums   []uint32
}

// NewIntegral builds the summed-area table of img.
func NewIntegral(img *image.Gray) *Integral {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w + 1
	sums := make([]uint32, stride*(h+1))
	for y := 0; y < h; y++ {
		var row uint32
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			row += uint32(img.Pix[off+x])
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + row
		}
	}
	return &Integral{bounds: b, stride: stride, sums: sums}
}

// BoxSum returns the sum of the (2r+1)x(2r+1) box centred at (x, y).
// The box is clipped to the image.
func (ii *Integral) BoxSum(x, y, r int) uint32 {
	x0 := max(x-r, ii.bounds.Min.X) - ii.bounds.Min.X
	y0 := max(y-r, ii.bounds.Min.Y) - ii.bounds.Min.Y
	x1 := min(x+r+1, ii.bounds.Max.X) - ii.bounds.Min.X
	y1 := min(y+r+1, ii.bounds.Max.Y) - ii.bounds.Min.Y
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return ii.sums[y1*ii.stride+x1] - ii.sums[y0*ii.stride+x1] - ii.sums[y1*ii.stride+x0] + ii.sums[y0*ii.stride+x0]
}

// Bounds returns the bounds of the source image.
func (ii *Integral) Bounds() image.Rectangle { return ii.bounds }
