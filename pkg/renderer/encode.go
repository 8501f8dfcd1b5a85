package renderer

import (
	"image"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// BytesPerPixel is the size of one encoded RGBA pixel
const BytesPerPixel = 4

// EncodeColor converts a linear color into 8-bit RGBA with gamma 2 correction.
// Each channel is square-rooted, clamped to [0, 0.999] and scaled by 256, so
// 1.0 maps to 255 and 0.0 to 0. NaN channels encode as 0. Alpha is always opaque.
func EncodeColor(c core.Color) [BytesPerPixel]uint8 {
	return [BytesPerPixel]uint8{
		encodeChannel(c.X),
		encodeChannel(c.Y),
		encodeChannel(c.Z),
		255,
	}
}

func encodeChannel(v float64) uint8 {
	g := math.Sqrt(v)
	// Negative inputs turn into NaN here too
	if math.IsNaN(g) {
		return 0
	}
	return uint8(256 * math.Max(0, math.Min(0.999, g)))
}

// ToImage wraps encoded RGBA pixels, top row first, in an image without copying
func ToImage(pixels []byte, width, height int) *image.RGBA {
	return &image.RGBA{
		Pix:    pixels,
		Stride: width * BytesPerPixel,
		Rect:   image.Rect(0, 0, width, height),
	}
}

// TestPattern produces a red/green gradient with constant blue in the same
// layout as a render: red grows left to right, green grows bottom to top
func TestPattern(width, height int) []byte {
	if width <= 0 || height <= 0 {
		return []byte{}
	}

	pixels := make([]byte, 0, width*height*BytesPerPixel)
	sDenom, tDenom := imagePlaneDenominators(width, height)
	for j := height - 1; j >= 0; j-- {
		for i := 0; i < width; i++ {
			r := float64(i) / sDenom
			g := float64(j) / tDenom
			b := 0.25
			pixels = append(pixels,
				uint8(255.999*r),
				uint8(255.999*g),
				uint8(255.999*b),
				255,
			)
		}
	}
	return pixels
}

// imagePlaneDenominators maps pixel indices to [0,1]; a one pixel wide image
// uses 1 to avoid dividing by zero
func imagePlaneDenominators(width, height int) (float64, float64) {
	return float64(max(width-1, 1)), float64(max(height-1, 1))
}
