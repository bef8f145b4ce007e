// Package tonemap converts linear-light render output into display-ready
// 8-bit images: an exposure adjustment in stops followed by the standard
// sRGB transfer function.
package tonemap

import (
	"image"
	"image/color"
	"math"

	"github.com/renderlab/renderbench/pkg/imgio"
)

// srgbBreak is the linear value where the sRGB transfer switches from the
// linear segment to the power segment.
const srgbBreak = 0.0031308

// LinearToSRGB applies the two-piece sRGB transfer function to a single
// linear-light value and clamps the result to [0, 1]:
//
//	v <= 0.0031308: 12.92 * v
//	otherwise:      1.055 * v^(1/2.4) - 0.055
func LinearToSRGB(v float64) float64 {
	var s float64
	if v <= srgbBreak {
		s = v * 12.92
	} else {
		s = 1.055*math.Pow(v, 1.0/2.4) - 0.055
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Expose scales a linear value by 2^stops.
func Expose(v, stops float64) float64 {
	if stops == 0 {
		return v
	}
	return v * math.Pow(2, stops)
}

// Map tone-maps a linear-light image at the given exposure into an 8-bit
// image for PNG output.
func Map(m *imgio.Image, stops float64) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			r, g, b := m.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: quantize(LinearToSRGB(Expose(r, stops))),
				G: quantize(LinearToSRGB(Expose(g, stops))),
				B: quantize(LinearToSRGB(Expose(b, stops))),
				A: 255,
			})
		}
	}
	return out
}

// quantize maps [0, 1] to [0, 255] with rounding.
func quantize(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
