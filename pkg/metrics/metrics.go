// Package metrics implements the numeric comparisons reported by the test
// harness: the relative-error metric between a render and its reference,
// and summary statistics for benchmark timings.
package metrics

import (
	"math"

	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/imgio"
)

// relEps regularizes the reference intensity in the denominator so dark
// pixels don't blow the metric up.
const relEps = 1e-4

// RelativeError computes the reference-normalized squared error between a
// candidate image and its reference:
//
//	sum over pixels and channels of (img - ref)^2 / (ref + 1e-4)
//
// divided by the pixel count (height × width, not channel count). The
// result is zero when the images are identical and non-negative otherwise.
func RelativeError(img, ref *imgio.Image) (float64, error) {
	if !img.SameShape(ref) {
		return 0, errors.New(errors.ErrCodeImageShape,
			"image %dx%d does not match reference %dx%d",
			img.Width(), img.Height(), ref.Width(), ref.Height())
	}

	var sum float64
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			ir, ig, ib := img.At(x, y)
			rr, rg, rb := ref.At(x, y)
			dr := ir - rr
			dg := ig - rg
			db := ib - rb
			sum += dr * dr / (rr + relEps)
			sum += dg * dg / (rg + relEps)
			sum += db * db / (rb + relEps)
		}
	}
	return sum / float64(img.Width()*img.Height()), nil
}

// RoundSig rounds x to n significant figures. Zero stays zero; negative
// values round by magnitude.
func RoundSig(x float64, n int) float64 {
	if x == 0 || n <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	shift := float64(n-1) - math.Floor(math.Log10(x))
	scale := math.Pow(10, shift)
	return sign * math.Round(x*scale) / scale
}
