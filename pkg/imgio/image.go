// Package imgio provides the in-memory floating-point image type used by
// the figure pipeline, together with decoding of the renderer's output
// formats and encoding of preview and intermediate images.
//
// Rendered images are linear-light RGB with three float64 channels per
// pixel. The package deliberately does not implement Go's image.Image on
// this type: the figure pipeline needs the raw radiance values, and the
// tone-mapped 8-bit view is produced explicitly by the tonemap package.
package imgio

import (
	"github.com/renderlab/renderbench/pkg/errors"
)

// Rect is a crop rectangle in pixel coordinates, top-left origin.
type Rect struct {
	Left   int `json:"left" toml:"left"`
	Top    int `json:"top" toml:"top"`
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// In reports whether the rectangle lies fully inside an image of the given
// dimensions.
func (r Rect) In(width, height int) bool {
	return r.Left >= 0 && r.Top >= 0 && !r.Empty() &&
		r.Left+r.Width <= width && r.Top+r.Height <= height
}

// Image is a height × width × 3 linear-light RGB buffer.
type Image struct {
	width  int
	height int
	pix    []float64 // row-major, 3 floats per pixel
}

// New creates a black image of the given dimensions.
func New(width, height int) *Image {
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	return &Image{
		width:  width,
		height: height,
		pix:    make([]float64, width*height*3),
	}
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// At returns the RGB triple at (x, y). Coordinates outside the image
// return black; the figure pipeline bounds-checks crops up front, so
// out-of-range access here is a bug rather than an expected path.
func (m *Image) At(x, y int) (r, g, b float64) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, 0, 0
	}
	i := (y*m.width + x) * 3
	return m.pix[i], m.pix[i+1], m.pix[i+2]
}

// Set stores the RGB triple at (x, y). Out-of-range coordinates are ignored.
func (m *Image) Set(x, y int, r, g, b float64) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	i := (y*m.width + x) * 3
	m.pix[i], m.pix[i+1], m.pix[i+2] = r, g, b
}

// SameShape reports whether two images have identical dimensions.
func (m *Image) SameShape(o *Image) bool {
	return o != nil && m.width == o.width && m.height == o.height
}

// Crop returns a copy of the region described by rc.
// The rectangle must lie fully inside the image.
func (m *Image) Crop(rc Rect) (*Image, error) {
	if !rc.In(m.width, m.height) {
		return nil, errors.New(errors.ErrCodeImageBounds,
			"crop %dx%d+%d+%d outside image %dx%d",
			rc.Width, rc.Height, rc.Left, rc.Top, m.width, m.height)
	}

	out := New(rc.Width, rc.Height)
	for y := 0; y < rc.Height; y++ {
		src := ((rc.Top+y)*m.width + rc.Left) * 3
		dst := y * rc.Width * 3
		copy(out.pix[dst:dst+rc.Width*3], m.pix[src:src+rc.Width*3])
	}
	return out, nil
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	out := New(m.width, m.height)
	copy(out.pix, m.pix)
	return out
}
