package imgio

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/pfm"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mokiat/goexr/exr"

	"github.com/renderlab/renderbench/pkg/errors"
)

// floatExtensions is the set of floating-point image formats the renderer
// under test is known to emit.
var floatExtensions = map[string]bool{
	".exr": true,
	".pfm": true,
	".hdr": true,
}

// IsFloatImage reports whether path has a supported floating-point image
// extension.
func IsFloatImage(path string) bool {
	return floatExtensions[strings.ToLower(filepath.Ext(path))]
}

// Decode reads a floating-point image from path, dispatching on the file
// extension. Supported formats: OpenEXR (.exr), Portable FloatMap (.pfm),
// and Radiance RGBE (.hdr).
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr":
		return decodeEXR(f, path)
	case ".pfm":
		return decodeHDR(f, path, pfm.Decode)
	case ".hdr":
		return decodeHDR(f, path, rgbe.Decode)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported image format: %s", path)
	}
}

// decodeEXR reads an OpenEXR file into an Image.
func decodeEXR(r io.Reader, path string) (*Image, error) {
	img, err := exr.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decoding %s", path)
	}

	bounds := img.Bounds()
	out := New(bounds.Dx(), bounds.Dy())

	rgba, ok := img.(*exr.RGBAImage)
	if !ok {
		// The generic color.Color path tone-maps to display range, which
		// would corrupt radiance values. Refuse rather than degrade.
		return nil, errors.New(errors.ErrCodeImageDecode, "decoding %s: unexpected pixel layout %T", path, img)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// At returns the raw half/float channels, no quantization.
			c := rgba.At(x, y).(exr.RGBAColor)
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, float64(c.R), float64(c.G), float64(c.B))
		}
	}
	return out, nil
}

// decodeHDR reads a PFM or Radiance RGBE file into an Image using the given
// codec decoder.
func decodeHDR(r io.Reader, path string, decode func(io.Reader) (image.Image, error)) (*Image, error) {
	img, err := decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decoding %s", path)
	}

	h, ok := img.(hdr.Image)
	if !ok {
		return nil, errors.New(errors.ErrCodeImageDecode, "decoding %s: not a high dynamic range image", path)
	}

	bounds := h.Bounds()
	out := New(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pr, pg, pb, _ := h.HDRAt(x, y).HDRRGBA()
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, pr, pg, pb)
		}
	}
	return out, nil
}
