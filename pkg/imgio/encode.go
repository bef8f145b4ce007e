package imgio

import (
	"image"
	"image/png"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/pfm"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/renderlab/renderbench/pkg/errors"
)

// WritePNG encodes img as a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "creating %s", path)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "encoding %s", path)
	}
	return nil
}

// WritePFM writes the linear-light buffer to a Portable FloatMap file.
// Used for intermediate buffers that must survive a round trip without
// quantization.
func WritePFM(path string, m *Image) error {
	rgb := hdr.NewRGB(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			r, g, b := m.At(x, y)
			rgb.SetRGB(x, y, hdrcolor.RGB{R: r, G: g, B: b})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "creating %s", path)
	}
	defer f.Close()

	if err := pfm.Encode(f, rgb); err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "encoding %s", path)
	}
	return nil
}
