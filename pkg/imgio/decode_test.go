package imgio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/renderlab/renderbench/pkg/errors"
)

// writeEXR writes a minimal single-part scan line EXR: uncompressed,
// 32-bit float B, G, R channels, one scan line per chunk.
func writeEXR(t *testing.T, path string, w, h int, px func(x, y int) (r, g, b float32)) {
	t.Helper()

	le := binary.LittleEndian
	buf := &bytes.Buffer{}
	buf.Write([]byte{0x76, 0x2f, 0x31, 0x01})
	binary.Write(buf, le, int32(2))

	attr := func(name, typ string, value []byte) {
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.WriteString(typ)
		buf.WriteByte(0)
		binary.Write(buf, le, int32(len(value)))
		buf.Write(value)
	}

	chlist := &bytes.Buffer{}
	for _, name := range []string{"B", "G", "R"} {
		chlist.WriteString(name)
		chlist.WriteByte(0)
		binary.Write(chlist, le, int32(2)) // FLOAT pixels
		chlist.Write([]byte{0, 0, 0, 0})   // linear flag, reserved
		binary.Write(chlist, le, int32(1)) // x sampling
		binary.Write(chlist, le, int32(1)) // y sampling
	}
	chlist.WriteByte(0)
	attr("channels", "chlist", chlist.Bytes())
	attr("compression", "compression", []byte{0})

	window := &bytes.Buffer{}
	binary.Write(window, le, [4]int32{0, 0, int32(w - 1), int32(h - 1)})
	attr("dataWindow", "box2i", window.Bytes())
	attr("displayWindow", "box2i", window.Bytes())
	attr("lineOrder", "lineOrder", []byte{0})
	buf.WriteByte(0)

	// Chunk offsets are validated for monotonicity only.
	for y := 0; y < h; y++ {
		binary.Write(buf, le, uint64(0))
	}

	for y := 0; y < h; y++ {
		binary.Write(buf, le, int32(y))
		binary.Write(buf, le, int32(3*w*4))
		for _, ch := range []int{2, 1, 0} { // B, G, R line order
			for x := 0; x < w; x++ {
				v := [3]float32{}
				v[0], v[1], v[2] = px(x, y)
				binary.Write(buf, le, v[ch])
			}
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeEXR(t *testing.T) {
	// Channel values beyond [0, 1] must survive decoding untouched. Any
	// round trip through display-space color conversion would clamp or
	// tone-map them.
	path := filepath.Join(t.TempDir(), "img.exr")
	writeEXR(t, path, 3, 2, func(x, y int) (r, g, b float32) {
		return float32(x) * 5.0, 0.25, float32(y) + 1.5
	})

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if img.Width() != 3 || img.Height() != 2 {
		t.Fatalf("dimensions = %dx%d, want 3x2", img.Width(), img.Height())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			r, g, b := img.At(x, y)
			if r != float64(x)*5.0 || g != 0.25 || b != float64(y)+1.5 {
				t.Errorf("At(%d,%d) = %v,%v,%v, want %v,0.25,%v",
					x, y, r, g, b, float64(x)*5.0, float64(y)+1.5)
			}
		}
	}
}

func TestDecodeEXRCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.exr")
	if err := os.WriteFile(path, []byte("not an exr"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Decode(path)
	if err == nil {
		t.Fatal("Decode should fail on garbage input")
	}
	if !errors.Is(err, errors.ErrCodeImageDecode) {
		t.Errorf("code = %s, want IMAGE_DECODE", errors.GetCode(err))
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "nope.exr"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %s, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}
