package imgio

import (
	"testing"

	"github.com/renderlab/renderbench/pkg/errors"
)

func TestSetAt(t *testing.T) {
	m := New(4, 3)

	m.Set(2, 1, 0.5, 1.5, 40.0)
	r, g, b := m.At(2, 1)
	if r != 0.5 || g != 1.5 || b != 40.0 {
		t.Errorf("At(2,1) = %v,%v,%v", r, g, b)
	}

	// Untouched pixels stay black
	r, g, b = m.At(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("At(0,0) = %v,%v,%v, want black", r, g, b)
	}

	// Out-of-range reads return black, writes are dropped
	m.Set(-1, 0, 1, 1, 1)
	m.Set(4, 0, 1, 1, 1)
	if r, _, _ := m.At(7, 7); r != 0 {
		t.Error("out-of-range At should return black")
	}
}

func TestRectIn(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"inside", Rect{Left: 10, Top: 10, Width: 50, Height: 50}, true},
		{"exact fit", Rect{Left: 0, Top: 0, Width: 100, Height: 80}, true},
		{"touching right edge", Rect{Left: 50, Top: 0, Width: 50, Height: 80}, true},
		{"past right edge", Rect{Left: 51, Top: 0, Width: 50, Height: 80}, false},
		{"past bottom edge", Rect{Left: 0, Top: 40, Width: 100, Height: 41}, false},
		{"negative origin", Rect{Left: -1, Top: 0, Width: 10, Height: 10}, false},
		{"zero width", Rect{Left: 0, Top: 0, Width: 0, Height: 10}, false},
	}

	for _, tt := range tests {
		if got := tt.rect.In(100, 80); got != tt.want {
			t.Errorf("%s: In(100, 80) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCrop(t *testing.T) {
	m := New(10, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			m.Set(x, y, float64(x), float64(y), 0)
		}
	}

	sub, err := m.Crop(Rect{Left: 3, Top: 2, Width: 4, Height: 5})
	if err != nil {
		t.Fatalf("Crop error: %v", err)
	}
	if sub.Width() != 4 || sub.Height() != 5 {
		t.Fatalf("crop dimensions = %dx%d", sub.Width(), sub.Height())
	}
	r, g, _ := sub.At(0, 0)
	if r != 3 || g != 2 {
		t.Errorf("crop origin pixel = (%v, %v), want (3, 2)", r, g)
	}
	r, g, _ = sub.At(3, 4)
	if r != 6 || g != 6 {
		t.Errorf("crop last pixel = (%v, %v), want (6, 6)", r, g)
	}
}

func TestCropOutOfBounds(t *testing.T) {
	m := New(10, 8)

	bad := []Rect{
		{Left: 8, Top: 0, Width: 3, Height: 2},  // past right
		{Left: 0, Top: 7, Width: 2, Height: 2},  // past bottom
		{Left: -1, Top: 0, Width: 2, Height: 2}, // negative
		{Left: 0, Top: 0, Width: 0, Height: 2},  // empty
	}
	for _, rc := range bad {
		_, err := m.Crop(rc)
		if err == nil {
			t.Errorf("Crop(%+v) should fail", rc)
			continue
		}
		if !errors.Is(err, errors.ErrCodeImageBounds) {
			t.Errorf("Crop(%+v) code = %s, want IMAGE_BOUNDS", rc, errors.GetCode(err))
		}
	}
}

func TestClone(t *testing.T) {
	m := New(3, 3)
	m.Set(1, 1, 1, 2, 3)

	c := m.Clone()
	c.Set(1, 1, 9, 9, 9)

	if r, _, _ := m.At(1, 1); r != 1 {
		t.Error("Clone should not share pixel storage")
	}
}

func TestIsFloatImage(t *testing.T) {
	yes := []string{"img.exr", "a/b/ref-bdpt.EXR", "out.pfm", "env.hdr"}
	for _, p := range yes {
		if !IsFloatImage(p) {
			t.Errorf("IsFloatImage(%q) = false", p)
		}
	}
	no := []string{"img.png", "img.exr.txt", "notes.md", "img"}
	for _, p := range no {
		if IsFloatImage(p) {
			t.Errorf("IsFloatImage(%q) = true", p)
		}
	}
}
