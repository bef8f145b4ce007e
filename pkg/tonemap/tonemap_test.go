package tonemap

import (
	"math"
	"testing"

	"github.com/renderlab/renderbench/pkg/imgio"
)

func TestLinearToSRGBEndpoints(t *testing.T) {
	if got := LinearToSRGB(0); got != 0 {
		t.Errorf("LinearToSRGB(0) = %v, want 0", got)
	}
	if got := LinearToSRGB(1); math.Abs(got-1) > 1e-12 {
		t.Errorf("LinearToSRGB(1) = %v, want 1", got)
	}
}

func TestLinearToSRGBBreakpoint(t *testing.T) {
	// The two pieces must agree at the breakpoint.
	linear := 0.0031308 * 12.92
	power := 1.055*math.Pow(0.0031308, 1.0/2.4) - 0.055
	if math.Abs(linear-power) > 1e-4 {
		t.Fatalf("formula pieces disagree at breakpoint: %v vs %v", linear, power)
	}
	if got := LinearToSRGB(0.0031308); math.Abs(got-linear) > 1e-12 {
		t.Errorf("LinearToSRGB at breakpoint = %v, want %v", got, linear)
	}
}

func TestLinearToSRGBMonotone(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 1.0; v += 0.0001 {
		s := LinearToSRGB(v)
		if s < prev {
			t.Fatalf("LinearToSRGB not monotone at v=%v: %v < %v", v, s, prev)
		}
		prev = s
	}
}

func TestLinearToSRGBClamps(t *testing.T) {
	if got := LinearToSRGB(-0.5); got != 0 {
		t.Errorf("LinearToSRGB(-0.5) = %v, want 0", got)
	}
	if got := LinearToSRGB(40.0); got != 1 {
		t.Errorf("LinearToSRGB(40.0) = %v, want 1", got)
	}
}

func TestExpose(t *testing.T) {
	tests := []struct {
		v, stops, want float64
	}{
		{0.5, 0, 0.5},
		{0.5, 1, 1.0},
		{0.5, 2, 2.0},
		{1.0, -1, 0.5},
		{0.25, -5.5, 0.25 * math.Pow(2, -5.5)},
	}
	for _, tt := range tests {
		if got := Expose(tt.v, tt.stops); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Expose(%v, %v) = %v, want %v", tt.v, tt.stops, got, tt.want)
		}
	}
}

func TestMap(t *testing.T) {
	m := imgio.New(2, 1)
	m.Set(0, 0, 0, 0, 0)
	m.Set(1, 0, 1, 1, 1)

	out := Map(m, 0)
	if out.Bounds().Dx() != 2 || out.Bounds().Dy() != 1 {
		t.Fatalf("mapped dimensions = %v", out.Bounds())
	}

	black := out.NRGBAAt(0, 0)
	if black.R != 0 || black.G != 0 || black.B != 0 || black.A != 255 {
		t.Errorf("black pixel mapped to %+v", black)
	}
	white := out.NRGBAAt(1, 0)
	if white.R != 255 || white.G != 255 || white.B != 255 {
		t.Errorf("white pixel mapped to %+v", white)
	}

	// One positive stop doubles a half-intensity pixel to full white.
	m2 := imgio.New(1, 1)
	m2.Set(0, 0, 0.5, 0.5, 0.5)
	if got := Map(m2, 1).NRGBAAt(0, 0); got.R != 255 {
		t.Errorf("0.5 at +1 stop mapped to %+v, want 255", got)
	}
}
