package blend

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestLum(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
		want    float32
	}{
		{"black", 0, 0, 0, 0},
		{"white", 1, 1, 1, 1},
		{"red", 1, 0, 0, 0.30},
		{"green", 0, 1, 0, 0.59},
		{"blue", 0, 0, 1, 0.11},
		{"gray", 0.5, 0.5, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lum(tt.r, tt.g, tt.b)
			if math32.Abs(got-tt.want) > 1e-5 {
				t.Errorf("lum(%v, %v, %v) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestSat(t *testing.T) {
	if got := sat(0.5, 0.5, 0.5); got != 0 {
		t.Errorf("sat(gray) = %v, want 0", got)
	}
	if got := sat(1, 0, 0); got != 1 {
		t.Errorf("sat(red) = %v, want 1", got)
	}
	if got := sat(0.8, 0.3, 0.5); math32.Abs(got-0.5) > 1e-6 {
		t.Errorf("sat(0.8, 0.3, 0.5) = %v, want 0.5", got)
	}
}

func TestSetLumPreservesLum(t *testing.T) {
	colors := [][3]float32{
		{1, 0, 0},
		{0.2, 0.7, 0.4},
		{0, 0, 0},
		{1, 1, 1},
		{0.9, 0.1, 0.95},
	}
	targets := []float32{0, 0.25, 0.5, 0.75, 1}
	for _, c := range colors {
		for _, l := range targets {
			r, g, b := setLum(c[0], c[1], c[2], l)
			got := lum(r, g, b)
			if math32.Abs(got-l) > 1e-3 {
				t.Errorf("setLum(%v, %v) lum = %v, want %v", c, l, got, l)
			}
			if r < -1e-6 || r > 1+1e-6 || g < -1e-6 || g > 1+1e-6 || b < -1e-6 || b > 1+1e-6 {
				t.Errorf("setLum(%v, %v) out of range: (%v, %v, %v)", c, l, r, g, b)
			}
		}
	}
}

func TestSetSat(t *testing.T) {
	// The result spans exactly the requested saturation.
	r, g, b := setSat(0.8, 0.3, 0.5, 0.4)
	if got := sat(r, g, b); math32.Abs(got-0.4) > 1e-6 {
		t.Errorf("setSat saturation = %v, want 0.4", got)
	}
	// Ordering of components is preserved: r was max, g min.
	if !(r >= b && b >= g) {
		t.Errorf("setSat broke ordering: (%v, %v, %v)", r, g, b)
	}

	// Grayscale input collapses to zero regardless of target.
	r, g, b = setSat(0.6, 0.6, 0.6, 0.8)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("setSat(gray, 0.8) = (%v, %v, %v), want zeros", r, g, b)
	}
}

func TestSortRGB(t *testing.T) {
	perms := [][3]float32{
		{0.1, 0.5, 0.9},
		{0.1, 0.9, 0.5},
		{0.5, 0.1, 0.9},
		{0.5, 0.9, 0.1},
		{0.9, 0.1, 0.5},
		{0.9, 0.5, 0.1},
		{0.5, 0.5, 0.5},
	}
	for _, p := range perms {
		r, g, b := p[0], p[1], p[2]
		lo, mid, hi := sortRGB(&r, &g, &b)
		if *lo > *mid || *mid > *hi {
			t.Errorf("sortRGB(%v) order: %v, %v, %v", p, *lo, *mid, *hi)
		}
	}
}

func TestMixColorLuminosity(t *testing.T) {
	// Color keeps the source hue at the backdrop's luminance; Luminosity
	// is the complementary split.
	sr, sg, sb := float32(1), float32(0), float32(0)
	dr, dg, db := float32(0.5), float32(0.5), float32(0.5)

	r, g, b := mixColor(sr, sg, sb, dr, dg, db)
	if math32.Abs(lum(r, g, b)-0.5) > 1e-3 {
		t.Errorf("mixColor lum = %v, want 0.5", lum(r, g, b))
	}
	if r <= g || r <= b {
		t.Errorf("mixColor lost the red hue: (%v, %v, %v)", r, g, b)
	}

	r, g, b = mixLuminosity(sr, sg, sb, dr, dg, db)
	if math32.Abs(lum(r, g, b)-0.30) > 1e-3 {
		t.Errorf("mixLuminosity lum = %v, want 0.30", lum(r, g, b))
	}
}

func TestMixHueSaturation(t *testing.T) {
	sr, sg, sb := float32(0), float32(1), float32(0)
	dr, dg, db := float32(0.8), float32(0.2), float32(0.2)

	// Hue takes the source's hue with the backdrop's saturation and
	// luminance.
	r, g, b := mixHue(sr, sg, sb, dr, dg, db)
	if math32.Abs(lum(r, g, b)-lum(dr, dg, db)) > 1e-3 {
		t.Errorf("mixHue lum = %v, want %v", lum(r, g, b), lum(dr, dg, db))
	}
	if g <= r || g <= b {
		t.Errorf("mixHue lost the green hue: (%v, %v, %v)", r, g, b)
	}

	// Saturation keeps the backdrop's hue and luminance and moves its
	// saturation towards the source's. Luminance clipping eats part of
	// the increase, so only compare against the backdrop.
	r, g, b = mixSaturation(sr, sg, sb, dr, dg, db)
	if math32.Abs(lum(r, g, b)-lum(dr, dg, db)) > 1e-3 {
		t.Errorf("mixSaturation lum = %v, want %v", lum(r, g, b), lum(dr, dg, db))
	}
	if sat(r, g, b) <= sat(dr, dg, db) {
		t.Errorf("mixSaturation sat = %v, want > %v", sat(r, g, b), sat(dr, dg, db))
	}
	if r <= g || r <= b {
		t.Errorf("mixSaturation lost the red hue: (%v, %v, %v)", r, g, b)
	}
}

func TestDarkerLighterColor(t *testing.T) {
	// Green (lum 0.59) vs red (lum 0.30): darker keeps red, lighter
	// keeps green, as whole triplets.
	r, g, b := mixDarkerColor(0, 1, 0, 1, 0, 0)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("mixDarkerColor = (%v, %v, %v), want red", r, g, b)
	}
	r, g, b = mixLighterColor(0, 1, 0, 1, 0, 0)
	if r != 0 || g != 1 || b != 0 {
		t.Errorf("mixLighterColor = (%v, %v, %v), want green", r, g, b)
	}

	// Swapping sides picks through the other branch; equal luminance
	// keeps the backdrop because the comparison is strict.
	r, g, b = mixDarkerColor(1, 0, 0, 0, 1, 0)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("mixDarkerColor reversed = (%v, %v, %v), want red", r, g, b)
	}
	r, g, b = mixLighterColor(1, 0, 0, 0, 1, 0)
	if r != 0 || g != 1 || b != 0 {
		t.Errorf("mixLighterColor reversed = (%v, %v, %v), want green", r, g, b)
	}
}

func TestNonSeparableOpaque(t *testing.T) {
	// Luminosity of a gray source onto a colored opaque backdrop: the
	// backdrop keeps its hue, the gray sets the brightness.
	r, g, b, a := blendLuminosity(128, 128, 128, 255, 200, 50, 50, 255)
	if a != 255 {
		t.Fatalf("alpha = %d, want 255", a)
	}
	if !(r > g && g == b) {
		t.Errorf("luminosity broke backdrop hue: (%d, %d, %d)", r, g, b)
	}
	gotLum := lum(float32(r)/255, float32(g)/255, float32(b)/255)
	if math32.Abs(gotLum-128.0/255) > 0.01 {
		t.Errorf("luminosity lum = %v, want ~0.5", gotLum)
	}
}

func TestNonSeparableTransparentEdges(t *testing.T) {
	fns := []Func{blendHue, blendSaturation, blendColor, blendLuminosity, blendDarkerColor, blendLighterColor}
	for i, fn := range fns {
		r, g, b, a := fn(0, 0, 0, 0, 10, 20, 30, 40)
		if r != 10 || g != 20 || b != 30 || a != 40 {
			t.Errorf("fn %d: transparent source changed dst: (%d, %d, %d, %d)", i, r, g, b, a)
		}
		r, g, b, a = fn(10, 20, 30, 40, 0, 0, 0, 0)
		if r != 10 || g != 20 || b != 30 || a != 40 {
			t.Errorf("fn %d: empty dst lost src: (%d, %d, %d, %d)", i, r, g, b, a)
		}
	}
}
