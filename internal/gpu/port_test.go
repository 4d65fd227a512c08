package gpu

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/internal/blend"
)

// shaderModes lists every mode the composite shader implements.
func shaderModes() []blend.Mode {
	var modes []blend.Mode
	for m := blend.Mode(0); m.Valid(); m++ {
		if shaderMode(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// texelBuffer builds a straight RGBA buffer of n random texels plus the
// corner cases that exercise every branch: transparent, opaque, and
// channel extremes.
func texelBuffer(rng *rand.Rand, n int) []byte {
	buf := make([]byte, 0, (n+8)*4)
	for i := 0; i < n; i++ {
		buf = append(buf, byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256)))
	}
	corners := [][4]byte{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{0, 255, 0, 128},
		{10, 20, 30, 1},
		{255, 255, 255, 0},
		{0, 0, 0, 255},
		{127, 128, 129, 200},
	}
	for _, c := range corners {
		buf = append(buf, c[0], c[1], c[2], c[3])
	}
	return buf
}

func TestShaderModeSet(t *testing.T) {
	floatModes := []blend.Mode{
		blend.ModeSoftLight, blend.ModeDarkerColor, blend.ModeLighterColor,
		blend.ModeHue, blend.ModeSaturation, blend.ModeColor, blend.ModeLuminosity,
	}
	for _, m := range floatModes {
		if shaderMode(m) {
			t.Errorf("shaderMode(%s) = true, want false for float-math mode", m)
		}
	}
	if shaderMode(blend.Mode(blend.ModeCount)) {
		t.Error("shaderMode should reject invalid modes")
	}
	if got, want := len(shaderModes()), blend.ModeCount-len(floatModes); got != want {
		t.Errorf("shader implements %d modes, want %d", got, want)
	}
}

func TestBlendPassMatchesBlendBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	src := texelBuffer(rng, 512)
	base := texelBuffer(rng, 512)

	for _, mode := range shaderModes() {
		for _, opacity := range []byte{255, 128, 7} {
			fn, ok := blend.ForMode(mode)
			if !ok {
				t.Fatalf("ForMode(%s) not ok", mode)
			}

			want := append([]byte(nil), base...)
			blend.BlendBatch(want, src, fn, opacity, nil)

			got := append([]byte(nil), base...)
			blendPass(got, src, mode, opacity, 0)

			if !bytes.Equal(got, want) {
				i := firstDiff(got, want)
				t.Errorf("%s opacity=%d: texel %d: port %v, software %v",
					mode, opacity, i/4, got[i&^3:i&^3+4], want[i&^3:i&^3+4])
			}
		}
	}
}

func TestBlendPassAlphaLock(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	src := texelBuffer(rng, 512)
	base := texelBuffer(rng, 512)

	for _, mode := range shaderModes() {
		fn, ok := blend.ForMode(mode)
		if !ok {
			t.Fatalf("ForMode(%s) not ok", mode)
		}

		want := append([]byte(nil), base...)
		blend.BlendBatchLocked(want, src, fn, 255)

		got := append([]byte(nil), base...)
		blendPass(got, src, mode, 255, flagAlphaLock)

		if !bytes.Equal(got, want) {
			i := firstDiff(got, want)
			t.Errorf("%s locked: texel %d: port %v, software %v",
				mode, i/4, got[i&^3:i&^3+4], want[i&^3:i&^3+4])
		}
	}
}

// TestPortMatchesSoftwareCompositor runs the pass sequence the GPU would
// execute for a flat stack and compares it against the software
// compositor's output for the same stack.
func TestPortMatchesSoftwareCompositor(t *testing.T) {
	const w, h = 64, 48
	rng := rand.New(rand.NewSource(47))

	specs := []struct {
		mode    paint.BlendMode
		opacity float64
	}{
		{paint.BlendNormal, 1},
		{paint.BlendMultiply, 0.8},
		{paint.BlendScreen, 0.5},
		{paint.BlendOverlay, 1},
		{paint.BlendBehind, 0.33},
	}

	var layers []*paint.Layer
	for _, s := range specs {
		l := paint.NewLayer(w, h)
		l.Mode = s.mode
		l.Opacity = s.opacity
		data := l.Buffer().Data()
		for i := range data {
			data[i] = byte(rng.Intn(256))
		}
		layers = append(layers, l)
	}

	background := paint.RGBA{R: 0.9, G: 0.85, B: 0.8, A: 1}

	comp := paint.NewLayerCompositor(w, h)
	comp.Background = background
	want := paint.NewPixmap(w, h)
	if err := comp.Composite(want, layers); err != nil {
		t.Fatalf("Composite: %v", err)
	}

	// The GPU path: backdrop fill, then one blend pass per layer.
	got := make([]byte, w*h*4)
	bg := background.NRGBA()
	for i := 0; i < len(got); i += 4 {
		got[i] = bg.R
		got[i+1] = bg.G
		got[i+2] = bg.B
		got[i+3] = bg.A
	}
	for _, l := range layers {
		blendPass(got, l.Buffer().Data(), l.Mode, opacityByteFor(l.Opacity), 0)
	}

	if !bytes.Equal(got, want.Data()) {
		i := firstDiff(got, want.Data())
		t.Fatalf("stack diverges at texel %d: port %v, software %v",
			i/4, got[i&^3:i&^3+4], want.Data()[i&^3:i&^3+4])
	}
}

// opacityByteFor mirrors the rounding used on both composite paths.
func opacityByteFor(v float64) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}

func firstDiff(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return len(a)
}
