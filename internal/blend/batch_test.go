package blend

import (
	"bytes"
	"testing"
)

// fillPattern fills a buffer with a deterministic byte pattern.
func fillPattern(buf []byte, seed int) {
	for i := range buf {
		buf[i] = byte((i*7 + seed*13 + 3) % 256)
	}
}

func TestBlendBatchOpacityZero(t *testing.T) {
	dst := make([]byte, 64*4)
	src := make([]byte, 64*4)
	fillPattern(dst, 1)
	fillPattern(src, 2)
	want := append([]byte(nil), dst...)

	fn, _ := ForMode(ModeMultiply)
	BlendBatch(dst, src, fn, 0, nil)

	if !bytes.Equal(dst, want) {
		t.Error("opacity 0 modified the destination")
	}
}

func TestBlendBatchClip(t *testing.T) {
	const pixels = 8
	dst := make([]byte, pixels*4)
	src := make([]byte, pixels*4)
	for i := 0; i < pixels; i++ {
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = 200, 200, 200, 255
		src[i*4], src[i*4+1], src[i*4+2], src[i*4+3] = 0, 0, 0, 255
	}

	// Clip fully masks even pixels, passes odd ones.
	clip := make([]byte, pixels)
	for i := 1; i < pixels; i += 2 {
		clip[i] = 255
	}

	fn, _ := ForMode(ModeNormal)
	BlendBatch(dst, src, fn, 255, clip)

	for i := 0; i < pixels; i++ {
		r := dst[i*4]
		if i%2 == 0 && r != 200 {
			t.Errorf("pixel %d: clipped pixel changed to %d", i, r)
		}
		if i%2 == 1 && r != 0 {
			t.Errorf("pixel %d: unclipped pixel = %d, want 0", i, r)
		}
	}
}

func TestBlendBatchOpaqueReplace(t *testing.T) {
	// Normal mode with opaque source and full opacity replaces the
	// destination bit for bit.
	dst := []byte{1, 2, 3, 255, 7, 8, 9, 255}
	src := []byte{50, 100, 150, 255, 60, 110, 160, 255}

	fn, _ := ForMode(ModeNormal)
	BlendBatch(dst, src, fn, 255, nil)

	if !bytes.Equal(dst, src) {
		t.Errorf("dst = %v, want %v", dst, src)
	}
}

func TestBlendBatchShortSource(t *testing.T) {
	dst := make([]byte, 4*4)
	fillPattern(dst, 1)
	want := append([]byte(nil), dst...)
	src := []byte{255, 255, 255, 255} // one pixel

	fn, _ := ForMode(ModeNormal)
	BlendBatch(dst, src, fn, 255, nil)

	if dst[0] != 255 || dst[3] != 255 {
		t.Errorf("first pixel not blended: %v", dst[:4])
	}
	if !bytes.Equal(dst[4:], want[4:]) {
		t.Error("pixels beyond the source were modified")
	}
}

func TestBlendBatchLocked(t *testing.T) {
	const pixels = 4
	// Pixel 0: transparent. Pixel 1: opaque. Pixel 2: half alpha.
	// Pixel 3: transparent with stale color bytes.
	dst := []byte{
		0, 0, 0, 0,
		200, 200, 200, 255,
		100, 100, 100, 128,
		9, 9, 9, 0,
	}
	src := make([]byte, pixels*4)
	for i := 0; i < pixels; i++ {
		src[i*4], src[i*4+1], src[i*4+2], src[i*4+3] = 0, 0, 0, 255
	}

	alphaBefore := []byte{dst[3], dst[7], dst[11], dst[15]}

	fn, _ := ForMode(ModeNormal)
	BlendBatchLocked(dst, src, fn, 255)

	// Transparent pixels are untouched, including stale color bytes.
	if dst[0] != 0 || dst[1] != 0 || dst[2] != 0 {
		t.Errorf("transparent pixel painted: %v", dst[:4])
	}
	if dst[12] != 9 || dst[13] != 9 || dst[14] != 9 {
		t.Errorf("stale transparent pixel modified: %v", dst[12:16])
	}

	// Alpha never changes.
	for i, want := range alphaBefore {
		if got := dst[i*4+3]; got != want {
			t.Errorf("pixel %d alpha = %d, want %d", i, got, want)
		}
	}

	// Covered pixels took the black paint.
	if dst[4] != 0 || dst[8] != 0 {
		t.Errorf("covered pixels not painted: %v", dst)
	}
}

func TestBlendBatchLockedPartialCoverage(t *testing.T) {
	// Half-alpha source over an opaque locked pixel mixes the colors at
	// source coverage, like painting on a fully opaque backdrop.
	dst := []byte{200, 200, 200, 255}
	src := []byte{0, 0, 0, 128}

	fn, _ := ForMode(ModeNormal)
	BlendBatchLocked(dst, src, fn, 255)

	if dst[3] != 255 {
		t.Fatalf("alpha = %d, want 255", dst[3])
	}
	// 200 * (1 - 128/255) = ~100
	if dst[0] < 98 || dst[0] > 102 {
		t.Errorf("color = %d, want ~100", dst[0])
	}
}

func TestSourceOverBatchMatchesNormal(t *testing.T) {
	const pixels = 257
	base := make([]byte, pixels*4)
	src := make([]byte, pixels*4)
	fillPattern(base, 5)
	fillPattern(src, 11)

	viaFast := append([]byte(nil), base...)
	viaGeneric := append([]byte(nil), base...)

	SourceOverBatch(viaFast, src)
	fn, _ := ForMode(ModeNormal)
	BlendBatch(viaGeneric, src, fn, 255, nil)

	if !bytes.Equal(viaFast, viaGeneric) {
		for i := range viaFast {
			if viaFast[i] != viaGeneric[i] {
				t.Fatalf("first mismatch at byte %d: fast %d, generic %d", i, viaFast[i], viaGeneric[i])
			}
		}
	}
}
