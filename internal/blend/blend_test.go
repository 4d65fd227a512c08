package blend

import "testing"

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNormal, "normal"},
		{ModeMultiply, "multiply"},
		{ModeScreen, "screen"},
		{ModeHardMix, "hard-mix"},
		{ModeLuminosity, "luminosity"},
		{ModeBehind, "behind"},
		{Mode(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestModeValid(t *testing.T) {
	for m := Mode(0); m < modeCount; m++ {
		if !m.Valid() {
			t.Errorf("Mode(%d) should be valid", m)
		}
	}
	if Mode(modeCount).Valid() {
		t.Error("Mode(modeCount) should be invalid")
	}
	if Mode(255).Valid() {
		t.Error("Mode(255) should be invalid")
	}
}

func TestParseMode(t *testing.T) {
	// Round trip through String for every mode.
	for m := Mode(0); m < modeCount; m++ {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("no-such-mode"); ok {
		t.Error("ParseMode accepted an unknown name")
	}
}

func TestForModeDispatch(t *testing.T) {
	// Every declared mode resolves to a non-nil function.
	for m := Mode(0); m < modeCount; m++ {
		fn, ok := ForMode(m)
		if !ok {
			t.Errorf("ForMode(%v) reported unknown", m)
		}
		if fn == nil {
			t.Fatalf("ForMode(%v) returned nil func", m)
		}
		// Transparent source must leave an opaque destination alone.
		r, g, b, a := fn(0, 0, 0, 0, 40, 80, 120, 255)
		if r != 40 || g != 80 || b != 120 || a != 255 {
			t.Errorf("%v: transparent source changed dst: got (%d,%d,%d,%d)", m, r, g, b, a)
		}
	}
}

func TestForModeUnknown(t *testing.T) {
	fn, ok := ForMode(Mode(250))
	if ok {
		t.Error("ForMode(250) reported known")
	}
	if fn == nil {
		t.Fatal("ForMode(250) returned nil fallback")
	}
	// Fallback behaves as normal.
	r, g, b, a := fn(200, 100, 50, 255, 10, 20, 30, 255)
	if r != 200 || g != 100 || b != 50 || a != 255 {
		t.Errorf("fallback is not source-over: got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestBlendNormal(t *testing.T) {
	// Opaque source replaces destination exactly.
	for v := 0; v <= 255; v++ {
		c := byte(v)
		r, g, b, a := blendNormal(c, c, c, 255, 77, 99, 123, 200)
		if r != c || g != c || b != c || a != 255 {
			t.Fatalf("opaque normal v=%d: got (%d,%d,%d,%d)", v, r, g, b, a)
		}
	}
	// Source over empty destination yields the source.
	r, g, b, a := blendNormal(60, 120, 180, 128, 0, 0, 0, 0)
	if r != 60 || g != 120 || b != 180 || a != 128 {
		t.Errorf("normal over empty: got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestBlendBehind(t *testing.T) {
	// Opaque destination is untouched.
	r, g, b, a := blendBehind(200, 200, 200, 255, 10, 20, 30, 255)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("behind over opaque dst: got (%d,%d,%d,%d)", r, g, b, a)
	}
	// Empty destination takes the source.
	r, g, b, a = blendBehind(60, 120, 180, 128, 0, 0, 0, 0)
	if r != 60 || g != 120 || b != 180 || a != 128 {
		t.Errorf("behind over empty dst: got (%d,%d,%d,%d)", r, g, b, a)
	}
	// Half-covered destination fills only the remaining coverage.
	_, _, _, a = blendBehind(0, 0, 0, 255, 0, 0, 0, 128)
	if a != 255 {
		t.Errorf("behind alpha: got %d, want 255", a)
	}
}

func TestAlphaCompositing(t *testing.T) {
	// Union alpha holds for every mode: out.a depends only on coverage.
	for m := Mode(0); m < modeCount; m++ {
		fn, _ := ForMode(m)
		_, _, _, a := fn(100, 100, 100, 128, 50, 50, 50, 64)
		want := byte(128 + 64 - int(div255(128*64)))
		diff := int(a) - int(want)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Errorf("%v: alpha = %d, want ~%d", m, a, want)
		}
	}
}
