package paint

import (
	"image"
	"math"
	"testing"
)

const epsilon = 1e-10

func pointsEqual(p1, p2 Point, eps float64) bool {
	return math.Abs(p1.X-p2.X) < eps && math.Abs(p1.Y-p2.Y) < eps
}

func TestRect_NewRect(t *testing.T) {
	tests := []struct {
		name      string
		p1, p2    Point
		expectMin Point
		expectMax Point
	}{
		{
			name: "normal order",
			p1:   Pt(0, 0), p2: Pt(10, 10),
			expectMin: Pt(0, 0), expectMax: Pt(10, 10),
		},
		{
			name: "reversed order",
			p1:   Pt(10, 10), p2: Pt(0, 0),
			expectMin: Pt(0, 0), expectMax: Pt(10, 10),
		},
		{
			name: "mixed",
			p1:   Pt(5, 0), p2: Pt(0, 5),
			expectMin: Pt(0, 0), expectMax: Pt(5, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRect(tt.p1, tt.p2)
			if !pointsEqual(r.Min, tt.expectMin, epsilon) {
				t.Errorf("Min = %v, want %v", r.Min, tt.expectMin)
			}
			if !pointsEqual(r.Max, tt.expectMax, epsilon) {
				t.Errorf("Max = %v, want %v", r.Max, tt.expectMax)
			}
		})
	}
}

func TestRect_WidthHeight(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 5))
	if r.Width() != 10 {
		t.Errorf("Width() = %v, want 10", r.Width())
	}
	if r.Height() != 5 {
		t.Errorf("Height() = %v, want 5", r.Height())
	}
}

func TestRect_Union(t *testing.T) {
	r1 := NewRect(Pt(0, 0), Pt(5, 5))
	r2 := NewRect(Pt(3, 3), Pt(10, 10))
	u := r1.Union(r2)

	if !pointsEqual(u.Min, Pt(0, 0), epsilon) || !pointsEqual(u.Max, Pt(10, 10), epsilon) {
		t.Errorf("Union = %v", u)
	}

	// An empty rect is the identity for Union, so a dirty-rect
	// accumulator can start from the zero value.
	var acc Rect
	acc = acc.Union(r1)
	if !pointsEqual(acc.Min, r1.Min, epsilon) || !pointsEqual(acc.Max, r1.Max, epsilon) {
		t.Errorf("Union with empty accumulator = %v, want %v", acc, r1)
	}
	if got := r1.Union(Rect{}); got != r1 {
		t.Errorf("Union with empty rect = %v, want %v", got, r1)
	}
}

func TestRect_Contains(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))
	if !r.Contains(Pt(5, 5)) || !r.Contains(Pt(0, 0)) || !r.Contains(Pt(10, 10)) {
		t.Error("Contains should include interior and edges")
	}
	if r.Contains(Pt(-1, 5)) || r.Contains(Pt(5, 11)) {
		t.Error("Contains should exclude outside points")
	}
}

func TestRect_Empty(t *testing.T) {
	if NewRect(Pt(0, 0), Pt(1, 1)).Empty() {
		t.Error("unit rect reported empty")
	}
	if !(Rect{Min: Pt(3, 3), Max: Pt(3, 8)}).Empty() {
		t.Error("zero-width rect not reported empty")
	}
	var zero Rect
	if !zero.Empty() {
		t.Error("zero value not reported empty")
	}
}

func TestRect_AroundExpand(t *testing.T) {
	r := RectAround(Pt(10, 20), 3)
	if !pointsEqual(r.Min, Pt(7, 17), epsilon) || !pointsEqual(r.Max, Pt(13, 23), epsilon) {
		t.Errorf("RectAround = %v", r)
	}

	e := r.Expand(2)
	if !pointsEqual(e.Min, Pt(5, 15), epsilon) || !pointsEqual(e.Max, Pt(15, 25), epsilon) {
		t.Errorf("Expand = %v", e)
	}
}

func TestRect_ToImageRect(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want image.Rectangle
	}{
		{"integral", NewRect(Pt(1, 2), Pt(3, 4)), image.Rect(1, 2, 3, 4)},
		{"fractional grows outward", NewRect(Pt(1.2, 2.7), Pt(3.1, 4.5)), image.Rect(1, 2, 4, 5)},
		{"negative coordinates", NewRect(Pt(-1.5, -0.5), Pt(0.5, 0.5)), image.Rect(-2, -1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.ToImageRect(); got != tt.want {
				t.Errorf("ToImageRect = %v, want %v", got, tt.want)
			}
		})
	}
}
