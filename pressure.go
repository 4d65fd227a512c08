package paint

import "sort"

// CurvePoint is one control point of a response curve. Tangent is the
// slope dy/dx the curve passes through the point with.
type CurvePoint struct {
	X, Y    float64
	Tangent float64
}

// PressureCurve maps a raw stylus reading in [0, 1] to an adjusted
// response in [0, 1] by piecewise cubic Hermite interpolation through
// its control points. The same type drives the pressure, size, and
// opacity response of a brush.
//
// A PressureCurve is immutable after construction and safe for
// concurrent use.
type PressureCurve struct {
	points []CurvePoint
}

// NewPressureCurve builds a curve through the given control points.
// Points are sorted by X; where two share an X coordinate, the first
// wins. An empty point list yields the identity curve.
func NewPressureCurve(points ...CurvePoint) PressureCurve {
	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	kept := sorted[:0]
	for _, p := range sorted {
		if len(kept) > 0 && p.X <= kept[len(kept)-1].X {
			continue
		}
		kept = append(kept, p)
	}
	return PressureCurve{points: kept}
}

// LinearPressure returns the identity response: output equals input.
func LinearPressure() PressureCurve {
	return NewPressureCurve(
		CurvePoint{X: 0, Y: 0, Tangent: 1},
		CurvePoint{X: 1, Y: 1, Tangent: 1},
	)
}

// Points returns a copy of the curve's control points.
func (c PressureCurve) Points() []CurvePoint {
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}

// Evaluate maps an input reading to the adjusted response.
// The input is clamped to [0, 1] first and the result is clamped to
// [0, 1] after interpolation. Inputs outside the control points'
// X range extend the boundary point's Y. Evaluate never fails.
func (c PressureCurve) Evaluate(input float64) float64 {
	x := clamp01(input)
	n := len(c.points)
	switch n {
	case 0:
		return x
	case 1:
		return clamp01(c.points[0].Y)
	}

	if x <= c.points[0].X {
		return clamp01(c.points[0].Y)
	}
	if x >= c.points[n-1].X {
		return clamp01(c.points[n-1].Y)
	}

	// Locate the segment whose [X0, X1) brackets x.
	i := sort.Search(n, func(i int) bool { return c.points[i].X > x }) - 1
	p0 := c.points[i]
	p1 := c.points[i+1]

	h := p1.X - p0.X
	t := (x - p0.X) / h
	t2 := t * t
	t3 := t2 * t

	// Cubic Hermite basis.
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	y := h00*p0.Y + h10*h*p0.Tangent + h01*p1.Y + h11*h*p1.Tangent
	return clamp01(y)
}
