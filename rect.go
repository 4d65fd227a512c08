package paint

import (
	"image"
	"math"
)

// Rect represents an axis-aligned rectangle.
// Min is the top-left corner (minimum coordinates).
// Max is the bottom-right corner (maximum coordinates).
type Rect struct {
	Min, Max Point
}

// NewRect creates a rectangle from two points.
// The points are normalized so Min <= Max.
func NewRect(p1, p2 Point) Rect {
	return Rect{
		Min: Point{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y)},
		Max: Point{X: math.Max(p1.X, p2.X), Y: math.Max(p1.Y, p2.Y)},
	}
}

// RectAround creates a square rectangle centered on p with the given
// half-extent. A stamp of radius r placed at p paints inside
// RectAround(p, r).
func RectAround(p Point, halfExtent float64) Rect {
	return Rect{
		Min: Point{X: p.X - halfExtent, Y: p.Y - halfExtent},
		Max: Point{X: p.X + halfExtent, Y: p.Y + halfExtent},
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Union returns the smallest rectangle containing both r and other.
// An empty rectangle acts as the identity.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	return Rect{
		Min: Point{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// ToImageRect rounds the rectangle outward to the enclosing integer
// pixel rectangle.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Min.X)),
		int(math.Floor(r.Min.Y)),
		int(math.Ceil(r.Max.X)),
		int(math.Ceil(r.Max.Y)),
	)
}
