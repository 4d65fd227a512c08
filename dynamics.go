package paint

import (
	"math"
	"math/rand"
)

// Stamp is one placement instruction for the shape renderer: where to
// paint, how large, how opaque, and at what orientation. Opacity here
// reflects the pressure response and taper only; flow and the brush's
// rendering mode apply later, when the stamp composites into the
// stroke buffer.
type Stamp struct {
	Pos      Point
	Size     float64 // diameter in canvas pixels
	Opacity  float64 // [0, 1]
	Rotation float64 // radians
}

// StampDynamicsEngine turns smoothed stroke points into stamps,
// applying the brush's pressure curves, tilt response, scatter, jitter,
// and multi-stamp fan. Like the color engine it is seeded per stroke,
// so replays are identical.
type StampDynamicsEngine struct {
	brush Brush
	rng   *rand.Rand
}

// NewStampDynamicsEngine creates an engine for one stroke using a
// frozen brush snapshot.
func NewStampDynamicsEngine(brush Brush, seed int64) *StampDynamicsEngine {
	return &StampDynamicsEngine{
		brush: brush,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// StampsFor appends the stamp(s) for one smoothed point to dst and
// returns it. heading is the stroke's unit direction of travel, used to
// orient scatter perpendicular to the path; a zero heading disables
// scatter. taper in [0, 1] thins the stroke near its start (1 = no
// taper).
//
// Multi-stamp brushes emit StampCount stamps at the same position,
// fanned over a full turn.
func (e *StampDynamicsEngine) StampsFor(dst []Stamp, p StrokePoint, heading Point, taper float64) []Stamp {
	b := &e.brush
	shaped := b.PressureCurve.Evaluate(p.Pressure)

	size := b.SizeCurve.Evaluate(shaped) * b.Size
	if b.TiltSensitivity > 0 {
		size *= 1 + b.TiltSensitivity*math.Sin(p.Tilt)
	}
	if b.Bleed > 0 {
		size *= 1 + 0.5*b.Bleed*shaped
	}
	size = math.Max(size, b.MinSize*b.Size)
	size *= 1 - b.Taper.Size*(1-clamp01(taper))

	opacity := b.OpacityCurve.Evaluate(shaped) * b.Opacity
	opacity = math.Max(opacity, b.MinOpacity*b.Opacity)
	opacity *= 1 - b.Taper.Opacity*(1-clamp01(taper))

	var rotation float64
	switch b.Rotation {
	case RotationRandom:
		rotation = e.rng.Float64() * 2 * math.Pi
	case RotationAzimuth:
		rotation = p.Azimuth + b.Angle
	default:
		rotation = b.Angle
	}

	pos := p.Pos
	if b.Jitter > 0 {
		angle := e.rng.Float64() * 2 * math.Pi
		radius := e.rng.Float64() * b.Jitter * size * 0.5
		pos = pos.Add(Pt(radius, 0).Rotate(angle))
	}
	if b.Scatter > 0 {
		perp := heading.Perp()
		if perp.LengthSquared() > 0 {
			amount := (e.rng.Float64()*2 - 1) * b.Scatter * size * 0.5
			pos = pos.Add(perp.Normalize().Mul(amount))
		}
	}

	count := b.StampCount
	if count < 1 {
		count = 1
	}
	step := 2 * math.Pi / float64(count)
	for i := 0; i < count; i++ {
		dst = append(dst, Stamp{
			Pos:      pos,
			Size:     size,
			Opacity:  clamp01(opacity),
			Rotation: rotation + float64(i)*step,
		})
	}
	return dst
}
