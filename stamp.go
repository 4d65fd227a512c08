package paint

import (
	"image"
	"math"

	"github.com/gogpu/paint/cache"
	"github.com/gogpu/paint/internal/texture"
)

// grainChains caches mip chains per grain source. Brushes share grain
// textures across strokes, and a chain is immutable once built, so the
// first stroke pays for the downsampling and the rest reuse it.
var grainChains = cache.New[*texture.Source, *texture.Chain](64)

// StampShapeRenderer rasterizes single stamps for one stroke: it
// produces the shape mask (procedural disc or custom image), modulates
// the stamp color with grain, and resolves wet mixing against the
// canvas. All of its state is immutable after construction, so one
// renderer can serve concurrent stamp jobs.
type StampShapeRenderer struct {
	brush Brush
	grain *texture.Chain
}

// NewStampShapeRenderer prepares a renderer for a frozen brush
// snapshot. The grain mip chain is resolved here, before any stamp
// renders; nothing allocates per stamp afterwards.
func NewStampShapeRenderer(brush Brush) *StampShapeRenderer {
	r := &StampShapeRenderer{brush: brush}
	if src := brush.Grain.Source; src != nil {
		r.grain = grainChains.GetOrCreate(src, func() *texture.Chain {
			return texture.BuildChain(src)
		})
	}
	return r
}

// Footprint returns the integer canvas rectangle the stamp paints
// into, including the antialiasing fringe and, for image shapes, the
// extra reach of rotated mask corners.
func (r *StampShapeRenderer) Footprint(s Stamp) image.Rectangle {
	half := s.Size / 2
	if r.brush.Shape.Kind == ShapeImage {
		half *= math.Sqrt2
	}
	return RectAround(s.Pos, half+1).ToImageRect()
}

// Render fills dst with the stamp's pixels: straight RGBA, color from
// the resolved stamp color modulated by grain, alpha from shape
// coverage. rect is the stamp's footprint on the canvas; dst must be at
// least rect.Dx() by rect.Dy(). Every pixel of the footprint is
// written, so recycled buffers need no clearing. distance is the
// stroke's cumulative path length at this stamp, which scrolls moving
// grain.
func (r *StampShapeRenderer) Render(dst *Pixmap, s Stamp, color RGBA, distance float64, rect image.Rectangle) {
	w, h := rect.Dx(), rect.Dy()
	radius := s.Size / 2

	cosR, sinR := math.Cos(s.Rotation), math.Sin(s.Rotation)
	hasGrain := r.grain != nil && r.brush.Grain.Depth > 0

	for iy := 0; iy < h; iy++ {
		py := float64(rect.Min.Y+iy) + 0.5
		dy := py - s.Pos.Y
		row := dst.Data()[iy*dst.Width()*4:]

		for ix := 0; ix < w; ix++ {
			px := float64(rect.Min.X+ix) + 0.5
			dx := px - s.Pos.X

			cov := r.coverage(dx, dy, radius, cosR, sinR)
			i := ix * 4
			if cov <= 0 {
				row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
				continue
			}

			c := color
			if hasGrain {
				g := r.sampleGrain(px, py, dx, dy, distance)
				c = applyGrain(r.brush.Grain.Blend, c, g, r.brush.Grain.Depth)
			}

			row[i+0] = uint8(clamp255(c.R * 255))
			row[i+1] = uint8(clamp255(c.G * 255))
			row[i+2] = uint8(clamp255(c.B * 255))
			row[i+3] = uint8(clamp255(cov * c.A * 255))
		}
	}
}

// coverage returns the shape mask value in [0, 1] at the offset
// (dx, dy) from the stamp center.
func (r *StampShapeRenderer) coverage(dx, dy, radius, cosR, sinR float64) float64 {
	if radius <= 0 {
		return 0
	}

	if r.brush.Shape.Kind == ShapeImage {
		// Rotate the offset into the mask's frame, then map to UV.
		rx := dx*cosR + dy*sinR
		ry := -dx*sinR + dy*cosR
		u := rx/(radius*2) + 0.5
		v := ry/(radius*2) + 0.5
		if u < 0 || u > 1 || v < 0 || v > 1 {
			return 0
		}
		return float64(r.brush.Shape.Image.Sample(u, v, texture.AddressClamp)) / 255
	}

	d := math.Sqrt(dx*dx+dy*dy) / radius
	hard := r.brush.Shape.Hardness
	if hard >= 1 {
		// Crisp disc with a one-pixel antialiased rim.
		return clamp01((1-d)*radius + 0.5)
	}

	switch {
	case d <= hard:
		return 1
	case d >= 1:
		return 0
	default:
		t := (d - hard) / (1 - hard)
		return 1 - t*t*(3-2*t)
	}
}

// sampleGrain returns the grain intensity in [0, 1] under a stamp
// pixel. Texturized grain is anchored to canvas coordinates; moving
// grain rides the stroke, scrolling with cumulative distance.
func (r *StampShapeRenderer) sampleGrain(px, py, dx, dy, distance float64) float64 {
	g := r.brush.Grain
	scale := g.Scale * g.Zoom

	src := r.grain.ForScale(scale)
	periodX := float64(g.Source.Width()) * scale
	periodY := float64(g.Source.Height()) * scale

	var cx, cy float64
	if g.Movement == GrainTexturized {
		cx, cy = px, py
	} else {
		cx, cy = dx+distance, dy
	}

	return float64(src.Sample(cx/periodX, cy/periodY, texture.AddressWrap)) / 255
}

// WetMix folds the destination color under the stamp into the stamp
// color, simulating wet paint. under is what the stamp will land on,
// the layer with any earlier stroke paint already applied. It returns
// the adjusted color and an opacity factor in [0, 1] reflecting
// dilution. The effect ramps in over the stroke's first stretch
// according to the attack setting.
func (r *StampShapeRenderer) WetMix(c, under RGBA, distance float64) (RGBA, float64) {
	w := r.brush.WetMix
	if !w.Active() {
		return c, 1
	}

	ramp := 1.0
	if w.Attack < 1 {
		rampDist := r.brush.Size * 4 * (1 - w.Attack)
		if rampDist > 0 {
			ramp = math.Min(1, distance/rampDist)
		}
	}

	if w.Pull > 0 && under.A > 0 {
		mixed := c.Lerp(under, w.Pull*ramp)
		mixed.A = c.A
		c = mixed
	}

	// Charge controls how much pigment the brush keeps carrying; a low
	// charge washes the stroke out toward gray.
	if w.Charge < 1 {
		hue, sat, val := c.HSV()
		sat *= 1 - (1-w.Charge)*ramp
		mixed := HSV(hue, sat, val)
		mixed.A = c.A
		c = mixed
	}

	return c, 1 - w.Dilution*ramp
}
