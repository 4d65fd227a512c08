package paint

import (
	"math"

	"github.com/gogpu/paint/internal/texture"
)

// ShapeKind selects how a stamp's mask is produced.
type ShapeKind uint8

const (
	// ShapeDisc renders a round stamp with a hardness-controlled edge.
	ShapeDisc ShapeKind = iota
	// ShapeImage samples a custom grayscale image as the stamp mask.
	ShapeImage
)

// ShapeSource describes the stamp mask of a brush: either a procedural
// disc or a custom image. The zero value is a fully soft disc.
type ShapeSource struct {
	Kind ShapeKind
	// Hardness controls the disc's edge: 1 is a crisp antialiased rim,
	// 0 a falloff that starts at the center. Ignored for image shapes.
	Hardness float64
	Image    *texture.Source
}

// DiscShape returns the procedural round stamp shape with the given
// edge hardness in [0, 1].
func DiscShape(hardness float64) ShapeSource {
	return ShapeSource{Kind: ShapeDisc, Hardness: hardness}
}

// ImageShape returns a stamp shape sampled from a grayscale mask image.
// A nil image falls back to a hard disc.
func ImageShape(img *texture.Source) ShapeSource {
	if img == nil {
		return DiscShape(1)
	}
	return ShapeSource{Kind: ShapeImage, Image: img}
}

// RotationMode selects how each stamp is oriented.
type RotationMode uint8

const (
	// RotationFixed keeps every stamp at the brush's Angle.
	RotationFixed RotationMode = iota
	// RotationRandom picks a fresh random orientation per stamp.
	RotationRandom
	// RotationAzimuth follows the stylus azimuth.
	RotationAzimuth
)

// RenderingMode selects how stamp opacity builds up along a stroke.
type RenderingMode uint8

const (
	// RenderUniform holds constant stamp opacity along the stroke.
	RenderUniform RenderingMode = iota
	// RenderLight paints at half strength, for delicate sketching.
	RenderLight
	// RenderGlazed ramps opacity up with accumulated stroke distance.
	RenderGlazed
	// RenderHeavyGlaze ramps like glazed but never below a floor.
	RenderHeavyGlaze
	// RenderIntense overdrives stamp opacity past the base value; the
	// excess is clamped when the stroke merges into the layer.
	RenderIntense
)

// GrainMovement selects the UV space grain is sampled in.
type GrainMovement uint8

const (
	// GrainMoving scrolls the grain with the stroke's cumulative
	// distance, as if the texture were printed on the bristles.
	GrainMoving GrainMovement = iota
	// GrainTexturized fixes the grain to canvas coordinates, as if the
	// texture were embedded in the paper.
	GrainTexturized
)

// GrainBlend selects the formula combining grain and stamp intensity.
type GrainBlend uint8

const (
	GrainMultiply GrainBlend = iota
	GrainScreen
	GrainOverlay
	GrainAdd
	GrainSubtract
	GrainDifference
	GrainLinearBurn
	GrainLinearDodge
)

// GrainSettings configures the texture modulating a brush's stamps.
// A nil Source disables grain entirely.
type GrainSettings struct {
	Source   *texture.Source
	Scale    float64 // texture texels per canvas pixel
	Zoom     float64 // additional magnification on top of Scale
	Blend    GrainBlend
	Depth    float64 // [0, 1]; how strongly grain shows through
	Movement GrainMovement
}

// WetMixSettings simulates paint picking up color from the canvas.
type WetMixSettings struct {
	Dilution float64 // [0, 1]; attenuates stamp opacity
	Charge   float64 // [0, 1]; scales how much paint the brush carries
	Attack   float64 // [0, 1]; how quickly mixing reaches full strength
	Pull     float64 // [0, 1]; how much canvas color mixes into the stamp
}

// Active reports whether wet mixing has any effect.
func (w WetMixSettings) Active() bool {
	return w.Pull > 0 || w.Dilution > 0
}

// ColorDynamicsSettings configures per-stamp or per-stroke color jitter.
type ColorDynamicsSettings struct {
	HueJitter        float64 // degrees of random hue rotation
	SaturationJitter float64 // [0, 1]
	BrightnessJitter float64 // [0, 1]
	PressureDarken   float64 // [0, 1]; heavier pressure darkens the stamp
	PerStamp         bool    // false locks one jitter for the whole stroke
}

// Active reports whether any jitter component is configured.
func (d ColorDynamicsSettings) Active() bool {
	return d.HueJitter > 0 || d.SaturationJitter > 0 || d.BrightnessJitter > 0 || d.PressureDarken > 0
}

// TaperSettings thin out a stroke's ends.
type TaperSettings struct {
	Length  float64 // taper ramp length in multiples of brush size
	Size    float64 // [0, 1]; fraction of size removed at the very tip
	Opacity float64 // [0, 1]; fraction of opacity removed at the very tip
}

// Brush describes everything about how a stroke paints: shape, spacing,
// response curves, grain, wet mixing, and compositing. A Brush is a
// plain immutable value; the rasterizer snapshots it at stroke start so
// later edits never alter an in-flight stroke.
//
// Construct one from DefaultBrush and adjust fields:
//
//	b := paint.DefaultBrush()
//	b.Size = 32
//	b.Spacing = 0.05
//	b = b.Normalize()
type Brush struct {
	Name string

	Size    float64 // stamp diameter in canvas pixels
	Opacity float64 // base stroke opacity [0, 1]
	Flow    float64 // per-stamp opacity [0, 1], builds up within a stroke
	Blend   BlendMode

	Spacing    float64 // distance between stamps as a fraction of Size
	Streamline float64 // [0, 1]; input smoothing strength
	Jitter     float64 // [0, 1]; random stamp offset as a fraction of Size
	Falloff    float64 // [0, 1]; fades stamp opacity out over stroke distance

	Taper TaperSettings

	Shape      ShapeSource
	Scatter    float64 // [0, 1]; perpendicular scatter as a fraction of Size
	Rotation   RotationMode
	Angle      float64 // fixed stamp angle in radians (RotationFixed)
	StampCount int     // stamps per spacing step, fanned over 360 degrees

	Grain     GrainSettings
	Rendering RenderingMode
	WetMix    WetMixSettings
	Dynamics  ColorDynamicsSettings

	PressureCurve PressureCurve // shapes raw stylus pressure
	SizeCurve     PressureCurve // pressure to size response
	OpacityCurve  PressureCurve // pressure to opacity response

	TiltSensitivity float64 // [0, 1]; how much stylus tilt widens stamps
	Bleed           float64 // [0, 1]; extra size growth under pressure

	MinSize    float64 // [0, 1]; size floor as a fraction of Size
	MinOpacity float64 // [0, 1]; opacity floor as a fraction of Opacity
}

// DefaultBrush returns a plain round brush: hard disc, 10% spacing,
// linear response, no grain, no wet mixing.
func DefaultBrush() Brush {
	return Brush{
		Name:          "Round",
		Size:          20,
		Opacity:       1,
		Flow:          1,
		Blend:         BlendNormal,
		Spacing:       0.1,
		Shape:         DiscShape(1),
		StampCount:    1,
		Grain:         GrainSettings{Scale: 1, Zoom: 1},
		PressureCurve: LinearPressure(),
		SizeCurve:     LinearPressure(),
		OpacityCurve:  LinearPressure(),
	}
}

// Normalize returns a copy of the brush with every parameter clamped to
// its valid range. Out-of-range values are adjusted silently; a brush
// that has passed through Normalize never causes a rendering error.
func (b Brush) Normalize() Brush {
	b.Size = math.Max(1, b.Size)
	b.Opacity = clamp01(b.Opacity)
	b.Flow = clamp01(b.Flow)
	if !b.Blend.Valid() {
		b.Blend = BlendNormal
	}

	// Spacing below 0.1% of size would emit thousands of stamps per
	// pixel; impose the same floor the rasterizer assumes.
	b.Spacing = math.Max(0.001, b.Spacing)
	b.Streamline = clamp01(b.Streamline)
	b.Jitter = clamp01(b.Jitter)
	b.Falloff = clamp01(b.Falloff)

	b.Taper.Length = math.Max(0, b.Taper.Length)
	b.Taper.Size = clamp01(b.Taper.Size)
	b.Taper.Opacity = clamp01(b.Taper.Opacity)

	if b.Shape.Kind == ShapeImage && b.Shape.Image == nil {
		b.Shape = DiscShape(1)
	}
	b.Shape.Hardness = clamp01(b.Shape.Hardness)
	b.Scatter = clamp01(b.Scatter)
	if b.StampCount < 1 {
		b.StampCount = 1
	}

	if b.Grain.Scale <= 0 {
		b.Grain.Scale = 1
	}
	if b.Grain.Zoom <= 0 {
		b.Grain.Zoom = 1
	}
	b.Grain.Depth = clamp01(b.Grain.Depth)

	b.WetMix.Dilution = clamp01(b.WetMix.Dilution)
	b.WetMix.Charge = clamp01(b.WetMix.Charge)
	b.WetMix.Attack = clamp01(b.WetMix.Attack)
	b.WetMix.Pull = clamp01(b.WetMix.Pull)

	b.Dynamics.HueJitter = math.Max(0, math.Min(360, b.Dynamics.HueJitter))
	b.Dynamics.SaturationJitter = clamp01(b.Dynamics.SaturationJitter)
	b.Dynamics.BrightnessJitter = clamp01(b.Dynamics.BrightnessJitter)
	b.Dynamics.PressureDarken = clamp01(b.Dynamics.PressureDarken)

	b.TiltSensitivity = clamp01(b.TiltSensitivity)
	b.Bleed = clamp01(b.Bleed)
	b.MinSize = clamp01(b.MinSize)
	b.MinOpacity = clamp01(b.MinOpacity)
	return b
}
