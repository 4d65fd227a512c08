package paint

import "math/rand"

// colorShift is one sampled set of jitter offsets.
type colorShift struct {
	hue        float64 // degrees
	saturation float64
	brightness float64
}

// ColorDynamicsEngine perturbs the active stroke color in HSV space.
// Depending on the brush it samples fresh jitter for every stamp or
// locks one jitter at stroke start and reuses it, so a whole stroke
// shifts together. The engine is seeded, so a stroke replayed with the
// same seed produces identical colors.
type ColorDynamicsEngine struct {
	settings ColorDynamicsSettings
	rng      *rand.Rand
	locked   colorShift
	hasLock  bool
}

// NewColorDynamicsEngine creates an engine for one stroke.
func NewColorDynamicsEngine(settings ColorDynamicsSettings, seed int64) *ColorDynamicsEngine {
	return &ColorDynamicsEngine{
		settings: settings,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Reset discards the stroke-locked jitter so the next Apply samples a
// new one. Call at stroke start.
func (e *ColorDynamicsEngine) Reset() {
	e.hasLock = false
}

func (e *ColorDynamicsEngine) sample() colorShift {
	return colorShift{
		hue:        (e.rng.Float64()*2 - 1) * e.settings.HueJitter,
		saturation: (e.rng.Float64()*2 - 1) * e.settings.SaturationJitter,
		brightness: (e.rng.Float64()*2 - 1) * e.settings.BrightnessJitter,
	}
}

// Apply returns the stamp color derived from base. Hue rotates and
// wraps; saturation and brightness shift and clamp; heavier pressure
// darkens the result when the brush couples pressure to darkness.
// Alpha passes through untouched.
func (e *ColorDynamicsEngine) Apply(base RGBA, pressure float64) RGBA {
	if !e.settings.Active() {
		return base
	}

	var shift colorShift
	if e.settings.PerStamp {
		shift = e.sample()
	} else {
		if !e.hasLock {
			e.locked = e.sample()
			e.hasLock = true
		}
		shift = e.locked
	}

	h, s, v := base.HSV()
	h += shift.hue
	s = clamp01(s + shift.saturation)
	v = clamp01(v + shift.brightness)
	v *= 1 - e.settings.PressureDarken*clamp01(pressure)

	out := HSV(h, s, v)
	out.A = base.A
	return out
}
