package paint

import "math"

var grainBlendNames = [...]string{
	GrainMultiply:    "multiply",
	GrainScreen:      "screen",
	GrainOverlay:     "overlay",
	GrainAdd:         "add",
	GrainSubtract:    "subtract",
	GrainDifference:  "difference",
	GrainLinearBurn:  "linear-burn",
	GrainLinearDodge: "linear-dodge",
}

// String returns the grain blend's name.
func (m GrainBlend) String() string {
	if int(m) < len(grainBlendNames) {
		return grainBlendNames[m]
	}
	return "unknown"
}

// ParseGrainBlend resolves a grain blend name like "linear-burn".
// The boolean reports whether the name was recognized.
func ParseGrainBlend(name string) (GrainBlend, bool) {
	for i, n := range grainBlendNames {
		if n == name {
			return GrainBlend(i), true
		}
	}
	return GrainMultiply, false
}

// grainBlendChannel combines one color channel with a grain intensity,
// both in [0, 1]. Unknown modes leave the channel unchanged.
func grainBlendChannel(mode GrainBlend, c, g float64) float64 {
	switch mode {
	case GrainMultiply:
		return c * g
	case GrainScreen:
		return 1 - (1-c)*(1-g)
	case GrainOverlay:
		if c <= 0.5 {
			return 2 * c * g
		}
		return 1 - 2*(1-c)*(1-g)
	case GrainAdd, GrainLinearDodge:
		return math.Min(1, c+g)
	case GrainSubtract:
		return math.Max(0, c-g)
	case GrainDifference:
		return math.Abs(c - g)
	case GrainLinearBurn:
		return math.Max(0, c+g-1)
	}
	return c
}

// applyGrain blends a grain sample into a stamp color, weighted by the
// grain depth. Depth 0 leaves the color untouched; depth 1 replaces it
// with the full blend result. Alpha is unaffected.
func applyGrain(mode GrainBlend, c RGBA, g, depth float64) RGBA {
	if depth <= 0 {
		return c
	}
	return RGBA{
		R: c.R + (grainBlendChannel(mode, c.R, g)-c.R)*depth,
		G: c.G + (grainBlendChannel(mode, c.G, g)-c.G)*depth,
		B: c.B + (grainBlendChannel(mode, c.B, g)-c.B)*depth,
		A: c.A,
	}
}
