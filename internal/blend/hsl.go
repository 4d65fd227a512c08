// Non-separable blend modes.
//
// Hue, Saturation, Color and Luminosity exchange HSL components between
// source and backdrop per W3C Compositing and Blending Level 1, section 8.
// DarkerColor and LighterColor compare whole-triplet luminance and keep one
// side intact, which also requires the full triplet.
package blend

import "github.com/chewxy/math32"

// lum returns the luminance of a color using BT.601 coefficients.
// Components are normalized float32 values in [0, 1].
func lum(r, g, b float32) float32 {
	return 0.30*r + 0.59*g + 0.11*b
}

// sat returns the saturation (max - min) of a color.
func sat(r, g, b float32) float32 {
	return max3(r, g, b) - min3(r, g, b)
}

// clipColor scales out-of-range components back into [0, 1] towards the
// color's luminance, preserving relative relationships.
func clipColor(r, g, b float32) (float32, float32, float32) {
	l := lum(r, g, b)
	n := min3(r, g, b)
	x := max3(r, g, b)

	if n < 0 {
		r = l + (r-l)*l/(l-n)
		g = l + (g-l)*l/(l-n)
		b = l + (b-l)*l/(l-n)
	}
	if x > 1 {
		r = l + (r-l)*(1-l)/(x-l)
		g = l + (g-l)*(1-l)/(x-l)
		b = l + (b-l)*(1-l)/(x-l)
	}
	return r, g, b
}

// setLum shifts a color to the target luminance, then clips.
func setLum(r, g, b, l float32) (float32, float32, float32) {
	d := l - lum(r, g, b)
	return clipColor(r+d, g+d, b+d)
}

// setSat rescales a color to the target saturation, preserving the ordering
// of its components. Grayscale input stays grayscale at saturation 0.
func setSat(r, g, b, s float32) (float32, float32, float32) {
	lo, mid, hi := sortRGB(&r, &g, &b)
	if *hi > *lo {
		*mid = (*mid - *lo) * s / (*hi - *lo)
		*hi = s
	} else {
		*mid = 0
		*hi = 0
	}
	*lo = 0
	return r, g, b
}

// sortRGB returns pointers to r, g, b ordered by value.
func sortRGB(r, g, b *float32) (lo, mid, hi *float32) {
	switch {
	case *r <= *g && *g <= *b:
		return r, g, b
	case *r <= *b && *b <= *g:
		return r, b, g
	case *b <= *r && *r <= *g:
		return b, r, g
	case *g <= *r && *r <= *b:
		return g, r, b
	case *g <= *b && *b <= *r:
		return g, b, r
	default:
		return b, g, r
	}
}

func min3(a, b, c float32) float32 {
	return math32.Min(a, math32.Min(b, c))
}

func max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}

// Triplet mixing functions. Cs = source, Cb = backdrop.

// mixHue: SetLum(SetSat(Cs, Sat(Cb)), Lum(Cb))
func mixHue(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	r, g, b := setSat(sr, sg, sb, sat(dr, dg, db))
	return setLum(r, g, b, lum(dr, dg, db))
}

// mixSaturation: SetLum(SetSat(Cb, Sat(Cs)), Lum(Cb))
func mixSaturation(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	r, g, b := setSat(dr, dg, db, sat(sr, sg, sb))
	return setLum(r, g, b, lum(dr, dg, db))
}

// mixColor: SetLum(Cs, Lum(Cb))
func mixColor(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	return setLum(sr, sg, sb, lum(dr, dg, db))
}

// mixLuminosity: SetLum(Cb, Lum(Cs))
func mixLuminosity(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	return setLum(dr, dg, db, lum(sr, sg, sb))
}

// mixDarkerColor keeps whichever color has lower luminance.
func mixDarkerColor(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	if lum(sr, sg, sb) < lum(dr, dg, db) {
		return sr, sg, sb
	}
	return dr, dg, db
}

// mixLighterColor keeps whichever color has higher luminance.
func mixLighterColor(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
	if lum(sr, sg, sb) > lum(dr, dg, db) {
		return sr, sg, sb
	}
	return dr, dg, db
}

// Byte wrappers for the dispatch table.

func blendHue(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixHue)
}

func blendSaturation(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixSaturation)
}

func blendColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixColor)
}

func blendLuminosity(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixLuminosity)
}

func blendDarkerColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixDarkerColor)
}

func blendLighterColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, mixLighterColor)
}

// nonSeparableBlend applies a triplet mixing function under the standard
// compositing formula, converting between premultiplied bytes and
// normalized floats at the boundary.
func nonSeparableBlend(
	sr, sg, sb, sa, dr, dg, db, da byte,
	mix func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32),
) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	saf := float32(sa)
	daf := float32(da)
	sur, sug, sub := float32(sr)/saf, float32(sg)/saf, float32(sb)/saf
	dur, dug, dub := float32(dr)/daf, float32(dg)/daf, float32(db)/daf

	mr, mg, mb := mix(sur, sug, sub, dur, dug, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := saf / 255 * daf / 255

	outA := addClamp(sa, mulDiv255(da, invSa))
	outR := addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa))
	outG := addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa))
	outB := addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa))

	outR = addClamp(outR, byte(math32.Round(mr*saDa*255)))
	outG = addClamp(outG, byte(math32.Round(mg*saDa*255)))
	outB = addClamp(outB, byte(math32.Round(mb*saDa*255)))

	return outR, outG, outB, outA
}
