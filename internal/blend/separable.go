package blend

import "github.com/chewxy/math32"

// separableBlend applies a per-channel mixing function under the standard
// compositing formula
//
//	Result = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Cs, Cb)
//
// where B operates on unmultiplied channels. Source and destination are
// premultiplied; so is the result.
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, mix func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	sur, sug, sub := unmul(sr, sa), unmul(sg, sa), unmul(sb, sa)
	dur, dug, dub := unmul(dr, da), unmul(dg, da), unmul(db, da)

	mixR := mix(sur, dur)
	mixG := mix(sug, dug)
	mixB := mix(sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	outA := addClamp(sa, mulDiv255(da, invSa))
	outR := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, mixR))
	outG := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, mixG))
	outB := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, mixB))

	return outR, outG, outB, outA
}

// Darken family.

// blendDarken selects the darker channel.
// B(Cs, Cb) = min(Cs, Cb)
func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return min(s, d)
	})
}

// blendMultiply multiplies source and destination channels.
// B(Cs, Cb) = Cs * Cb
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, mulDiv255Exact)
}

// blendColorBurn darkens the backdrop to reflect the source.
// B(Cs, Cb) = 1 - min(1, (1-Cb)/Cs), with B = 0 at Cs = 0
func blendColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, colorBurnChan)
}

func colorBurnChan(s, d byte) byte {
	if s == 0 {
		return 0
	}
	q := uint32(255-d) * 255 / uint32(s)
	if q > 255 {
		return 0
	}
	return byte(255 - q)
}

// blendLinearBurn sums and shifts down.
// B(Cs, Cb) = Cs + Cb - 1
func blendLinearBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return clampByte(int32(s) + int32(d) - 255)
	})
}

// Lighten family.

// blendLighten selects the lighter channel.
// B(Cs, Cb) = max(Cs, Cb)
func blendLighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return max(s, d)
	})
}

// blendScreen inverts, multiplies, inverts.
// B(Cs, Cb) = 1 - (1-Cs)*(1-Cb)
func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, screenChan)
}

func screenChan(s, d byte) byte {
	return 255 - mulDiv255Exact(255-s, 255-d)
}

// blendColorDodge brightens the backdrop to reflect the source.
// B(Cs, Cb) = min(1, Cb/(1-Cs)), with B = 1 at Cs = 1
func blendColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, colorDodgeChan)
}

func colorDodgeChan(s, d byte) byte {
	if s == 255 {
		return 255
	}
	q := uint32(d) * 255 / uint32(255-s)
	if q > 255 {
		return 255
	}
	return byte(q)
}

// blendAdd is linear dodge.
// B(Cs, Cb) = min(1, Cs + Cb)
func blendAdd(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, addClamp)
}

// Contrast family.

// blendOverlay is HardLight with the layers swapped.
func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return hardLightChan(d, s)
	})
}

// blendHardLight multiplies or screens depending on the source.
// B(Cs, Cb) = Multiply(Cb, 2*Cs) for Cs <= 0.5, Screen(Cb, 2*Cs-1) otherwise
func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, hardLightChan)
}

func hardLightChan(s, d byte) byte {
	if s <= 127 {
		return byte(div255Exact(2 * uint32(s) * uint32(d)))
	}
	return 255 - byte(div255Exact(2*uint32(255-s)*uint32(255-d)))
}

// blendSoftLight darkens or lightens depending on the source, gently.
// The Cs > 0.5 branch uses the W3C D(x) ramp: a cubic below x = 0.25 and
// sqrt(x) above.
func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, softLightChan)
}

func softLightChan(s, d byte) byte {
	sf := float32(s) / 255
	df := float32(d) / 255

	var r float32
	if sf <= 0.5 {
		r = df - (1-2*sf)*df*(1-df)
	} else {
		var dx float32
		if df <= 0.25 {
			dx = ((16*df-12)*df + 4) * df
		} else {
			dx = math32.Sqrt(df)
		}
		r = df + (2*sf-1)*(dx-df)
	}

	if r <= 0 {
		return 0
	}
	if r >= 1 {
		return 255
	}
	return byte(r*255 + 0.5)
}

// blendVividLight burns or dodges depending on the source.
// B(Cs, Cb) = ColorBurn(Cb, 2*Cs) for Cs < 0.5, ColorDodge(Cb, 2*Cs-1) otherwise
func blendVividLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, vividLightChan)
}

func vividLightChan(s, d byte) byte {
	if s < 128 {
		s2 := 2 * uint32(s)
		if s2 == 0 {
			return 0
		}
		q := uint32(255-d) * 255 / s2
		if q > 255 {
			return 0
		}
		return byte(255 - q)
	}
	s2 := 2 * uint32(255-s)
	if s2 == 0 {
		return 255
	}
	q := uint32(d) * 255 / s2
	if q > 255 {
		return 255
	}
	return byte(q)
}

// blendLinearLight burns or dodges linearly.
// B(Cs, Cb) = Cb + 2*Cs - 1
func blendLinearLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return clampByte(int32(d) + 2*int32(s) - 255)
	})
}

// blendPinLight darkens or lightens by threshold.
// B(Cs, Cb) = min(Cb, 2*Cs) for Cs < 0.5, max(Cb, 2*Cs-1) otherwise
func blendPinLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, pinLightChan)
}

func pinLightChan(s, d byte) byte {
	if s < 128 {
		t := 2 * uint32(s)
		if uint32(d) < t {
			return d
		}
		return byte(t)
	}
	t := 2*uint32(s) - 255
	if uint32(d) > t {
		return d
	}
	return byte(t)
}

// blendHardMix thresholds VividLight to full or no intensity per channel.
func blendHardMix(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if vividLightChan(s, d) < 128 {
			return 0
		}
		return 255
	})
}

// Difference family.

// blendDifference takes the absolute channel difference.
// B(Cs, Cb) = |Cs - Cb|
func blendDifference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// blendExclusion is Difference with lower contrast.
// B(Cs, Cb) = Cs + Cb - 2*Cs*Cb
func blendExclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		sum := uint32(s) + uint32(d)
		return byte(sum - 2*uint32(mulDiv255Exact(s, d)))
	})
}

// blendSubtract removes source intensity from the backdrop.
// B(Cs, Cb) = Cb - Cs
func blendSubtract(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return subClamp(d, s)
	})
}

// blendDivide divides the backdrop by the source.
// B(Cs, Cb) = min(1, Cb/Cs), with B = 1 at Cs = 0
func blendDivide(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s == 0 {
			return 255
		}
		q := uint32(d) * 255 / uint32(s)
		if q > 255 {
			return 255
		}
		return byte(q)
	})
}
