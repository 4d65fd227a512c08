// CPU port of shaders/composite.wgsl. Function structure and names match
// the WGSL for cross-reference; the tests hold this port equal to the
// software blend path, which is what makes GPU and CPU composites
// interchangeable. Keep this file and the shader in lockstep.

package gpu

import (
	"encoding/binary"

	"github.com/gogpu/paint/internal/blend"
)

// shaderMode reports whether the composite shader implements a mode.
// The remaining modes use float math on the CPU (soft-light, the HSL
// family) and force a CPU composite.
func shaderMode(m blend.Mode) bool {
	switch m {
	case blend.ModeNormal, blend.ModeBehind,
		blend.ModeDarken, blend.ModeMultiply, blend.ModeColorBurn, blend.ModeLinearBurn,
		blend.ModeLighten, blend.ModeScreen, blend.ModeColorDodge, blend.ModeAdd,
		blend.ModeOverlay, blend.ModeHardLight, blend.ModeVividLight,
		blend.ModeLinearLight, blend.ModePinLight, blend.ModeHardMix,
		blend.ModeDifference, blend.ModeExclusion, blend.ModeSubtract, blend.ModeDivide:
		return true
	default:
		return false
	}
}

func div255(x uint32) uint32 {
	return (x + 255) >> 8
}

func div255Exact(x uint32) uint32 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

func mulDiv255(a, b uint32) uint32 {
	return div255(a * b)
}

func mulDiv255Exact(a, b uint32) uint32 {
	return div255Exact(a * b)
}

func addClamp(a, b uint32) uint32 {
	return min(a+b, 255)
}

func clampByte(v int32) uint32 {
	return uint32(min(max(v, 0), 255))
}

func unmul(c, a uint32) uint32 {
	if a == 0 {
		return 0
	}
	return min((c*255+a/2)/a, 255)
}

func hardLightChan(s, d uint32) uint32 {
	if s <= 127 {
		return div255Exact(2 * s * d)
	}
	return 255 - div255Exact(2*(255-s)*(255-d))
}

func vividLightChan(s, d uint32) uint32 {
	if s < 128 {
		s2 := 2 * s
		if s2 == 0 {
			return 0
		}
		q := (255 - d) * 255 / s2
		if q > 255 {
			return 0
		}
		return 255 - q
	}
	s2 := 2 * (255 - s)
	if s2 == 0 {
		return 255
	}
	return min(d*255/s2, 255)
}

func pinLightChan(s, d uint32) uint32 {
	if s < 128 {
		return min(d, 2*s)
	}
	return max(d, 2*s-255)
}

func mixChannel(mode blend.Mode, s, d uint32) uint32 {
	switch mode {
	case blend.ModeDarken:
		return min(s, d)
	case blend.ModeMultiply:
		return mulDiv255Exact(s, d)
	case blend.ModeColorBurn:
		if s == 0 {
			return 0
		}
		q := (255 - d) * 255 / s
		if q > 255 {
			return 0
		}
		return 255 - q
	case blend.ModeLinearBurn:
		return clampByte(int32(s) + int32(d) - 255)
	case blend.ModeLighten:
		return max(s, d)
	case blend.ModeScreen:
		return 255 - mulDiv255Exact(255-s, 255-d)
	case blend.ModeColorDodge:
		if s == 255 {
			return 255
		}
		return min(d*255/(255-s), 255)
	case blend.ModeAdd:
		return addClamp(s, d)
	case blend.ModeOverlay:
		return hardLightChan(d, s)
	case blend.ModeHardLight:
		return hardLightChan(s, d)
	case blend.ModeVividLight:
		return vividLightChan(s, d)
	case blend.ModeLinearLight:
		return clampByte(int32(d) + 2*int32(s) - 255)
	case blend.ModePinLight:
		return pinLightChan(s, d)
	case blend.ModeHardMix:
		if vividLightChan(s, d) < 128 {
			return 0
		}
		return 255
	case blend.ModeDifference:
		return max(s, d) - min(s, d)
	case blend.ModeExclusion:
		return s + d - 2*mulDiv255Exact(s, d)
	case blend.ModeSubtract:
		if s >= d {
			return 0
		}
		return d - s
	case blend.ModeDivide:
		if s == 0 {
			return 255
		}
		return min(d*255/s, 255)
	default:
		return s
	}
}

func blendSeparable(mode blend.Mode, sr, sg, sb, sa, dr, dg, db, da uint32) (uint32, uint32, uint32, uint32) {
	if da == 0 {
		return sr, sg, sb, sa
	}

	sur, sug, sub := unmul(sr, sa), unmul(sg, sa), unmul(sb, sa)
	dur, dug, dub := unmul(dr, da), unmul(dg, da), unmul(db, da)

	mixR := mixChannel(mode, sur, dur)
	mixG := mixChannel(mode, sug, dug)
	mixB := mixChannel(mode, sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	outA := addClamp(sa, mulDiv255(da, invSa))
	outR := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, mixR))
	outG := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, mixG))
	outB := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, mixB))

	return outR, outG, outB, outA
}

func blendModeTexel(mode blend.Mode, sr, sg, sb, sa, dr, dg, db, da uint32) (uint32, uint32, uint32, uint32) {
	switch mode {
	case blend.ModeNormal:
		invSa := 255 - sa
		return addClamp(sr, mulDiv255(dr, invSa)),
			addClamp(sg, mulDiv255(dg, invSa)),
			addClamp(sb, mulDiv255(db, invSa)),
			addClamp(sa, mulDiv255(da, invSa))
	case blend.ModeBehind:
		invDa := 255 - da
		return addClamp(mulDiv255(sr, invDa), dr),
			addClamp(mulDiv255(sg, invDa), dg),
			addClamp(mulDiv255(sb, invDa), db),
			addClamp(mulDiv255(sa, invDa), da)
	default:
		return blendSeparable(mode, sr, sg, sb, sa, dr, dg, db, da)
	}
}

// Pass flags, mirrored in the shader's Params.flags.
const flagAlphaLock uint32 = 1 << 0

// blendTexel ports the shader's blend_texel: one packed straight-alpha
// RGBA source texel blended into one packed destination texel.
func blendTexel(s, d uint32, mode blend.Mode, opacity uint32, flags uint32) uint32 {
	sr0 := s & 0xff
	sg0 := (s >> 8) & 0xff
	sb0 := (s >> 16) & 0xff
	sa0 := (s >> 24) & 0xff
	dr0 := d & 0xff
	dg0 := (d >> 8) & 0xff
	db0 := (d >> 16) & 0xff
	da0 := (d >> 24) & 0xff

	sa := mulDiv255(sa0, opacity)

	if flags&flagAlphaLock != 0 {
		if da0 == 0 || sa == 0 {
			return d
		}
		sr := mulDiv255(sr0, sa)
		sg := mulDiv255(sg0, sa)
		sb := mulDiv255(sb0, sa)
		r, g, b, _ := blendModeTexel(mode, sr, sg, sb, sa, dr0, dg0, db0, 255)
		return r | g<<8 | b<<16 | da0<<24
	}

	if sa == 0 {
		return d
	}
	sr := mulDiv255(sr0, sa)
	sg := mulDiv255(sg0, sa)
	sb := mulDiv255(sb0, sa)
	dr := mulDiv255(dr0, da0)
	dg := mulDiv255(dg0, da0)
	db := mulDiv255(db0, da0)

	r, g, b, a := blendModeTexel(mode, sr, sg, sb, sa, dr, dg, db, da0)
	return unmul(r, a) | unmul(g, a)<<8 | unmul(b, a)<<16 | a<<24
}

// blendPass runs one shader dispatch on the CPU: src blended into dst over
// len/4 texels. Both slices hold straight RGBA bytes.
func blendPass(dst, src []byte, mode blend.Mode, opacity byte, flags uint32) {
	n := len(dst) &^ 3
	if len(src) < n {
		n = len(src) &^ 3
	}
	for i := 0; i < n; i += 4 {
		s := binary.LittleEndian.Uint32(src[i:])
		d := binary.LittleEndian.Uint32(dst[i:])
		binary.LittleEndian.PutUint32(dst[i:], blendTexel(s, d, mode, uint32(opacity), flags))
	}
}
