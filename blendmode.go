package paint

import "github.com/gogpu/paint/internal/blend"

// BlendMode defines how a layer's pixels combine with the pixels
// beneath it during compositing. The same modes apply to brushes when a
// stroke merges into its layer.
type BlendMode = blend.Mode

// Blend modes. Unknown values composite as BlendNormal.
const (
	// BlendNormal performs standard alpha blending (source over destination).
	BlendNormal = blend.ModeNormal

	// BlendDarken keeps the darker of source and destination per channel.
	BlendDarken = blend.ModeDarken

	// BlendMultiply multiplies source and destination colors.
	// Result is always darker or equal. Formula: dst * src
	BlendMultiply = blend.ModeMultiply

	// BlendColorBurn darkens the destination to reflect the source.
	BlendColorBurn = blend.ModeColorBurn

	// BlendLinearBurn sums the channels and subtracts white.
	BlendLinearBurn = blend.ModeLinearBurn

	// BlendDarkerColor keeps whichever pixel has the lower luminance.
	BlendDarkerColor = blend.ModeDarkerColor

	// BlendLighten keeps the lighter of source and destination per channel.
	BlendLighten = blend.ModeLighten

	// BlendScreen performs inverse multiply for lighter results.
	// Formula: 1 - (1-dst) * (1-src)
	BlendScreen = blend.ModeScreen

	// BlendColorDodge brightens the destination to reflect the source.
	BlendColorDodge = blend.ModeColorDodge

	// BlendAdd sums source and destination, clamping at white.
	BlendAdd = blend.ModeAdd

	// BlendLighterColor keeps whichever pixel has the higher luminance.
	BlendLighterColor = blend.ModeLighterColor

	// BlendOverlay combines multiply and screen based on destination brightness.
	// Dark areas are multiplied, bright areas are screened.
	BlendOverlay = blend.ModeOverlay

	// BlendSoftLight darkens or lightens gently depending on the source.
	BlendSoftLight = blend.ModeSoftLight

	// BlendHardLight is overlay with the roles of the two pixels swapped.
	BlendHardLight = blend.ModeHardLight

	// BlendVividLight burns dark sources and dodges bright ones.
	BlendVividLight = blend.ModeVividLight

	// BlendLinearLight burns dark sources and dodges bright ones linearly.
	BlendLinearLight = blend.ModeLinearLight

	// BlendPinLight replaces channels depending on source brightness.
	BlendPinLight = blend.ModePinLight

	// BlendHardMix pushes every channel to 0 or 255.
	BlendHardMix = blend.ModeHardMix

	// BlendDifference takes the absolute channel difference.
	BlendDifference = blend.ModeDifference

	// BlendExclusion is a lower-contrast difference.
	BlendExclusion = blend.ModeExclusion

	// BlendSubtract subtracts the source from the destination.
	BlendSubtract = blend.ModeSubtract

	// BlendDivide divides the destination by the source.
	BlendDivide = blend.ModeDivide

	// BlendHue takes the source hue with the destination's saturation
	// and luminosity.
	BlendHue = blend.ModeHue

	// BlendSaturation takes the source saturation with the destination's
	// hue and luminosity.
	BlendSaturation = blend.ModeSaturation

	// BlendColor takes the source hue and saturation with the
	// destination's luminosity.
	BlendColor = blend.ModeColor

	// BlendLuminosity takes the source luminosity with the destination's
	// hue and saturation.
	BlendLuminosity = blend.ModeLuminosity

	// BlendBehind paints only where the destination is transparent.
	BlendBehind = blend.ModeBehind
)

// ParseBlendMode resolves a mode name like "multiply" or "soft-light".
// The boolean reports whether the name was recognized.
func ParseBlendMode(name string) (BlendMode, bool) {
	return blend.ParseMode(name)
}
