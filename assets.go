package paint

import (
	"fmt"
	"hash/fnv"
	"image"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/gogpu/paint/cache"
	"github.com/gogpu/paint/internal/texture"
)

// maxAssetEdge caps prepared asset resolution. Brush masters above this
// carry no detail a stamp can resolve; the cap bounds sampling cost and
// cache memory.
const maxAssetEdge = 1024

// assetCache holds prepared sources keyed by content digest and variant.
var assetCache = cache.NewSharded[string, *texture.Source](8, cache.StringHasher)

// PrepareShapeImage turns an arbitrary image into a stamp shape source:
// grayscaled, Lanczos-downscaled so the longer edge fits 1024. Results are
// cached by pixel content, so preparing the same brush asset again returns
// the identical source. Prepare assets before BeginStroke; the stamp loop
// itself never decodes or resizes.
//
// The returned source plugs into a brush via ImageShape.
func PrepareShapeImage(img image.Image) (*texture.Source, error) {
	return prepareAsset(img, "shape")
}

// PrepareGrainImage turns an image into a grain texture source, prepared
// and cached like PrepareShapeImage. Tiling, scale, and scroll behavior
// come from the brush's grain settings at stroke time.
func PrepareGrainImage(img image.Image) (*texture.Source, error) {
	return prepareAsset(img, "grain")
}

// PreparedAssetStats reports hit, miss, and eviction counts for the
// prepared-asset cache.
func PreparedAssetStats() cache.Stats {
	return assetCache.Stats()
}

func prepareAsset(img image.Image, variant string) (*texture.Source, error) {
	if img == nil {
		return nil, fmt.Errorf("paint: nil %s image", variant)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("paint: empty %s image %dx%d", variant, b.Dx(), b.Dy())
	}

	key := assetKey(img, variant)
	if src, ok := assetCache.Get(key); ok {
		return src, nil
	}

	prepared := imaging.Grayscale(img)
	if b.Dx() > maxAssetEdge || b.Dy() > maxAssetEdge {
		if b.Dx() >= b.Dy() {
			prepared = imaging.Resize(prepared, maxAssetEdge, 0, imaging.Lanczos)
		} else {
			prepared = imaging.Resize(prepared, 0, maxAssetEdge, imaging.Lanczos)
		}
	}

	src, err := texture.FromImage(prepared)
	if err != nil {
		return nil, err
	}
	assetCache.Set(key, src)
	return src, nil
}

// assetKey digests image content. The common in-memory formats hash their
// backing pixels directly; anything else pays one NRGBA conversion.
func assetKey(img image.Image, variant string) string {
	h := fnv.New64a()
	b := img.Bounds()
	_, _ = fmt.Fprintf(h, "%dx%d:", b.Dx(), b.Dy())

	switch im := img.(type) {
	case *image.NRGBA:
		_, _ = h.Write(im.Pix)
	case *image.RGBA:
		_, _ = h.Write(im.Pix)
	case *image.Gray:
		_, _ = h.Write(im.Pix)
	default:
		_, _ = h.Write(imaging.Clone(img).Pix)
	}
	return variant + ":" + strconv.FormatUint(h.Sum64(), 16)
}
