package blend

// BlendBatch blends src into dst in place for len(dst)/4 pixels.
//
// Both slices hold straight (unpremultiplied) RGBA bytes and must have equal
// length, a multiple of 4. opacity scales every source pixel's alpha.
// clip, when non-nil, holds one alpha byte per pixel that further scales
// source alpha; it is how clipping masks bound a layer's contribution.
//
// Premultiplication happens at the boundary: source and destination are
// premultiplied before fn runs and the result is unmultiplied before the
// write-back, so callers keep straight buffers throughout.
func BlendBatch(dst, src []byte, fn Func, opacity byte, clip []byte) {
	n := len(dst) &^ 3
	if len(src) < n {
		n = len(src) &^ 3
	}

	for i := 0; i < n; i += 4 {
		sa := mulDiv255(src[i+3], opacity)
		if clip != nil {
			sa = mulDiv255(sa, clip[i>>2])
		}
		if sa == 0 {
			continue
		}

		sr := mulDiv255(src[i], sa)
		sg := mulDiv255(src[i+1], sa)
		sb := mulDiv255(src[i+2], sa)

		da := dst[i+3]
		dr := mulDiv255(dst[i], da)
		dg := mulDiv255(dst[i+1], da)
		db := mulDiv255(dst[i+2], da)

		r, g, b, a := fn(sr, sg, sb, sa, dr, dg, db, da)

		dst[i] = unmul(r, a)
		dst[i+1] = unmul(g, a)
		dst[i+2] = unmul(b, a)
		dst[i+3] = a
	}
}

// BlendBatchLocked is the alpha-locked variant of BlendBatch: pixels whose
// destination alpha is zero are skipped, and for the rest only the color
// channels change. The destination color is treated as an opaque backdrop,
// which reduces the compositing formula to painting at source coverage
// within the existing footprint.
func BlendBatchLocked(dst, src []byte, fn Func, opacity byte) {
	n := len(dst) &^ 3
	if len(src) < n {
		n = len(src) &^ 3
	}

	for i := 0; i < n; i += 4 {
		da := dst[i+3]
		if da == 0 {
			continue
		}
		sa := mulDiv255(src[i+3], opacity)
		if sa == 0 {
			continue
		}

		sr := mulDiv255(src[i], sa)
		sg := mulDiv255(src[i+1], sa)
		sb := mulDiv255(src[i+2], sa)

		// Backdrop alpha forced opaque: the result is premultiplied by
		// 255, so it is already straight.
		r, g, b, _ := fn(sr, sg, sb, sa, dst[i], dst[i+1], dst[i+2], 255)

		dst[i] = r
		dst[i+1] = g
		dst[i+2] = b
	}
}

// SourceOverBatch is the fast path for plain Normal blending at full
// opacity, the common case when flattening a stroke buffer.
func SourceOverBatch(dst, src []byte) {
	n := len(dst) &^ 3
	if len(src) < n {
		n = len(src) &^ 3
	}

	for i := 0; i < n; i += 4 {
		sa := src[i+3]
		if sa == 0 {
			continue
		}
		if sa == 255 {
			dst[i] = src[i]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+2]
			dst[i+3] = 255
			continue
		}

		sr := mulDiv255(src[i], sa)
		sg := mulDiv255(src[i+1], sa)
		sb := mulDiv255(src[i+2], sa)

		da := dst[i+3]
		invSa := 255 - sa

		r := addClamp(sr, mulDiv255(mulDiv255(dst[i], da), invSa))
		g := addClamp(sg, mulDiv255(mulDiv255(dst[i+1], da), invSa))
		b := addClamp(sb, mulDiv255(mulDiv255(dst[i+2], da), invSa))
		a := addClamp(sa, mulDiv255(da, invSa))

		dst[i] = unmul(r, a)
		dst[i+1] = unmul(g, a)
		dst[i+2] = unmul(b, a)
		dst[i+3] = a
	}
}
