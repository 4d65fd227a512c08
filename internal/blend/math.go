// Byte math for alpha blending.
//
// mulDiv255 runs for every pixel of every blend, so the /255 family avoids
// integer division. The fast form has a maximum error of +1, invisible in
// 8-bit compositing; the exact form (Alvy Ray Smith's formula,
// http://alvyray.com/Memos/) backs reference paths and tests.
package blend

// div255 divides x by 255 using the fast shift approximation (x + 255) >> 8.
// For blending inputs (0..255*255) the result stays in byte range.
func div255(x uint32) uint32 {
	return (x + 255) >> 8
}

// div255Exact divides x by 255 exactly without division.
func div255Exact(x uint32) uint32 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255, fast form.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// mulDiv255Exact multiplies two bytes and divides by 255 exactly.
func mulDiv255Exact(a, b byte) byte {
	return byte(div255Exact(uint32(a) * uint32(b)))
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint32(a) + uint32(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// subClamp subtracts b from a, clamping to 0.
func subClamp(a, b byte) byte {
	if b >= a {
		return 0
	}
	return a - b
}

// unmul reverses premultiplication for one channel, rounding to nearest.
// Returns 0 when alpha is 0.
func unmul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

// clampByte clamps a signed intermediate to byte range.
func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
