package texture

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Chain holds pre-computed downscaled versions of a Source.
//
// Level 0 is the original raster; each further level halves both dimensions
// until the smaller one reaches 1 texel. Stamps drawn far below the shape's
// native resolution sample from a coarser level, which kills the shimmer
// a raw bilinear downsample would show.
type Chain struct {
	levels []*Source
}

// BuildChain creates a mipmap chain from src. The source becomes level 0
// and is not copied. Returns nil for a nil source.
func BuildChain(src *Source) *Chain {
	if src == nil || src.width == 0 || src.height == 0 {
		return nil
	}

	maxDim := max(src.width, src.height)
	numLevels := 1 + int(math.Floor(math.Log2(float64(maxDim))))

	c := &Chain{levels: make([]*Source, numLevels)}
	c.levels[0] = src

	for i := 1; i < numLevels; i++ {
		c.levels[i] = downsample(c.levels[i-1])
	}
	return c
}

// downsample produces a half-size raster using the x/image bilinear kernel.
func downsample(src *Source) *Source {
	dstW := max(1, src.width/2)
	dstH := max(1, src.height/2)

	dst := &Source{
		width:  dstW,
		height: dstH,
		pix:    make([]byte, dstW*dstH),
	}
	xdraw.BiLinear.Scale(dst.gray(), image.Rect(0, 0, dstW, dstH), src.gray(), src.gray().Rect, xdraw.Src, nil)
	return dst
}

// NumLevels returns the number of levels, or 0 for a nil chain.
func (c *Chain) NumLevels() int {
	if c == nil {
		return 0
	}
	return len(c.levels)
}

// Level returns the raster at level n, or nil when out of range.
func (c *Chain) Level(n int) *Source {
	if c == nil || n < 0 || n >= len(c.levels) {
		return nil
	}
	return c.levels[n]
}

// ForScale returns the level for a display/native size ratio: 1.0 selects
// the original, 0.5 level 1, 0.25 level 2, and so on. The result is clamped
// to the available levels.
func (c *Chain) ForScale(scale float64) *Source {
	if c == nil || len(c.levels) == 0 {
		return nil
	}
	if scale >= 1.0 {
		return c.levels[0]
	}
	if scale <= 0 {
		return c.levels[len(c.levels)-1]
	}

	level := int(math.Floor(-math.Log2(scale)))
	if level < 0 {
		level = 0
	}
	if level >= len(c.levels) {
		level = len(c.levels) - 1
	}
	return c.levels[level]
}
