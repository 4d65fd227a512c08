// Package texture provides single-channel intensity rasters for brush
// machinery: grain papers and custom stamp shapes.
//
// A Source stores one byte per texel (0 = transparent/none, 255 = full
// intensity). Sampling is bilinear over normalized coordinates with either
// clamp-to-edge addressing (stamp shapes) or wrap addressing (grain papers,
// which tile as the stroke scrolls across them).
package texture

import (
	"errors"
	"image"
	"math"
)

// Common errors for texture operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("texture: invalid dimensions")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("texture: data buffer too small")

	// ErrEmptyImage is returned when converting a nil or zero-size image.
	ErrEmptyImage = errors.New("texture: empty image")
)

// AddressMode selects how sampling treats coordinates outside [0, 1).
type AddressMode uint8

const (
	// AddressClamp clamps to the edge texel. Used for stamp shape masks,
	// where the mask must not bleed past its borders.
	AddressClamp AddressMode = iota

	// AddressWrap tiles the texture. Used for grain papers, which repeat
	// under a scrolling stroke.
	AddressWrap
)

// Source is an immutable single-channel intensity raster.
type Source struct {
	width  int
	height int
	pix    []byte // width*height bytes, row-major
}

// NewSource creates a zeroed intensity raster.
func NewSource(width, height int) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Source{
		width:  width,
		height: height,
		pix:    make([]byte, width*height),
	}, nil
}

// FromBytes wraps an existing intensity buffer without copying.
// The buffer must hold at least width*height bytes.
func FromBytes(width, height int, pix []byte) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) < width*height {
		return nil, ErrDataTooSmall
	}
	return &Source{width: width, height: height, pix: pix[:width*height]}, nil
}

// FromImage converts an image to an intensity raster by luminance.
// White regions of a shape image become full intensity; premultiplied
// transparency already reads as black, so alpha needs no separate pass.
func FromImage(img image.Image) (*Source, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	s := &Source{width: w, height: h, pix: make([]byte, w*h)}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			copy(s.pix[y*w:(y+1)*w], src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X):])
		}
	default:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				// 77/151/28 out of 256 approximates the BT.601 weights.
				s.pix[i] = byte((77*(r>>8) + 151*(g>>8) + 28*(bl>>8)) >> 8)
				i++
			}
		}
	}
	return s, nil
}

// Width returns the raster width in texels.
func (s *Source) Width() int { return s.width }

// Height returns the raster height in texels.
func (s *Source) Height() int { return s.height }

// Pix returns the backing intensity buffer.
func (s *Source) Pix() []byte { return s.pix }

// At returns the texel at (x, y), or 0 outside the raster.
func (s *Source) At(x, y int) byte {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0
	}
	return s.pix[y*s.width+x]
}

// at reads a texel after address resolution; indices are known in range.
func (s *Source) at(x, y int) byte {
	return s.pix[y*s.width+x]
}

// Sample performs bilinear sampling at normalized coordinates (u, v).
// (0,0) is the top-left texel edge, (1,1) the bottom-right. Coordinates
// outside the unit square resolve per mode.
func (s *Source) Sample(u, v float64, mode AddressMode) byte {
	fx := u*float64(s.width) - 0.5
	fy := v*float64(s.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	var v00, v10, v01, v11 byte
	switch mode {
	case AddressWrap:
		x0w := wrapIndex(x0, s.width)
		x1w := wrapIndex(x0+1, s.width)
		y0w := wrapIndex(y0, s.height)
		y1w := wrapIndex(y0+1, s.height)
		v00 = s.at(x0w, y0w)
		v10 = s.at(x1w, y0w)
		v01 = s.at(x0w, y1w)
		v11 = s.at(x1w, y1w)
	default:
		x0c := clampIndex(x0, s.width)
		x1c := clampIndex(x0+1, s.width)
		y0c := clampIndex(y0, s.height)
		y1c := clampIndex(y0+1, s.height)
		v00 = s.at(x0c, y0c)
		v10 = s.at(x1c, y0c)
		v01 = s.at(x0c, y1c)
		v11 = s.at(x1c, y1c)
	}

	top := lerp(float64(v00), float64(v10), tx)
	bot := lerp(float64(v01), float64(v11), tx)
	return byte(lerp(top, bot, ty) + 0.5)
}

// SampleNearest returns the closest texel at normalized coordinates (u, v).
func (s *Source) SampleNearest(u, v float64, mode AddressMode) byte {
	x := int(math.Floor(u * float64(s.width)))
	y := int(math.Floor(v * float64(s.height)))
	if mode == AddressWrap {
		return s.at(wrapIndex(x, s.width), wrapIndex(y, s.height))
	}
	return s.at(clampIndex(x, s.width), clampIndex(y, s.height))
}

// gray exposes the raster as an image.Gray sharing the same pixels.
func (s *Source) gray() *image.Gray {
	return &image.Gray{
		Pix:    s.pix,
		Stride: s.width,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
