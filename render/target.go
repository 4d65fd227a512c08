// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Errors returned by targets and the canvas presentation path.
var (
	// ErrSizeMismatch is returned when a target's dimensions do not match
	// the canvas being presented into it.
	ErrSizeMismatch = errors.New("render: target size mismatch")

	// ErrUnsupportedFormat is returned for targets whose pixel format the
	// CPU presentation path cannot write. Supported formats are
	// RGBA8Unorm and BGRA8Unorm.
	ErrUnsupportedFormat = errors.New("render: unsupported target format")

	// ErrNoPixels is returned when a target reports no CPU-accessible
	// pixel buffer.
	ErrNoPixels = errors.New("render: target has no pixel buffer")
)

// Target is a CPU-visible destination for composited output.
//
// Pixels returns the backing buffer; rows start every Stride bytes. A
// stride larger than Width*4 is legal and common for mapped window
// surfaces, which pad rows to the GPU's alignment.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to the pixel data.
	// Each pixel is 4 bytes in the order the Format dictates.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// ValidateSize checks that a target matches the given dimensions and
// exposes a pixel buffer large enough to hold them.
func ValidateSize(t Target, width, height int) error {
	if t.Width() != width || t.Height() != height {
		return fmt.Errorf("%w: target %dx%d, want %dx%d",
			ErrSizeMismatch, t.Width(), t.Height(), width, height)
	}
	pix, stride := t.Pixels(), t.Stride()
	if pix == nil {
		return ErrNoPixels
	}
	if stride < width*4 {
		return fmt.Errorf("%w: stride %d below row size %d", ErrSizeMismatch, stride, width*4)
	}
	if need := stride*(height-1) + width*4; len(pix) < need {
		return fmt.Errorf("%w: buffer %d bytes, need %d", ErrSizeMismatch, len(pix), need)
	}
	return nil
}

// PixmapTarget is a CPU-backed target that owns its pixels.
//
// It stores straight (unpremultiplied) RGBA, which is what the canvas
// writes and what image encoders expect:
//
//	target := render.NewPixmapTarget(800, 600)
//	if err := canvas.CompositeTo(target); err != nil { ... }
//	png.Encode(f, target.Image())
type PixmapTarget struct {
	img *image.NRGBA
}

// NewPixmapTarget creates a CPU-backed target of the given size.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing image as a target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.NRGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns RGBA8Unorm.
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns the backing pixel data.
func (t *PixmapTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int { return t.img.Stride }

// Image returns the underlying image.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.NRGBA { return t.img }

var _ Target = (*PixmapTarget)(nil)

// SurfaceTarget wraps a pixel buffer owned by the host application, such
// as a mapped window surface or a shared-memory framebuffer. The paint
// engine writes into the buffer in place; the host stays responsible for
// the buffer's lifetime and for presenting it.
type SurfaceTarget struct {
	width  int
	height int
	format gputypes.TextureFormat
	pix    []byte
	stride int
}

// NewSurfaceTarget wraps an externally owned buffer as a target.
//
// The format must be RGBA8Unorm or BGRA8Unorm and the buffer must cover
// stride*(height-1) + width*4 bytes.
func NewSurfaceTarget(width, height int, format gputypes.TextureFormat, pix []byte, stride int) (*SurfaceTarget, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("render: invalid surface size %dx%d", width, height)
	}
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if stride < width*4 {
		return nil, fmt.Errorf("render: stride %d below row size %d", stride, width*4)
	}
	if need := stride*(height-1) + width*4; len(pix) < need {
		return nil, fmt.Errorf("render: buffer %d bytes, need %d", len(pix), need)
	}
	return &SurfaceTarget{
		width:  width,
		height: height,
		format: format,
		pix:    pix,
		stride: stride,
	}, nil
}

// Width returns the surface width in pixels.
func (t *SurfaceTarget) Width() int { return t.width }

// Height returns the surface height in pixels.
func (t *SurfaceTarget) Height() int { return t.height }

// Format returns the surface pixel format.
func (t *SurfaceTarget) Format() gputypes.TextureFormat { return t.format }

// Pixels returns the wrapped host buffer.
func (t *SurfaceTarget) Pixels() []byte { return t.pix }

// Stride returns the number of bytes per row.
func (t *SurfaceTarget) Stride() int { return t.stride }

var _ Target = (*SurfaceTarget)(nil)
