package paint

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap represents a rectangular pixel buffer.
// Pixels are stored as straight (non-premultiplied) RGBA, 4 bytes per
// pixel in row-major order. Layer contents and stroke buffers both use
// this layout, so blending can walk raw bytes without conversion.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (straight RGBA format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Pixmap) PixOffset(x, y int) int {
	return (y*p.width + x) * 4
}

// SetPixel sets the color of a single pixel.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := p.PixOffset(x, y)
	p.data[i+0] = uint8(clamp255(c.R * 255))
	p.data[i+1] = uint8(clamp255(c.G * 255))
	p.data[i+2] = uint8(clamp255(c.B * 255))
	p.data[i+3] = uint8(clamp255(c.A * 255))
}

// GetPixel returns the color of a single pixel.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := p.PixOffset(x, y)
	return RGBA{
		R: float64(p.data[i+0]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	r := uint8(clamp255(c.R * 255))
	g := uint8(clamp255(c.G * 255))
	b := uint8(clamp255(c.B * 255))
	a := uint8(clamp255(c.A * 255))

	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	out := NewPixmap(p.width, p.height)
	copy(out.data, p.data)
	return out
}

// CopyFrom overwrites this pixmap's pixels with those of src.
// The two pixmaps must have identical dimensions.
func (p *Pixmap) CopyFrom(src *Pixmap) {
	if src == nil || src.width != p.width || src.height != p.height {
		return
	}
	copy(p.data, src.data)
}

// CopyRect copies the pixels inside r into a tightly packed RGBA slice.
// The rectangle is clipped to the pixmap bounds first; an empty
// intersection returns nil.
func (p *Pixmap) CopyRect(r image.Rectangle) []uint8 {
	r = r.Intersect(p.Bounds())
	if r.Empty() {
		return nil
	}
	w := r.Dx()
	out := make([]uint8, w*r.Dy()*4)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := p.data[p.PixOffset(r.Min.X, y) : p.PixOffset(r.Min.X, y)+w*4]
		copy(out[(y-r.Min.Y)*w*4:], src)
	}
	return out
}

// PasteRect writes a tightly packed RGBA slice produced by CopyRect back
// into the pixels inside r. Slices shorter than the rectangle are ignored.
func (p *Pixmap) PasteRect(r image.Rectangle, pix []uint8) {
	r = r.Intersect(p.Bounds())
	if r.Empty() {
		return
	}
	w := r.Dx()
	if len(pix) < w*r.Dy()*4 {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst := p.data[p.PixOffset(r.Min.X, y) : p.PixOffset(r.Min.X, y)+w*4]
		copy(dst, pix[(y-r.Min.Y)*w*4:])
	}
}

// ToImage converts the pixmap to an image.NRGBA sharing no memory with it.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(pm.data[y*width*4:(y+1)*width*4], row[:width*4])
		}
		return pm
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			pm.SetPixel(x, y, FromColor(c))
		}
	}

	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	img := p.ToImage()
	return png.Encode(f, img)
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).NRGBA()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
