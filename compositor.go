package paint

import (
	"image"
	"sync"

	"github.com/gogpu/paint/internal/blend"
	"github.com/gogpu/paint/internal/parallel"
)

// LayerCompositor flattens a layer stack into a single pixel buffer.
//
// Compositing walks the stack bottom to top: each visible layer blends onto
// the accumulated backdrop through its mode's formula, scaled by its opacity.
// A clipping-mask layer is additionally bounded by the alpha of the layer
// immediately below it. Groups composite their children into a scratch buffer
// against a transparent backdrop, then blend that result as a single virtual
// layer, so a group's mode and opacity apply to the merged content rather
// than to each child.
//
// All buffers hold straight RGBA; premultiplication happens inside the blend
// batch and never leaks out.
type LayerCompositor struct {
	width, height int

	// Background is the backdrop the bottom layer blends against,
	// transparent unless set. An opaque background participates in
	// blending like any backdrop: a bottom Multiply layer multiplies
	// against it.
	Background RGBA

	pool    *parallel.WorkerPool
	scratch sync.Pool

	// During a live stroke the canvas substitutes a preview buffer for the
	// active layer without touching the layer itself. The override also
	// feeds clip lookups so a layer clipped to the active one previews
	// correctly.
	override    *Layer
	overrideBuf *Pixmap
}

// NewLayerCompositor creates a compositor for a canvas of the given size.
func NewLayerCompositor(width, height int) *LayerCompositor {
	c := &LayerCompositor{width: width, height: height}
	c.scratch.New = func() any { return NewPixmap(width, height) }
	return c
}

// SetWorkerPool attaches a worker pool used to composite tiles concurrently.
// Pass nil to composite serially.
func (c *LayerCompositor) SetWorkerPool(p *parallel.WorkerPool) { c.pool = p }

// Composite renders the layer stack bottom-to-top into dst, which must match
// the compositor's dimensions. With a worker pool attached the canvas is cut
// into tiles composited concurrently; tiles are disjoint, so the result is
// byte-identical to the serial path.
func (c *LayerCompositor) Composite(dst *Pixmap, layers []*Layer) error {
	if dst.Width() != c.width || dst.Height() != c.height {
		return ErrLayerBoundsMismatch
	}
	full := image.Rect(0, 0, c.width, c.height)
	if c.pool == nil {
		c.compositeRegion(dst, layers, full)
		return nil
	}

	tilesX, tilesY := parallel.GridSize(c.width, c.height)
	work := make([]func(), 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x, y, w, h := parallel.TileBounds(tx, ty, c.width, c.height)
			r := image.Rect(x, y, x+w, y+h)
			work = append(work, func() {
				c.compositeRegion(dst, layers, r)
			})
		}
	}
	c.pool.ExecuteAll(work)
	return nil
}

// CompositeRegion recomposites only the given region of dst. Pixels outside
// the region keep their previous contents.
func (c *LayerCompositor) CompositeRegion(dst *Pixmap, layers []*Layer, region image.Rectangle) error {
	if dst.Width() != c.width || dst.Height() != c.height {
		return ErrLayerBoundsMismatch
	}
	region = region.Intersect(image.Rect(0, 0, c.width, c.height))
	if region.Empty() {
		return nil
	}
	c.compositeRegion(dst, layers, region)
	return nil
}

// MergeStroke merges a stroke buffer's region into the layer under the given
// blend mode. With alphaLock the merge touches only pixels that already carry
// alpha and never changes the alpha channel. Clipping masks play no part in a
// merge; they act at composite time.
func (c *LayerCompositor) MergeStroke(layer *Layer, buf *Pixmap, region image.Rectangle, mode BlendMode, alphaLock bool) error {
	if layer.IsGroup() {
		return ErrLayerIsGroup
	}
	dst := layer.buf
	if dst.Width() != buf.Width() || dst.Height() != buf.Height() {
		return ErrLayerBoundsMismatch
	}
	region = region.Intersect(image.Rect(0, 0, dst.Width(), dst.Height()))
	if region.Empty() {
		return nil
	}
	c.mergeBuffer(dst, buf, region, mode, alphaLock)
	return nil
}

// mergeBuffer is the merge core shared by MergeStroke and the live stroke
// preview. The region must already be clipped to the buffers.
func (c *LayerCompositor) mergeBuffer(dst, src *Pixmap, region image.Rectangle, mode BlendMode, alphaLock bool) {
	fn := resolveBlend(mode)
	w4 := region.Dx() * 4
	for y := region.Min.Y; y < region.Max.Y; y++ {
		off := dst.PixOffset(region.Min.X, y)
		d := dst.Data()[off : off+w4]
		s := src.Data()[off : off+w4]
		switch {
		case alphaLock:
			blend.BlendBatchLocked(d, s, fn, 255)
		case mode == BlendNormal:
			blend.SourceOverBatch(d, s)
		default:
			blend.BlendBatch(d, s, fn, 255, nil)
		}
	}
}

func (c *LayerCompositor) compositeRegion(dst *Pixmap, layers []*Layer, r image.Rectangle) {
	c.fillRegion(dst, r, c.Background)
	c.compositeStack(dst, layers, r)
}

// compositeStack folds one sibling list onto dst over the region. prev walks
// one step behind the loop so a clipping layer can reach the buffer of the
// layer below it; when that layer was a group, its scratch composite is kept
// alive exactly one extra iteration.
func (c *LayerCompositor) compositeStack(dst *Pixmap, layers []*Layer, r image.Rectangle) {
	var prev *Layer
	var prevGroup *Pixmap

	for _, l := range layers {
		var group *Pixmap

		if l.Visible && l.Opacity > 0 {
			src := c.srcFor(l)
			if l.IsGroup() {
				group = c.scratch.Get().(*Pixmap)
				c.clearRegion(group, r)
				c.compositeStack(group, l.children, r)
				src = group
			}

			clipSrc, clipped := c.clipSource(l, prev, prevGroup)
			if !clipped {
				fn := resolveBlend(l.Mode)
				c.blendLayerRegion(dst, src, r, fn, opacityByte(l.Opacity), clipSrc)
			}
		}

		if prevGroup != nil {
			c.scratch.Put(prevGroup)
		}
		prev, prevGroup = l, group
	}
	if prevGroup != nil {
		c.scratch.Put(prevGroup)
	}
}

// clipSource resolves the alpha source for a clipping-mask layer. clipped
// reports that the layer contributes nothing: it sits at the bottom of its
// sibling list, or its base is hidden. A nil clipSrc with clipped false means
// the layer is not a clipping mask at all.
func (c *LayerCompositor) clipSource(l, prev *Layer, prevGroup *Pixmap) (clipSrc *Pixmap, clipped bool) {
	if !l.ClippingMask {
		return nil, false
	}
	switch {
	case prev == nil || !prev.Visible:
		return nil, true
	case prev.IsGroup():
		if prevGroup == nil {
			return nil, true
		}
		return prevGroup, false
	default:
		return c.srcFor(prev), false
	}
}

func (c *LayerCompositor) srcFor(l *Layer) *Pixmap {
	if l == c.override {
		return c.overrideBuf
	}
	return l.buf
}

// blendLayerRegion applies one layer to dst row by row. The clip row is
// rebuilt per row from the clip source's alpha channel.
func (c *LayerCompositor) blendLayerRegion(dst, src *Pixmap, r image.Rectangle, fn blend.Func, opacity byte, clipSrc *Pixmap) {
	w := r.Dx()
	w4 := w * 4
	var clipRow []byte
	if clipSrc != nil {
		clipRow = make([]byte, w)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		if clipSrc != nil {
			cd := clipSrc.Data()
			for i := 0; i < w; i++ {
				clipRow[i] = cd[off+i*4+3]
			}
		}
		blend.BlendBatch(dst.Data()[off:off+w4], src.Data()[off:off+w4], fn, opacity, clipRow)
	}
}

func (c *LayerCompositor) clearRegion(dst *Pixmap, r image.Rectangle) {
	w4 := r.Dx() * 4
	data := dst.Data()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		clear(data[off : off+w4])
	}
}

func (c *LayerCompositor) fillRegion(dst *Pixmap, r image.Rectangle, bg RGBA) {
	if bg.A <= 0 {
		c.clearRegion(dst, r)
		return
	}
	px := bg.NRGBA()
	data := dst.Data()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		for x := 0; x < r.Dx(); x++ {
			i := off + x*4
			data[i] = px.R
			data[i+1] = px.G
			data[i+2] = px.B
			data[i+3] = px.A
		}
	}
}

// warnedModes records unknown blend mode values already reported, so a stack
// full of bad layers logs once per value, not once per composite.
var warnedModes sync.Map

// resolveBlend fails closed: unknown modes composite as Normal and are
// reported through the package logger once per value.
func resolveBlend(mode BlendMode) blend.Func {
	fn, ok := blend.ForMode(mode)
	if !ok {
		if _, seen := warnedModes.LoadOrStore(mode, struct{}{}); !seen {
			Logger().Warn("unknown blend mode, compositing as Normal", "mode", uint8(mode))
		}
	}
	return fn
}

func opacityByte(v float64) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
