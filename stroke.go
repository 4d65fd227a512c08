package paint

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/paint/internal/blend"
	"github.com/gogpu/paint/internal/parallel"
)

// Stroke captures the frozen inputs of one gesture: the brush snapshot
// taken at stroke start, the committed color, and the raw points in
// arrival order. A Stroke never outlives its gesture.
type Stroke struct {
	Brush  Brush
	Color  RGBA
	Points []StrokePoint
}

// StrokeRasterizer drives the stamp pipeline for one gesture. It owns
// the per-stroke state the pipeline components share: cumulative path
// distance (which scrolls moving grain), the stroke-locked color
// jitter, and the stroke-local pixel buffer stamps accumulate into.
//
// Incoming points must be fed in arrival order: grain scroll and
// stroke-locked color are path-dependent, so reordering corrupts the
// result. Per-stamp pixel work may run on a worker pool, but stamps
// are applied to the stroke buffer in emission order regardless.
//
// The canvas passed at construction is the active layer's buffer. The
// rasterizer only ever reads it (wet mixing); the layer itself is not
// touched until the finished stroke buffer merges.
type StrokeRasterizer struct {
	stroke Stroke
	canvas *Pixmap
	buf    *Pixmap

	stab   *StrokeStabilizer
	dyn    *StampDynamicsEngine
	colors *ColorDynamicsEngine
	shape  *StampShapeRenderer
	over   blend.Func

	pool    *parallel.WorkerPool
	seq     *parallel.Sequencer
	scratch *stampBufferPool

	lastPoint StrokePoint
	lastDir   Point
	hasLast   bool
	sinceLast float64
	distance  float64
	threshold float64
	dirty     image.Rectangle
	stamps    []Stamp
	wetmix    bool
	done      bool
}

// NewStrokeRasterizer begins rasterizing one stroke onto a canvas-sized
// buffer. The brush is normalized and snapshotted; later edits to the
// caller's copy have no effect. seed makes scatter, jitter, and color
// dynamics reproducible. pool may be nil, in which case stamps render
// inline on the calling goroutine.
func NewStrokeRasterizer(brush Brush, color RGBA, canvas *Pixmap, seed int64, pool *parallel.WorkerPool) *StrokeRasterizer {
	brush = brush.Normalize()

	// Wet stamps read back what earlier stamps painted, so wet strokes
	// render inline regardless of the pool.
	if brush.WetMix.Active() {
		pool = nil
	}

	r := &StrokeRasterizer{
		stroke: Stroke{Brush: brush, Color: color},
		canvas: canvas,
		buf:    NewPixmap(canvas.Width(), canvas.Height()),
		stab:   NewStrokeStabilizer(brush.Streamline),
		dyn:    NewStampDynamicsEngine(brush, seed),
		colors: NewColorDynamicsEngine(brush.Dynamics, seed+1),
		shape:  NewStampShapeRenderer(brush),
		pool:   pool,
	}
	r.over, _ = blend.ForMode(blend.ModeNormal)
	r.threshold = math.Max(brush.Spacing*brush.Size, 0.1)
	r.wetmix = brush.WetMix.Active()
	if pool != nil {
		r.seq = parallel.NewSequencer()
	}

	// Scratch buffers sized for the largest stamp this brush can emit:
	// full pressure, full tilt, full bleed, rotated mask corners.
	maxSize := brush.Size * (1 + brush.TiltSensitivity) * (1 + 0.5*brush.Bleed)
	side := int(math.Ceil(maxSize*math.Sqrt2)) + 4
	r.scratch = newStampBufferPool(side, side)
	return r
}

// Begin feeds the gesture's first point and emits the first stamp
// immediately, so a tap with no movement still paints exactly once.
func (r *StrokeRasterizer) Begin(p StrokePoint) {
	if r.done {
		return
	}
	r.stab.Reset()
	r.colors.Reset()
	r.stroke.Points = append(r.stroke.Points[:0], p)

	sm := r.stab.Smooth(p)
	r.lastPoint = sm
	r.lastDir = Point{}
	r.hasLast = true
	r.sinceLast = 0
	r.distance = 0
	r.emit(sm)
}

// Extend feeds the next point. Stamps are placed along the smoothed
// polyline whenever the accumulated distance reaches the brush's
// spacing threshold, with pressure and tilt interpolated between the
// two samples bracketing each stamp.
func (r *StrokeRasterizer) Extend(p StrokePoint) {
	if r.done {
		return
	}
	if !r.hasLast {
		r.Begin(p)
		return
	}
	r.stroke.Points = append(r.stroke.Points, p)

	sm := r.stab.Smooth(p)
	from := r.lastPoint
	segLen := from.Pos.Distance(sm.Pos)
	if segLen == 0 {
		r.lastPoint = sm
		return
	}
	r.lastDir = sm.Pos.Sub(from.Pos).Div(segLen)

	travelled := 0.0
	for {
		need := r.threshold - r.sinceLast
		avail := segLen - travelled
		if avail < need {
			r.sinceLast += avail
			r.distance += avail
			break
		}
		travelled += need
		r.distance += need
		r.sinceLast = 0
		r.emit(lerpStrokePoint(from, sm, travelled/segLen))
	}
	r.lastPoint = sm
}

// Finish waits for outstanding stamp jobs and returns the completed
// stroke buffer with the rectangle it painted. The caller merges the
// buffer into the layer; the rasterizer must not be reused afterwards.
func (r *StrokeRasterizer) Finish() (*Pixmap, image.Rectangle) {
	r.wait()
	r.done = true
	return r.buf, r.dirty
}

// Cancel waits for outstanding stamp jobs and discards the stroke
// buffer. The layer is untouched; nothing of the gesture survives.
func (r *StrokeRasterizer) Cancel() {
	r.wait()
	r.done = true
	r.buf = nil
}

// Buffer returns the stroke buffer accumulated so far. During an
// active stroke with a worker pool, call Wait first if a consistent
// snapshot is needed.
func (r *StrokeRasterizer) Buffer() *Pixmap {
	return r.buf
}

// DirtyRect returns the canvas rectangle painted so far.
func (r *StrokeRasterizer) DirtyRect() image.Rectangle {
	return r.dirty
}

// Distance returns the cumulative smoothed path length so far.
func (r *StrokeRasterizer) Distance() float64 {
	return r.distance
}

// Stroke returns the gesture recorded so far. The brush is the frozen
// snapshot in effect for this stroke.
func (r *StrokeRasterizer) Stroke() Stroke {
	return r.stroke
}

// Wait blocks until all submitted stamp jobs have been applied.
func (r *StrokeRasterizer) Wait() {
	r.wait()
}

func (r *StrokeRasterizer) wait() {
	if r.seq != nil {
		r.seq.Wait()
	}
}

// emit renders and composites all stamps for one placed point.
func (r *StrokeRasterizer) emit(sp StrokePoint) {
	b := &r.stroke.Brush

	taper := 1.0
	if b.Taper.Length > 0 {
		taper = math.Min(1, r.distance/(b.Taper.Length*b.Size))
	}

	r.stamps = r.dyn.StampsFor(r.stamps[:0], sp, r.lastDir, taper)
	shaped := b.PressureCurve.Evaluate(sp.Pressure)
	factor := r.modeFactor()

	fade := 1.0
	if b.Falloff > 0 {
		fade = math.Max(0, 1-b.Falloff*r.distance/(10*b.Size))
	}

	for _, st := range r.stamps {
		if st.Size <= 0 {
			continue
		}

		c := r.colors.Apply(r.stroke.Color, shaped)
		wet := 1.0
		if r.wetmix {
			c, wet = r.shape.WetMix(c, r.wetSample(st.Pos), r.distance)
		}

		alpha := st.Opacity * b.Flow * factor * fade * wet
		opacity := uint8(clamp255(alpha * 255))
		if opacity == 0 {
			continue
		}

		rect := r.shape.Footprint(st)
		clip := rect.Intersect(r.buf.Bounds())
		if clip.Empty() {
			continue
		}
		r.dirty = r.dirty.Union(clip)

		buf := r.scratch.Get()
		dist := r.distance

		if r.pool == nil {
			r.shape.Render(buf, st, c, dist, rect)
			r.compositeStamp(buf, rect, clip, opacity)
			r.scratch.Put(buf)
			continue
		}

		ticket := r.seq.Ticket()
		r.pool.Submit(func() {
			r.shape.Render(buf, st, c, dist, rect)
			r.seq.Done(ticket, func() {
				r.compositeStamp(buf, rect, clip, opacity)
				r.scratch.Put(buf)
			})
		})
	}
}

// wetSample resolves the color a stamp will land on: the frozen layer
// with the stroke painted so far over it. Wet strokes run inline, so
// the stroke buffer is current when this reads it.
func (r *StrokeRasterizer) wetSample(pos Point) RGBA {
	x, y := int(pos.X), int(pos.Y)
	under := r.canvas.GetPixel(x, y)
	over := r.buf.GetPixel(x, y)

	switch {
	case over.A <= 0:
		return under
	case over.A >= 1 || under.A <= 0:
		return over
	}

	outA := over.A + under.A*(1-over.A)
	inv := under.A * (1 - over.A)
	return RGBA{
		R: (over.R*over.A + under.R*inv) / outA,
		G: (over.G*over.A + under.G*inv) / outA,
		B: (over.B*over.A + under.B*inv) / outA,
		A: outA,
	}
}

// modeFactor is the rendering mode's opacity rule: how stamp strength
// relates to accumulated stroke distance.
func (r *StrokeRasterizer) modeFactor() float64 {
	b := &r.stroke.Brush
	switch b.Rendering {
	case RenderLight:
		return 0.5
	case RenderGlazed:
		return 0.25 + 0.75*math.Min(1, r.distance/(10*b.Size))
	case RenderHeavyGlaze:
		return 0.5 + 0.5*math.Min(1, r.distance/(10*b.Size))
	case RenderIntense:
		return 1.25
	default:
		return 1
	}
}

// compositeStamp source-overs a rendered stamp into the stroke buffer
// at the given opacity. rect is the stamp's footprint, clip its
// intersection with the canvas.
func (r *StrokeRasterizer) compositeStamp(src *Pixmap, rect, clip image.Rectangle, opacity uint8) {
	n := clip.Dx() * 4
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sOff := ((y-rect.Min.Y)*src.Width() + (clip.Min.X - rect.Min.X)) * 4
		dOff := r.buf.PixOffset(clip.Min.X, y)
		blend.BlendBatch(r.buf.Data()[dOff:dOff+n], src.Data()[sOff:sOff+n], r.over, opacity, nil)
	}
}

// lerpStrokePoint interpolates every continuous field between two
// samples. Azimuth interpolates naively; stamp placement between two
// real samples never spans more than a few degrees of lean.
func lerpStrokePoint(a, b StrokePoint, t float64) StrokePoint {
	return StrokePoint{
		Pos:      a.Pos.Lerp(b.Pos, t),
		Pressure: a.Pressure + (b.Pressure-a.Pressure)*t,
		Tilt:     a.Tilt + (b.Tilt-a.Tilt)*t,
		Azimuth:  a.Azimuth + (b.Azimuth-a.Azimuth)*t,
		Time:     a.Time + int64(float64(b.Time-a.Time)*t),
	}
}

// stampBufferPool recycles stamp scratch pixmaps. All buffers share
// one size, the largest footprint the brush can produce.
type stampBufferPool struct {
	pool sync.Pool
}

func newStampBufferPool(w, h int) *stampBufferPool {
	return &stampBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewPixmap(w, h)
			},
		},
	}
}

// Get retrieves a scratch pixmap. Contents are stale; the renderer
// overwrites the full footprint it uses.
func (p *stampBufferPool) Get() *Pixmap {
	return p.pool.Get().(*Pixmap)
}

// Put returns a scratch pixmap for reuse.
func (p *stampBufferPool) Put(pm *Pixmap) {
	if pm != nil {
		p.pool.Put(pm)
	}
}
