package paint

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"

	"github.com/gogpu/paint/internal/parallel"
	"github.com/gogpu/paint/render"
)

// strokeState tracks the gesture lifecycle. Committing exists only for the
// duration of EndStroke so re-entrant calls from callbacks fail cleanly.
type strokeState uint8

const (
	strokeIdle strokeState = iota
	strokeActive
	strokeCommitting
)

// errHistoryDesync reports an undo entry that no longer matches the layer
// stack. It indicates a bug, not a user mistake.
var errHistoryDesync = errors.New("paint: history out of sync with layer stack")

// Canvas is the document: a stack of layers, the undo history, and the
// machinery that turns pen gestures into committed paint.
//
// Layers stack bottom first; index len-1 is the topmost. Strokes land on the
// active layer. All edits made through Canvas methods are undoable; writing
// Layer fields directly works but leaves no history.
//
// A Canvas is not safe for concurrent use. Drive it from one goroutine (the
// input loop) and let it parallelize stamp rendering and tile compositing
// internally through its worker pool.
type Canvas struct {
	width, height int

	layers []*Layer
	active uuid.UUID

	comp *LayerCompositor
	pool *parallel.WorkerPool
	hist *history

	composite *Pixmap
	dirty     *parallel.DirtyRegion

	software bool
	rng      *rand.Rand
	layerSeq int
	groupSeq int

	state        strokeState
	stroke       *StrokeRasterizer
	strokeLayer  *Layer
	preview      *Pixmap
	previewValid bool
}

// NewCanvas creates a canvas of the given size with one transparent paint
// layer selected as the active layer.
func NewCanvas(width, height int, opts ...CanvasOption) *Canvas {
	o := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Canvas{
		width:     width,
		height:    height,
		comp:      NewLayerCompositor(width, height),
		hist:      newHistory(o.undoLimit),
		composite: NewPixmap(width, height),
		software:  o.software,
	}
	c.comp.Background = o.background

	workers := o.workers
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > 0 {
		c.pool = parallel.NewWorkerPool(workers)
		c.comp.SetWorkerPool(c.pool)
	}

	tx, ty := parallel.GridSize(width, height)
	c.dirty = parallel.NewDirtyRegion(tx, ty)
	c.dirty.MarkAll()

	seed := o.seed
	if !o.seedSet {
		seed = time.Now().UnixNano()
	}
	c.rng = rand.New(rand.NewSource(seed))

	base := NewLayer(width, height)
	c.layerSeq++
	base.Name = fmt.Sprintf("Layer %d", c.layerSeq)
	c.layers = []*Layer{base}
	c.active = base.id
	return c
}

// Close shuts down the worker pool. The canvas must not be used afterwards.
func (c *Canvas) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Layers returns the root layer stack, bottom first. The slice is the live
// stack; treat it as read-only.
func (c *Canvas) Layers() []*Layer { return c.layers }

// ActiveLayer returns the layer strokes land on.
func (c *Canvas) ActiveLayer() *Layer {
	l, _, _, ok := c.find(c.active)
	if !ok {
		return nil
	}
	return l
}

// ActiveLayerID returns the active layer's id.
func (c *Canvas) ActiveLayerID() uuid.UUID { return c.active }

// Layer resolves a layer id anywhere in the stack, including inside groups.
func (c *Canvas) Layer(id uuid.UUID) (*Layer, error) {
	l, _, _, ok := c.find(id)
	if !ok {
		return nil, ErrUnknownLayer
	}
	return l, nil
}

// Background returns the paper color the bottom layer blends against.
func (c *Canvas) Background() RGBA { return c.comp.Background }

// SetBackground changes the paper color. Not undoable: the background is
// canvas state, not layer content.
func (c *Canvas) SetBackground(bg RGBA) {
	c.comp.Background = bg
	c.markAll()
}

// BeginStroke starts a gesture on the active layer with the given brush and
// color, emitting the first stamp immediately. The brush is snapshotted;
// edits to the caller's copy affect the next stroke, not this one. Hidden
// layers accept strokes; locked layers and groups do not.
func (c *Canvas) BeginStroke(brush Brush, color RGBA, p StrokePoint) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, _, _, ok := c.find(c.active)
	if !ok {
		return ErrUnknownLayer
	}
	if l.IsGroup() {
		return ErrLayerIsGroup
	}
	if l.Locked {
		return ErrLayerLocked
	}

	c.stroke = NewStrokeRasterizer(brush, color, l.buf, c.rng.Int63(), c.pool)
	c.strokeLayer = l
	c.previewValid = false
	c.state = strokeActive
	c.stroke.Begin(p)
	return nil
}

// ExtendStroke feeds the next gesture point. Points must arrive in order.
func (c *Canvas) ExtendStroke(p StrokePoint) error {
	if c.state != strokeActive {
		return ErrNoStroke
	}
	c.stroke.Extend(p)
	return nil
}

// EndStroke completes the gesture: the stroke buffer merges into the active
// layer under the brush's blend mode as one undoable edit. A gesture that
// never painted commits nothing and leaves the history untouched.
func (c *Canvas) EndStroke() error {
	if c.state != strokeActive {
		return ErrNoStroke
	}
	c.state = strokeCommitting
	defer func() {
		c.stroke = nil
		c.strokeLayer = nil
		c.comp.override = nil
		c.comp.overrideBuf = nil
		c.state = strokeIdle
	}()

	buf, region := c.stroke.Finish()
	if region.Empty() {
		return nil
	}

	l := c.strokeLayer
	before, err := snapshotRect(l.buf, region)
	if err != nil {
		return err
	}

	mode := c.stroke.Stroke().Brush.Blend
	if err := c.mergeStroke(l, buf, region, mode, l.AlphaLock); err != nil {
		return err
	}

	after, err := snapshotRect(l.buf, region)
	if err != nil {
		return err
	}

	c.hist.push(&strokeEntry{layerID: l.id, before: before, after: after})
	c.markRect(region)
	return nil
}

// CancelStroke abandons the gesture. The layer is untouched and no history
// entry is recorded.
func (c *Canvas) CancelStroke() error {
	if c.state != strokeActive {
		return ErrNoStroke
	}
	c.stroke.Cancel()
	c.stroke = nil
	c.strokeLayer = nil
	c.comp.override = nil
	c.comp.overrideBuf = nil
	c.state = strokeIdle
	c.markAll() // drop preview tiles from the cached composite
	return nil
}

// mergeStroke tries the registered accelerator first, then the CPU path.
func (c *Canvas) mergeStroke(l *Layer, buf *Pixmap, region image.Rectangle, mode BlendMode, alphaLock bool) error {
	if !c.software {
		if a := RegisteredAccelerator(); a != nil && a.CanAccelerate(AccelStrokeMerge) {
			err := a.MergeStroke(l, buf, region, mode, alphaLock)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrFallbackToCPU) {
				Logger().Warn("GPU stroke merge failed, using CPU",
					"accelerator", a.Name(), "error", err)
			}
		}
	}
	return c.comp.MergeStroke(l, buf, region, mode, alphaLock)
}

// AddLayer creates a transparent paint layer above the top of the root
// stack, makes it active, and returns its id.
func (c *Canvas) AddLayer() (uuid.UUID, error) {
	if c.state != strokeIdle {
		return uuid.Nil, ErrStrokeActive
	}
	l := NewLayer(c.width, c.height)
	c.layerSeq++
	l.Name = fmt.Sprintf("Layer %d", c.layerSeq)

	e := &addEntry{
		layer:        l,
		parentID:     uuid.Nil,
		index:        len(c.layers),
		activeBefore: c.active,
		activeAfter:  l.id,
	}
	if err := c.attachLayerAt(uuid.Nil, e.index, l); err != nil {
		return uuid.Nil, err
	}
	c.active = l.id
	c.hist.push(e)
	return l.id, nil
}

// InsertLayer places a caller-built layer at the given root index (clamped).
// Paint layers anywhere in the inserted subtree must match the canvas
// dimensions. The active layer does not change.
func (c *Canvas) InsertLayer(l *Layer, index int) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	if l == nil {
		return errors.New("paint: layer must not be nil")
	}
	if err := c.validateBounds(l); err != nil {
		return err
	}
	if _, _, _, ok := c.find(l.id); ok {
		return fmt.Errorf("paint: layer %v already in canvas", l.id)
	}
	if index < 0 {
		index = 0
	}
	if index > len(c.layers) {
		index = len(c.layers)
	}

	e := &addEntry{
		layer:        l,
		parentID:     uuid.Nil,
		index:        index,
		activeBefore: c.active,
		activeAfter:  c.active,
	}
	if err := c.attachLayerAt(uuid.Nil, index, l); err != nil {
		return err
	}
	c.hist.push(e)
	return nil
}

// AddGroup with no arguments creates an empty group above the top of the
// root stack. With layer ids it gathers those layers, which must share a
// parent, into a new group at the topmost member's position, preserving
// their relative order. The active layer does not change; selecting a layer
// inside a group keeps working.
func (c *Canvas) AddGroup(ids ...uuid.UUID) (uuid.UUID, error) {
	if c.state != strokeIdle {
		return uuid.Nil, ErrStrokeActive
	}

	g := NewGroup()
	c.groupSeq++
	g.Name = fmt.Sprintf("Group %d", c.groupSeq)

	if len(ids) == 0 {
		e := &addEntry{
			layer:        g,
			parentID:     uuid.Nil,
			index:        len(c.layers),
			activeBefore: c.active,
			activeAfter:  c.active,
		}
		if err := c.attachLayerAt(uuid.Nil, e.index, g); err != nil {
			return uuid.Nil, err
		}
		c.hist.push(e)
		return g.id, nil
	}

	members, parentID, indices, err := c.resolveSiblings(ids)
	if err != nil {
		return uuid.Nil, err
	}

	// Pull members out top-down so the remaining indices stay valid, then
	// drop the group where the topmost member sat.
	for i := len(members) - 1; i >= 0; i-- {
		if err := c.detachLayerAt(parentID, indices[i], members[i]); err != nil {
			return uuid.Nil, err
		}
	}
	g.children = append(g.children, members...)
	groupIndex := indices[len(indices)-1] - (len(members) - 1)
	if err := c.attachLayerAt(parentID, groupIndex, g); err != nil {
		return uuid.Nil, err
	}

	c.hist.push(&groupEntry{
		group:    g,
		parentID: parentID,
		index:    groupIndex,
		indices:  indices,
		members:  members,
	})
	return g.id, nil
}

// DeleteLayer removes a layer or a whole group subtree. The last root layer
// cannot be deleted. If the active layer goes with it, the nearest surviving
// sibling (or the parent group) becomes active.
func (c *Canvas) DeleteLayer(id uuid.UUID) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, parent, idx, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	if l.Locked {
		return ErrLayerLocked
	}
	if parent == nil && len(c.layers) == 1 {
		return ErrLastLayer
	}

	parentID := layerParentID(parent)
	activeBefore := c.active
	if err := c.detachLayerAt(parentID, idx, l); err != nil {
		return err
	}

	activeAfter := activeBefore
	if layerContains(l, activeBefore) {
		activeAfter = c.nearestSurvivor(parent, idx)
	}
	c.active = activeAfter

	c.hist.push(&deleteEntry{
		layer:        l,
		parentID:     parentID,
		index:        idx,
		activeBefore: activeBefore,
		activeAfter:  activeAfter,
	})
	return nil
}

// DuplicateLayer deep-copies a layer (or group subtree) directly above the
// original and makes the copy active.
func (c *Canvas) DuplicateLayer(id uuid.UUID) (uuid.UUID, error) {
	if c.state != strokeIdle {
		return uuid.Nil, ErrStrokeActive
	}
	l, parent, idx, ok := c.find(id)
	if !ok {
		return uuid.Nil, ErrUnknownLayer
	}

	dup := l.Clone()
	parentID := layerParentID(parent)
	e := &addEntry{
		layer:        dup,
		parentID:     parentID,
		index:        idx + 1,
		activeBefore: c.active,
		activeAfter:  dup.id,
	}
	if err := c.attachLayerAt(parentID, idx+1, dup); err != nil {
		return uuid.Nil, err
	}
	c.active = dup.id
	c.hist.push(e)
	return dup.id, nil
}

// MergeDown composites a layer onto the paint layer directly below it and
// removes the upper layer. The upper layer's blend mode, opacity, and
// clipping apply during the merge; the lower layer keeps its own settings.
// Groups merge as their flattened content. Undo restores both layers bit
// for bit.
func (c *Canvas) MergeDown(id uuid.UUID) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, parent, idx, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	if l.Locked {
		return ErrLayerLocked
	}
	if idx == 0 {
		return ErrNoLayerBelow
	}
	siblings := c.layers
	if parent != nil {
		siblings = parent.children
	}
	below := siblings[idx-1]
	if below.IsGroup() {
		return ErrNoLayerBelow
	}
	if below.Locked {
		return ErrLayerLocked
	}

	full := c.fullRect()
	src := l.buf
	if l.IsGroup() {
		src = NewPixmap(c.width, c.height)
		c.comp.compositeStack(src, l.children, full)
	}

	before, err := snapshotRect(below.buf, full)
	if err != nil {
		return err
	}

	var clipSrc *Pixmap
	if l.ClippingMask {
		clipSrc = below.buf
	}
	fn := resolveBlend(l.Mode)
	c.comp.blendLayerRegion(below.buf, src, full, fn, opacityByte(l.Opacity), clipSrc)

	after, err := snapshotRect(below.buf, full)
	if err != nil {
		return err
	}

	parentID := layerParentID(parent)
	activeBefore := c.active
	if err := c.detachLayerAt(parentID, idx, l); err != nil {
		return err
	}
	activeAfter := activeBefore
	if layerContains(l, activeBefore) {
		activeAfter = below.id
	}
	c.active = activeAfter

	c.hist.push(&mergeDownEntry{
		upper:        l,
		parentID:     parentID,
		upperIndex:   idx,
		lowerID:      below.id,
		before:       before,
		after:        after,
		activeBefore: activeBefore,
		activeAfter:  activeAfter,
	})
	return nil
}

// SetOpacity sets a layer's opacity, clamped to [0, 1].
func (c *Canvas) SetOpacity(id uuid.UUID, v float64) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, _, _, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	v = clamp01(v)
	if v == l.Opacity {
		return nil
	}
	e := &propertyEntry{layerID: id, prop: propOpacity, before: l.Opacity, after: v}
	if err := c.applyProp(id, propOpacity, v); err != nil {
		return err
	}
	c.hist.push(e)
	return nil
}

// SetBlendMode sets a layer's blend mode. The value is stored as given;
// compositing an unknown mode fails closed to Normal and reports it once.
func (c *Canvas) SetBlendMode(id uuid.UUID, mode BlendMode) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, _, _, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	if mode == l.Mode {
		return nil
	}
	e := &propertyEntry{layerID: id, prop: propMode, before: l.Mode, after: mode}
	if err := c.applyProp(id, propMode, mode); err != nil {
		return err
	}
	c.hist.push(e)
	return nil
}

// SetVisible shows or hides a layer.
func (c *Canvas) SetVisible(id uuid.UUID, v bool) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	l, _, _, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	if v == l.Visible {
		return nil
	}
	e := &propertyEntry{layerID: id, prop: propVisible, before: l.Visible, after: v}
	if err := c.applyProp(id, propVisible, v); err != nil {
		return err
	}
	c.hist.push(e)
	return nil
}

// ToggleAlphaLock flips a paint layer's alpha lock and returns the new
// state. Groups have no pixels of their own to lock.
func (c *Canvas) ToggleAlphaLock(id uuid.UUID) (bool, error) {
	if c.state != strokeIdle {
		return false, ErrStrokeActive
	}
	l, _, _, ok := c.find(id)
	if !ok {
		return false, ErrUnknownLayer
	}
	if l.IsGroup() {
		return false, ErrLayerIsGroup
	}
	v := !l.AlphaLock
	e := &propertyEntry{layerID: id, prop: propAlphaLock, before: l.AlphaLock, after: v}
	if err := c.applyProp(id, propAlphaLock, v); err != nil {
		return false, err
	}
	c.hist.push(e)
	return v, nil
}

// ToggleClippingMask flips whether the layer clips to the alpha of the layer
// below, and returns the new state.
func (c *Canvas) ToggleClippingMask(id uuid.UUID) (bool, error) {
	if c.state != strokeIdle {
		return false, ErrStrokeActive
	}
	l, _, _, ok := c.find(id)
	if !ok {
		return false, ErrUnknownLayer
	}
	v := !l.ClippingMask
	e := &propertyEntry{layerID: id, prop: propClippingMask, before: l.ClippingMask, after: v}
	if err := c.applyProp(id, propClippingMask, v); err != nil {
		return false, err
	}
	c.hist.push(e)
	return v, nil
}

// SetActiveLayer selects the layer strokes land on. Selection is not part
// of the document, so this is not undoable.
func (c *Canvas) SetActiveLayer(id uuid.UUID) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	if _, _, _, ok := c.find(id); !ok {
		return ErrUnknownLayer
	}
	c.active = id
	return nil
}

// MoveLayer reorders a layer within its sibling list. The index is clamped
// to the list; moving a layer onto its own position is a no-op.
func (c *Canvas) MoveLayer(id uuid.UUID, index int) error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	_, parent, from, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	siblings := c.layers
	if parent != nil {
		siblings = parent.children
	}
	if index < 0 {
		index = 0
	}
	if index >= len(siblings) {
		index = len(siblings) - 1
	}
	if index == from {
		return nil
	}

	parentID := layerParentID(parent)
	if err := c.moveLayerAt(parentID, from, index); err != nil {
		return err
	}
	c.hist.push(&moveEntry{layerID: id, parentID: parentID, from: from, to: index})
	return nil
}

// Flatten composites the whole stack into a single paint layer and replaces
// the stack with it. The paper color stays canvas state and is not baked in.
// Undo restores the previous stack.
func (c *Canvas) Flatten() error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}

	flat := NewLayer(c.width, c.height)
	flat.Name = "Flattened"
	c.comp.compositeStack(flat.buf, c.layers, c.fullRect())

	c.hist.push(&flattenEntry{
		stack:        c.layers,
		result:       flat,
		activeBefore: c.active,
	})
	c.layers = []*Layer{flat}
	c.active = flat.id
	c.markAll()
	return nil
}

// Undo reverts the most recent edit. Selection changes are not edits.
func (c *Canvas) Undo() error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	return c.hist.undo(c)
}

// Redo re-applies the most recently undone edit.
func (c *Canvas) Redo() error {
	if c.state != strokeIdle {
		return ErrStrokeActive
	}
	return c.hist.redo(c)
}

// CanUndo reports whether an edit is available to undo.
func (c *Canvas) CanUndo() bool { return len(c.hist.entries) > 0 }

// CanRedo reports whether an undone edit is available to redo.
func (c *Canvas) CanRedo() bool { return len(c.hist.redos) > 0 }

// CompositeAll returns the full composite, recomputing only the tiles
// invalidated since the last call. During an active stroke the in-flight
// buffer previews over the active layer without touching it.
//
// The returned pixmap is the canvas's internal cache: treat it as read-only
// and Clone it if it must outlive the next canvas call.
func (c *Canvas) CompositeAll() *Pixmap {
	c.recomposite()
	return c.composite
}

// CompositeTo composites into a render target. The target must match the
// canvas size and use an 8-bit RGBA or BGRA format; pixels are written
// straight (unpremultiplied), row by row honoring the target's stride.
func (c *Canvas) CompositeTo(t render.Target) error {
	if err := render.ValidateSize(t, c.width, c.height); err != nil {
		return err
	}

	src := c.CompositeAll()
	pix := t.Pixels()
	stride := t.Stride()

	switch t.Format() {
	case gputypes.TextureFormatRGBA8Unorm:
		for y := 0; y < c.height; y++ {
			copy(pix[y*stride:y*stride+c.width*4], src.Data()[y*c.width*4:])
		}
	case gputypes.TextureFormatBGRA8Unorm:
		data := src.Data()
		for y := 0; y < c.height; y++ {
			row := pix[y*stride:]
			off := y * c.width * 4
			for x := 0; x < c.width; x++ {
				i := off + x*4
				row[x*4] = data[i+2]
				row[x*4+1] = data[i+1]
				row[x*4+2] = data[i]
				row[x*4+3] = data[i+3]
			}
		}
	default:
		return render.ErrUnsupportedFormat
	}
	return nil
}

// recomposite refreshes the cached composite for all dirty tiles.
func (c *Canvas) recomposite() {
	if c.state == strokeActive {
		c.syncPreview()
	}

	if c.dirty.IsEmpty() {
		return
	}

	if c.tryAcceleratedComposite() {
		return
	}

	tiles := c.dirty.GetAndClear()
	if c.pool == nil || len(tiles) < 2 {
		for _, t := range tiles {
			x, y, w, h := parallel.TileBounds(t[0], t[1], c.width, c.height)
			c.comp.compositeRegion(c.composite, c.layers, image.Rect(x, y, x+w, y+h))
		}
		return
	}

	work := make([]func(), len(tiles))
	for i, t := range tiles {
		x, y, w, h := parallel.TileBounds(t[0], t[1], c.width, c.height)
		r := image.Rect(x, y, x+w, y+h)
		work[i] = func() {
			c.comp.compositeRegion(c.composite, c.layers, r)
		}
	}
	c.pool.ExecuteAll(work)
}

// tryAcceleratedComposite dispatches a full-stack composite to the GPU when
// one is registered and the stack is flat (no groups, no clipping masks,
// no stroke preview). Reports whether the GPU produced the composite.
func (c *Canvas) tryAcceleratedComposite() bool {
	if c.software || c.state != strokeIdle || !flatStack(c.layers) {
		return false
	}
	a := RegisteredAccelerator()
	if a == nil || !a.CanAccelerate(AccelComposite) {
		return false
	}

	c.comp.fillRegion(c.composite, c.fullRect(), c.comp.Background)
	err := a.CompositeStack(c.composite, c.layers)
	if err == nil {
		c.dirty.Clear()
		return true
	}
	if !errors.Is(err, ErrFallbackToCPU) {
		Logger().Warn("GPU composite failed, using CPU",
			"accelerator", a.Name(), "error", err)
	}
	return false
}

// syncPreview rebuilds the stroke preview: a copy of the active layer with
// the stroke buffer merged over its dirty region, substituted for the layer
// during compositing. The first sync of a stroke copies the whole layer so
// tiles dirtied by anything else still composite correctly; later syncs
// refresh only the stroke region. Alpha lock previews exactly because the
// preview starts from the layer's own pixels.
func (c *Canvas) syncPreview() {
	c.stroke.Wait()
	region := c.stroke.DirtyRect()
	if region.Empty() {
		return
	}

	if c.preview == nil {
		c.preview = NewPixmap(c.width, c.height)
	}
	l := c.strokeLayer
	if !c.previewValid {
		c.preview.CopyFrom(l.buf)
		c.previewValid = true
	} else {
		c.preview.PasteRect(region, l.buf.CopyRect(region))
	}
	c.comp.mergeBuffer(c.preview, c.stroke.Buffer(), region,
		c.stroke.Stroke().Brush.Blend, l.AlphaLock)

	c.comp.override = l
	c.comp.overrideBuf = c.preview
	c.markRect(region)
}

// Thumbnail renders the composite scaled down to fit maxEdge on its longer
// side, preserving aspect ratio. The scale happens on a snapshot, so the
// caller may hand the result to another goroutine.
func (c *Canvas) Thumbnail(maxEdge int) (image.Image, error) {
	if maxEdge <= 0 {
		return nil, fmt.Errorf("paint: thumbnail edge must be positive, got %d", maxEdge)
	}
	snap := c.CompositeAll().Clone()
	return scaleThumbnail(snap, maxEdge), nil
}

// fullRect returns the canvas bounds.
func (c *Canvas) fullRect() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func (c *Canvas) markRect(r image.Rectangle) {
	c.dirty.MarkRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

func (c *Canvas) markAll() {
	c.dirty.MarkAll()
}

// find resolves a layer id anywhere in the tree, returning its parent group
// (nil at root) and index within its sibling list.
func (c *Canvas) find(id uuid.UUID) (l, parent *Layer, index int, ok bool) {
	return findLayer(c.layers, nil, id)
}

func findLayer(list []*Layer, parent *Layer, id uuid.UUID) (*Layer, *Layer, int, bool) {
	for i, l := range list {
		if l.id == id {
			return l, parent, i, true
		}
		if l.IsGroup() {
			if found, p, idx, ok := findLayer(l.children, l, id); ok {
				return found, p, idx, ok
			}
		}
	}
	return nil, nil, -1, false
}

func layerParentID(parent *Layer) uuid.UUID {
	if parent == nil {
		return uuid.Nil
	}
	return parent.id
}

// layerContains reports whether id names l or any layer in its subtree.
func layerContains(l *Layer, id uuid.UUID) bool {
	if l.id == id {
		return true
	}
	for _, ch := range l.children {
		if layerContains(ch, id) {
			return true
		}
	}
	return false
}

// paintLayer resolves an id that must name a paint layer.
func (c *Canvas) paintLayer(id uuid.UUID) (*Layer, error) {
	l, _, _, ok := c.find(id)
	if !ok {
		return nil, ErrUnknownLayer
	}
	if l.IsGroup() {
		return nil, ErrLayerIsGroup
	}
	return l, nil
}

// siblingList resolves a parent id to the slice holding its children.
// uuid.Nil names the root stack.
func (c *Canvas) siblingList(parentID uuid.UUID) (*[]*Layer, error) {
	if parentID == uuid.Nil {
		return &c.layers, nil
	}
	l, _, _, ok := c.find(parentID)
	if !ok || !l.IsGroup() {
		return nil, errHistoryDesync
	}
	return &l.children, nil
}

func (c *Canvas) attachLayerAt(parentID uuid.UUID, index int, l *Layer) error {
	list, err := c.siblingList(parentID)
	if err != nil {
		return err
	}
	if index < 0 || index > len(*list) {
		return errHistoryDesync
	}
	*list = append(*list, nil)
	copy((*list)[index+1:], (*list)[index:])
	(*list)[index] = l
	c.markAll()
	return nil
}

// detachLayerAt removes the layer at index, verifying it is the expected one.
func (c *Canvas) detachLayerAt(parentID uuid.UUID, index int, want *Layer) error {
	list, err := c.siblingList(parentID)
	if err != nil {
		return err
	}
	s := *list
	if index < 0 || index >= len(s) || s[index] != want {
		return errHistoryDesync
	}
	copy(s[index:], s[index+1:])
	s[len(s)-1] = nil
	*list = s[:len(s)-1]
	c.markAll()
	return nil
}

func (c *Canvas) moveLayerAt(parentID uuid.UUID, from, to int) error {
	list, err := c.siblingList(parentID)
	if err != nil {
		return err
	}
	s := *list
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return errHistoryDesync
	}
	l := s[from]
	if from < to {
		copy(s[from:], s[from+1:to+1])
	} else {
		copy(s[to+1:], s[to:from])
	}
	s[to] = l
	c.markAll()
	return nil
}

// applyProp sets one scalar property. Alpha lock acts at merge time only,
// so it does not invalidate the composite.
func (c *Canvas) applyProp(id uuid.UUID, prop layerProp, v any) error {
	l, _, _, ok := c.find(id)
	if !ok {
		return ErrUnknownLayer
	}
	switch prop {
	case propOpacity:
		l.Opacity = v.(float64)
	case propMode:
		l.Mode = v.(BlendMode)
	case propVisible:
		l.Visible = v.(bool)
	case propAlphaLock:
		l.AlphaLock = v.(bool)
		return nil
	case propClippingMask:
		l.ClippingMask = v.(bool)
	}
	c.markAll()
	return nil
}

// resolveSiblings maps ids to layers that must share one parent, returned
// bottom-up with their current indices.
func (c *Canvas) resolveSiblings(ids []uuid.UUID) ([]*Layer, uuid.UUID, []int, error) {
	type entry struct {
		layer *Layer
		index int
	}
	var parentID uuid.UUID
	entries := make([]entry, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))

	for i, id := range ids {
		if seen[id] {
			return nil, uuid.Nil, nil, fmt.Errorf("paint: duplicate layer %v in group", id)
		}
		seen[id] = true
		l, parent, idx, ok := c.find(id)
		if !ok {
			return nil, uuid.Nil, nil, ErrUnknownLayer
		}
		pid := layerParentID(parent)
		if i == 0 {
			parentID = pid
		} else if pid != parentID {
			return nil, uuid.Nil, nil, fmt.Errorf("paint: layers to group must share a parent")
		}
		entries = append(entries, entry{l, idx})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	members := make([]*Layer, len(entries))
	indices := make([]int, len(entries))
	for i, e := range entries {
		members[i] = e.layer
		indices[i] = e.index
	}
	return members, parentID, indices, nil
}

// nearestSurvivor picks the new active layer after a deletion at idx in
// parent's sibling list (nil parent means root).
func (c *Canvas) nearestSurvivor(parent *Layer, idx int) uuid.UUID {
	list := c.layers
	if parent != nil {
		list = parent.children
	}
	if len(list) > 0 {
		if idx >= len(list) {
			idx = len(list) - 1
		}
		return list[idx].id
	}
	if parent != nil {
		return parent.id
	}
	return uuid.Nil
}

// validateBounds walks a subtree checking every paint buffer against the
// canvas size.
func (c *Canvas) validateBounds(l *Layer) error {
	if !l.IsGroup() {
		if l.buf.Width() != c.width || l.buf.Height() != c.height {
			return ErrLayerBoundsMismatch
		}
		return nil
	}
	for _, ch := range l.children {
		if err := c.validateBounds(ch); err != nil {
			return err
		}
	}
	return nil
}

// flatStack reports whether every root layer is a plain paint layer, the
// shape the GPU compositor accepts.
func flatStack(layers []*Layer) bool {
	for _, l := range layers {
		if l.IsGroup() || l.ClippingMask {
			return false
		}
	}
	return true
}
