package paint

import (
	"bytes"
	"compress/zlib"
	"image"
	"io"

	"github.com/google/uuid"
)

// DefaultUndoLimit is the history depth a canvas starts with.
const DefaultUndoLimit = 64

// undoEntry is one reversible edit. Entries capture everything they need at
// push time; undo and redo re-resolve layers by id so an entry survives the
// stack being reshaped by entries above it.
type undoEntry interface {
	undo(c *Canvas) error
	redo(c *Canvas) error
}

// history is a bounded undo stack with a redo stack that clears on every new
// edit. When the limit is reached the oldest entry falls off.
type history struct {
	limit   int
	entries []undoEntry
	redos   []undoEntry
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &history{limit: limit}
}

func (h *history) push(e undoEntry) {
	if len(h.entries) >= h.limit {
		n := copy(h.entries, h.entries[1:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
	}
	h.entries = append(h.entries, e)
	h.redos = h.redos[:0]
}

func (h *history) undo(c *Canvas) error {
	n := len(h.entries)
	if n == 0 {
		return ErrNothingToUndo
	}
	e := h.entries[n-1]
	if err := e.undo(c); err != nil {
		return err
	}
	h.entries = h.entries[:n-1]
	h.redos = append(h.redos, e)
	return nil
}

func (h *history) redo(c *Canvas) error {
	n := len(h.redos)
	if n == 0 {
		return ErrNothingToRedo
	}
	e := h.redos[n-1]
	if err := e.redo(c); err != nil {
		return err
	}
	h.redos = h.redos[:n-1]
	h.entries = append(h.entries, e)
	return nil
}

// pixelSnapshot is a zlib-compressed copy of one rectangle of a pixmap.
// Stroke snapshots cover only the dirty rectangle; structural snapshots
// cover whole layers. BestSpeed keeps commit latency off the pen.
type pixelSnapshot struct {
	rect image.Rectangle
	data []byte
}

func snapshotRect(p *Pixmap, r image.Rectangle) (pixelSnapshot, error) {
	raw := p.CopyRect(r)
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return pixelSnapshot{}, err
	}
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return pixelSnapshot{}, err
	}
	if err := zw.Close(); err != nil {
		return pixelSnapshot{}, err
	}
	return pixelSnapshot{rect: r, data: buf.Bytes()}, nil
}

func (s pixelSnapshot) restore(p *Pixmap) error {
	zr, err := zlib.NewReader(bytes.NewReader(s.data))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return err
	}
	if err := zr.Close(); err != nil {
		return err
	}
	p.PasteRect(s.rect, raw)
	return nil
}

// strokeEntry reverts a committed stroke: the dirty rectangle of the target
// layer before and after the merge.
type strokeEntry struct {
	layerID uuid.UUID
	before  pixelSnapshot
	after   pixelSnapshot
}

func (e *strokeEntry) undo(c *Canvas) error { return e.apply(c, e.before) }
func (e *strokeEntry) redo(c *Canvas) error { return e.apply(c, e.after) }

func (e *strokeEntry) apply(c *Canvas, snap pixelSnapshot) error {
	l, err := c.paintLayer(e.layerID)
	if err != nil {
		return err
	}
	if err := snap.restore(l.buf); err != nil {
		return err
	}
	c.markRect(snap.rect)
	return nil
}

// layerProp identifies which scalar a propertyEntry flips.
type layerProp uint8

const (
	propOpacity layerProp = iota
	propMode
	propVisible
	propAlphaLock
	propClippingMask
)

// propertyEntry reverts a scalar layer edit (opacity, mode, flags).
type propertyEntry struct {
	layerID       uuid.UUID
	prop          layerProp
	before, after any
}

func (e *propertyEntry) undo(c *Canvas) error { return c.applyProp(e.layerID, e.prop, e.before) }
func (e *propertyEntry) redo(c *Canvas) error { return c.applyProp(e.layerID, e.prop, e.after) }

// addEntry reverts adding a layer: add, insert, duplicate, or an empty group.
type addEntry struct {
	layer        *Layer
	parentID     uuid.UUID // uuid.Nil for the root stack
	index        int
	activeBefore uuid.UUID
	activeAfter  uuid.UUID
}

func (e *addEntry) undo(c *Canvas) error {
	if err := c.detachLayerAt(e.parentID, e.index, e.layer); err != nil {
		return err
	}
	c.active = e.activeBefore
	return nil
}

func (e *addEntry) redo(c *Canvas) error {
	if err := c.attachLayerAt(e.parentID, e.index, e.layer); err != nil {
		return err
	}
	c.active = e.activeAfter
	return nil
}

// deleteEntry keeps the removed layer (subtree and all) so undo can put the
// exact object back.
type deleteEntry struct {
	layer        *Layer
	parentID     uuid.UUID
	index        int
	activeBefore uuid.UUID
	activeAfter  uuid.UUID
}

func (e *deleteEntry) undo(c *Canvas) error {
	if err := c.attachLayerAt(e.parentID, e.index, e.layer); err != nil {
		return err
	}
	c.active = e.activeBefore
	return nil
}

func (e *deleteEntry) redo(c *Canvas) error {
	if err := c.detachLayerAt(e.parentID, e.index, e.layer); err != nil {
		return err
	}
	c.active = e.activeAfter
	return nil
}

// groupEntry reverts grouping sibling layers: the members leave the group
// and return to their original indices.
type groupEntry struct {
	group    *Layer
	parentID uuid.UUID
	index    int   // where the group sits after members were removed
	indices  []int // members' original indices, ascending
	members  []*Layer
}

func (e *groupEntry) undo(c *Canvas) error {
	if err := c.detachLayerAt(e.parentID, e.index, e.group); err != nil {
		return err
	}
	e.group.children = nil
	for i, m := range e.members {
		if err := c.attachLayerAt(e.parentID, e.indices[i], m); err != nil {
			return err
		}
	}
	return nil
}

func (e *groupEntry) redo(c *Canvas) error {
	for i := len(e.members) - 1; i >= 0; i-- {
		if err := c.detachLayerAt(e.parentID, e.indices[i], e.members[i]); err != nil {
			return err
		}
	}
	e.group.children = append(e.group.children[:0], e.members...)
	return c.attachLayerAt(e.parentID, e.index, e.group)
}

// mergeDownEntry restores both layers of a merge bit for bit: the upper
// layer rejoins the stack and the lower layer's pixels roll back.
type mergeDownEntry struct {
	upper        *Layer
	parentID     uuid.UUID
	upperIndex   int
	lowerID      uuid.UUID
	before       pixelSnapshot
	after        pixelSnapshot
	activeBefore uuid.UUID
	activeAfter  uuid.UUID
}

func (e *mergeDownEntry) undo(c *Canvas) error {
	lower, err := c.paintLayer(e.lowerID)
	if err != nil {
		return err
	}
	if err := e.before.restore(lower.buf); err != nil {
		return err
	}
	if err := c.attachLayerAt(e.parentID, e.upperIndex, e.upper); err != nil {
		return err
	}
	c.active = e.activeBefore
	return nil
}

func (e *mergeDownEntry) redo(c *Canvas) error {
	if err := c.detachLayerAt(e.parentID, e.upperIndex, e.upper); err != nil {
		return err
	}
	lower, err := c.paintLayer(e.lowerID)
	if err != nil {
		return err
	}
	if err := e.after.restore(lower.buf); err != nil {
		return err
	}
	c.active = e.activeAfter
	return nil
}

// moveEntry reverts reordering a layer within its sibling list.
type moveEntry struct {
	layerID  uuid.UUID
	parentID uuid.UUID
	from, to int
}

func (e *moveEntry) undo(c *Canvas) error { return c.moveLayerAt(e.parentID, e.to, e.from) }
func (e *moveEntry) redo(c *Canvas) error { return c.moveLayerAt(e.parentID, e.from, e.to) }

// flattenEntry swaps the whole stack for its flattened result and back.
type flattenEntry struct {
	stack        []*Layer
	result       *Layer
	activeBefore uuid.UUID
}

func (e *flattenEntry) undo(c *Canvas) error {
	c.layers = e.stack
	c.active = e.activeBefore
	c.markAll()
	return nil
}

func (e *flattenEntry) redo(c *Canvas) error {
	c.layers = []*Layer{e.result}
	c.active = e.result.id
	c.markAll()
	return nil
}
