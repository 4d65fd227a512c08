package paint

import (
	"fmt"

	"github.com/google/uuid"
)

// Layer is one element of the canvas stack: either a paint layer that owns a
// pixel buffer, or a group that holds child layers and composites them as a
// unit. Identity is a uuid assigned at creation and preserved for the layer's
// lifetime; clones get fresh ids.
//
// Property fields may be read freely. Writing them directly works but bypasses
// undo tracking; route edits through the Canvas command surface when history
// matters.
type Layer struct {
	id uuid.UUID

	// Name is the human-readable label shown in a layer panel.
	Name string

	// Opacity scales the layer's contribution during compositing, 0 to 1.
	Opacity float64

	// Mode selects the blend formula applied against the backdrop.
	Mode BlendMode

	// Visible excludes the layer from compositing when false.
	Visible bool

	// Locked rejects strokes and other destructive edits.
	Locked bool

	// AlphaLock confines stroke merges to pixels that already carry alpha:
	// their color channels change, their alpha never does.
	AlphaLock bool

	// ClippingMask multiplies this layer's contribution by the alpha of the
	// layer immediately below before blending.
	ClippingMask bool

	buf      *Pixmap
	children []*Layer
}

// NewLayer creates a transparent paint layer of the given size.
func NewLayer(width, height int) *Layer {
	return &Layer{
		id:      uuid.New(),
		Name:    "Layer",
		Opacity: 1,
		Mode:    BlendNormal,
		Visible: true,
		buf:     NewPixmap(width, height),
	}
}

// NewGroup creates an empty layer group.
func NewGroup() *Layer {
	return &Layer{
		id:      uuid.New(),
		Name:    "Group",
		Opacity: 1,
		Mode:    BlendNormal,
		Visible: true,
	}
}

// ID returns the layer's identity.
func (l *Layer) ID() uuid.UUID { return l.id }

// IsGroup reports whether the layer is a group rather than a paint layer.
func (l *Layer) IsGroup() bool { return l.buf == nil }

// Buffer returns the layer's pixel buffer, or nil for groups.
func (l *Layer) Buffer() *Pixmap { return l.buf }

// Children returns the group's child layers, bottom first. Nil for paint
// layers. The slice is the live stack, not a copy.
func (l *Layer) Children() []*Layer { return l.children }

// Clone deep-copies the layer under a fresh id. Paint layers copy their
// pixels; groups clone every child. The copy's name gains a " copy" suffix.
func (l *Layer) Clone() *Layer {
	c := &Layer{
		id:           uuid.New(),
		Name:         l.Name + " copy",
		Opacity:      l.Opacity,
		Mode:         l.Mode,
		Visible:      l.Visible,
		Locked:       l.Locked,
		AlphaLock:    l.AlphaLock,
		ClippingMask: l.ClippingMask,
	}
	if l.buf != nil {
		c.buf = l.buf.Clone()
	}
	if len(l.children) > 0 {
		c.children = make([]*Layer, len(l.children))
		for i, ch := range l.children {
			c.children[i] = ch.Clone()
		}
	}
	return c
}

func (l *Layer) String() string {
	kind := "layer"
	if l.IsGroup() {
		kind = fmt.Sprintf("group(%d)", len(l.children))
	}
	return fmt.Sprintf("%s %q mode=%s opacity=%.2f", kind, l.Name, l.Mode, l.Opacity)
}
