package paint

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewLayerDefaults(t *testing.T) {
	l := NewLayer(32, 24)

	if l.ID() == uuid.Nil {
		t.Error("NewLayer() id is nil")
	}
	if l.Name != "Layer" {
		t.Errorf("Name = %q, want %q", l.Name, "Layer")
	}
	if l.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", l.Opacity)
	}
	if l.Mode != BlendNormal {
		t.Errorf("Mode = %v, want BlendNormal", l.Mode)
	}
	if !l.Visible {
		t.Error("Visible = false, want true")
	}
	if l.Locked || l.AlphaLock || l.ClippingMask {
		t.Error("new layer should have no locks or clipping")
	}
	if l.IsGroup() {
		t.Error("IsGroup() = true for paint layer")
	}
	if l.Buffer() == nil {
		t.Fatal("Buffer() = nil for paint layer")
	}
	if w, h := l.Buffer().Width(), l.Buffer().Height(); w != 32 || h != 24 {
		t.Errorf("buffer size = %dx%d, want 32x24", w, h)
	}
	if l.Children() != nil {
		t.Error("Children() != nil for paint layer")
	}
}

func TestNewGroupDefaults(t *testing.T) {
	g := NewGroup()

	if g.Name != "Group" {
		t.Errorf("Name = %q, want %q", g.Name, "Group")
	}
	if !g.IsGroup() {
		t.Error("IsGroup() = false for group")
	}
	if g.Buffer() != nil {
		t.Error("Buffer() != nil for group")
	}
	if g.Opacity != 1 || g.Mode != BlendNormal || !g.Visible {
		t.Errorf("group defaults = opacity %v mode %v visible %v", g.Opacity, g.Mode, g.Visible)
	}
}

func TestLayerClone(t *testing.T) {
	l := NewLayer(8, 8)
	l.Name = "Sketch"
	l.Opacity = 0.5
	l.Mode = BlendMultiply
	l.AlphaLock = true
	l.buf.SetPixel(3, 4, Red)

	c := l.Clone()

	if c.ID() == l.ID() {
		t.Error("clone shares the original's id")
	}
	if c.Name != "Sketch copy" {
		t.Errorf("clone name = %q, want %q", c.Name, "Sketch copy")
	}
	if c.Opacity != 0.5 || c.Mode != BlendMultiply || !c.AlphaLock {
		t.Error("clone did not copy properties")
	}
	if got := c.buf.GetPixel(3, 4); got != l.buf.GetPixel(3, 4) {
		t.Errorf("clone pixel = %v, want %v", got, l.buf.GetPixel(3, 4))
	}

	// The pixel buffer must be a deep copy.
	l.buf.SetPixel(3, 4, Blue)
	if c.buf.GetPixel(3, 4) == l.buf.GetPixel(3, 4) {
		t.Error("clone buffer aliases the original")
	}
}

func TestGroupCloneDeep(t *testing.T) {
	g := NewGroup()
	g.Name = "Figure"
	child := NewLayer(8, 8)
	child.Name = "Lines"
	g.children = []*Layer{child}

	c := g.Clone()

	if !c.IsGroup() {
		t.Fatal("clone of group is not a group")
	}
	if len(c.Children()) != 1 {
		t.Fatalf("clone has %d children, want 1", len(c.Children()))
	}
	cc := c.Children()[0]
	if cc == child {
		t.Error("clone shares child pointer with original")
	}
	if cc.ID() == child.ID() {
		t.Error("cloned child shares the original child's id")
	}
	if cc.Name != "Lines copy" {
		t.Errorf("cloned child name = %q, want %q", cc.Name, "Lines copy")
	}

	// Painting on the original child must not show up in the clone.
	child.buf.SetPixel(0, 0, Red)
	if cc.buf.GetPixel(0, 0) == child.buf.GetPixel(0, 0) {
		t.Error("cloned child buffer aliases the original")
	}
}

func TestLayerString(t *testing.T) {
	l := NewLayer(4, 4)
	l.Name = "Ink"
	l.Mode = BlendScreen
	l.Opacity = 0.25
	if got := l.String(); !strings.Contains(got, `"Ink"`) || !strings.Contains(got, "0.25") {
		t.Errorf("String() = %q, want name and opacity in it", got)
	}

	g := NewGroup()
	g.children = []*Layer{NewLayer(4, 4), NewLayer(4, 4)}
	if got := g.String(); !strings.Contains(got, "group(2)") {
		t.Errorf("String() = %q, want group(2)", got)
	}
}
