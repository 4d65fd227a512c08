package paint

import (
	"bytes"
	"image"
	"math/rand"
	"testing"
)

func TestUndoEmptyHistory(t *testing.T) {
	c := testCanvas(8, 8)
	defer c.Close()

	if err := c.Undo(); err != ErrNothingToUndo {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if err := c.Redo(); err != ErrNothingToRedo {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
}

func TestRedoClearedByNewEdit(t *testing.T) {
	c := testCanvas(8, 8)
	defer c.Close()
	id := c.ActiveLayerID()

	if err := c.SetOpacity(id, 0.5); err != nil {
		t.Fatalf("SetOpacity() error = %v", err)
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !c.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}

	if err := c.SetOpacity(id, 0.25); err != nil {
		t.Fatalf("SetOpacity() error = %v", err)
	}
	if c.CanRedo() {
		t.Error("new edit did not clear the redo stack")
	}
	if err := c.Redo(); err != ErrNothingToRedo {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
}

func TestUndoLimitEvictsOldest(t *testing.T) {
	c := testCanvas(8, 8, WithUndoLimit(2))
	defer c.Close()
	id := c.ActiveLayerID()
	l := c.ActiveLayer()

	// Three edits against a limit of two: the 1 -> 0.9 entry falls off.
	for _, v := range []float64{0.9, 0.8, 0.7} {
		if err := c.SetOpacity(id, v); err != nil {
			t.Fatalf("SetOpacity(%v) error = %v", v, err)
		}
	}

	if err := c.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if l.Opacity != 0.8 {
		t.Errorf("Opacity = %v, want 0.8", l.Opacity)
	}
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if l.Opacity != 0.9 {
		t.Errorf("Opacity = %v, want 0.9", l.Opacity)
	}
	if err := c.Undo(); err != ErrNothingToUndo {
		t.Errorf("Undo() past the limit: error = %v, want ErrNothingToUndo", err)
	}
	if l.Opacity != 0.9 {
		t.Errorf("Opacity = %v, want 0.9 with the first edit unrecoverable", l.Opacity)
	}
}

func TestPixelSnapshotRoundTrip(t *testing.T) {
	p := NewPixmap(16, 16)
	rng := rand.New(rand.NewSource(5))
	data := p.Data()
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}

	r := image.Rect(3, 2, 11, 9)
	snap, err := snapshotRect(p, r)
	if err != nil {
		t.Fatalf("snapshotRect() error = %v", err)
	}
	original := append([]byte(nil), data...)

	p.Clear(White)
	if err := snap.restore(p); err != nil {
		t.Fatalf("restore() error = %v", err)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			off := p.PixOffset(x, y)
			got := data[off : off+4]
			if image.Pt(x, y).In(r) {
				if !bytes.Equal(got, original[off:off+4]) {
					t.Fatalf("pixel (%d,%d) = %v, want restored %v", x, y, got, original[off:off+4])
				}
			} else {
				if !bytes.Equal(got, []byte{255, 255, 255, 255}) {
					t.Fatalf("pixel (%d,%d) = %v, want untouched white", x, y, got)
				}
			}
		}
	}
}

func TestPixelSnapshotEmptyRect(t *testing.T) {
	p := NewPixmap(4, 4)
	snap, err := snapshotRect(p, image.Rectangle{})
	if err != nil {
		t.Fatalf("snapshotRect() error = %v", err)
	}
	if err := snap.restore(p); err != nil {
		t.Errorf("restore() of empty snapshot error = %v", err)
	}
}

// TestHistoryFullRoundTrip drives every undoable edit once, then walks the
// whole history back and forward, checking the composite reproduces the
// initial and final images bit for bit.
func TestHistoryFullRoundTrip(t *testing.T) {
	c := NewCanvas(48, 48, WithWorkers(0), WithSeed(23), WithUndoLimit(128))
	defer c.Close()

	initial := append([]byte(nil), c.CompositeAll().Data()...)

	stroke := func(color RGBA, from, to Point) {
		t.Helper()
		b := DefaultBrush()
		b.Size = 12
		if err := c.BeginStroke(b, color, StrokePoint{Pos: from, Pressure: 0.8}); err != nil {
			t.Fatalf("BeginStroke() error = %v", err)
		}
		if err := c.ExtendStroke(StrokePoint{Pos: to, Pressure: 0.8, Time: 16}); err != nil {
			t.Fatalf("ExtendStroke() error = %v", err)
		}
		if err := c.EndStroke(); err != nil {
			t.Fatalf("EndStroke() error = %v", err)
		}
	}
	check := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("edit error = %v", err)
		}
	}

	base := c.ActiveLayerID()
	stroke(Red, Pt(8, 8), Pt(40, 40))

	shade, err := c.AddLayer()
	check(err)
	stroke(RGBA{B: 1, A: 1}, Pt(40, 8), Pt(8, 40))
	check(c.SetBlendMode(shade, BlendMultiply))
	check(c.SetOpacity(shade, 0.6))
	_, err = c.ToggleClippingMask(shade)
	check(err)

	glow, err := c.AddLayer()
	check(err)
	stroke(White, Pt(24, 4), Pt(24, 44))
	check(c.SetBlendMode(glow, BlendScreen))
	check(c.MoveLayer(glow, 1))

	_, err = c.AddGroup(shade, glow)
	check(err)
	_, err = c.DuplicateLayer(base)
	check(err)
	check(c.Flatten())

	final := append([]byte(nil), c.CompositeAll().Data()...)
	edits := len(c.hist.entries)
	if edits == 0 {
		t.Fatal("no edits recorded")
	}

	for c.CanUndo() {
		if err := c.Undo(); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
	}
	if !bytes.Equal(c.CompositeAll().Data(), initial) {
		t.Errorf("composite differs from the initial canvas after %d undos", edits)
	}

	for c.CanRedo() {
		if err := c.Redo(); err != nil {
			t.Fatalf("Redo() error = %v", err)
		}
	}
	if !bytes.Equal(c.CompositeAll().Data(), final) {
		t.Errorf("composite differs from the final canvas after %d redos", edits)
	}
	if len(c.hist.entries) != edits {
		t.Errorf("history holds %d entries after the round trip, want %d", len(c.hist.entries), edits)
	}
}

func TestUndoStrokeOnLayerInsideGroup(t *testing.T) {
	c := testCanvas(24, 24)
	defer c.Close()

	id, err := c.AddLayer()
	if err != nil {
		t.Fatalf("AddLayer() error = %v", err)
	}
	if _, err := c.AddGroup(id); err != nil {
		t.Fatalf("AddGroup() error = %v", err)
	}
	if err := c.SetActiveLayer(id); err != nil {
		t.Fatalf("SetActiveLayer() error = %v", err)
	}

	l, _ := c.Layer(id)
	blank := layerBytes(l)

	if err := c.BeginStroke(DefaultBrush(), Green, StrokePoint{Pos: Pt(12, 12), Pressure: 1}); err != nil {
		t.Fatalf("BeginStroke() error = %v", err)
	}
	if err := c.EndStroke(); err != nil {
		t.Fatalf("EndStroke() error = %v", err)
	}
	if bytes.Equal(layerBytes(l), blank) {
		t.Fatal("stroke did not reach the grouped layer")
	}

	// The stroke entry re-resolves the layer by id, so it must find it
	// inside the group.
	if err := c.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !bytes.Equal(layerBytes(l), blank) {
		t.Error("undo did not restore the grouped layer")
	}
}
