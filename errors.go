package paint

import "errors"

// Canvas command errors. All layer-addressed operations report ErrUnknownLayer
// when the id does not resolve; the stroke lifecycle errors keep the state
// machine honest (begin while active, end/cancel while idle).
var (
	// ErrUnknownLayer indicates the layer id does not exist in this canvas.
	ErrUnknownLayer = errors.New("paint: unknown layer")

	// ErrStrokeActive indicates a stroke is already in progress.
	ErrStrokeActive = errors.New("paint: stroke already active")

	// ErrNoStroke indicates no stroke is in progress.
	ErrNoStroke = errors.New("paint: no active stroke")

	// ErrLayerLocked indicates the target layer is locked against edits.
	ErrLayerLocked = errors.New("paint: layer is locked")

	// ErrLayerIsGroup indicates a pixel operation was addressed to a group.
	ErrLayerIsGroup = errors.New("paint: layer is a group")

	// ErrLastLayer indicates the operation would leave the canvas empty.
	ErrLastLayer = errors.New("paint: cannot remove the last layer")

	// ErrNoLayerBelow indicates MergeDown was called on the bottom layer
	// or the layer below is not a paint layer.
	ErrNoLayerBelow = errors.New("paint: no paint layer below")

	// ErrLayerBoundsMismatch indicates a layer's pixel buffer does not
	// match the canvas dimensions.
	ErrLayerBoundsMismatch = errors.New("paint: layer bounds do not match canvas")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("paint: nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("paint: nothing to redo")
)
