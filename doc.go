// Package paint is a digital painting engine for Go.
//
// # Overview
//
// paint provides the core of a painting application: a pressure-driven
// brush engine that turns stylus gestures into stamped strokes, and a
// layer compositor with Photoshop-style blend modes, groups, clipping
// masks, alpha lock, and undo. It is designed to integrate with the
// GoGPU ecosystem; compositing runs on the CPU and can be offloaded to
// wgpu compute shaders.
//
// # Quick Start
//
//	import "github.com/gogpu/paint"
//
//	// Create a canvas with one transparent layer
//	c := paint.NewCanvas(1024, 768)
//	defer c.Close()
//
//	// Paint a stroke with a round brush
//	b := paint.DefaultBrush()
//	b.Size = 32
//	c.BeginStroke(b, paint.RGB(0.9, 0.2, 0.1),
//		paint.StrokePoint{Pos: paint.Pt(100, 100), Pressure: 0.4})
//	c.ExtendStroke(paint.StrokePoint{Pos: paint.Pt(400, 300), Pressure: 0.9, Time: 16})
//	c.EndStroke()
//
//	// Save the composite
//	c.CompositeAll().SavePNG("painting.png")
//
// # Strokes
//
// A stroke is a gesture: BeginStroke, any number of ExtendStroke calls,
// then EndStroke or CancelStroke. Input points carry position, pressure,
// tilt, and azimuth; the brush's curves and dynamics shape them into
// stamps. The finished stroke merges into the active layer as a single
// undoable edit. During the gesture, CompositeAll previews the in-flight
// stroke without touching the layer.
//
// # Layers
//
// Layers stack bottom first. Each has a blend mode, opacity, visibility,
// alpha lock, and an optional clipping mask; groups nest layers and
// composite as a unit. All structural edits made through Canvas methods
// (AddLayer, DeleteLayer, MergeDown, Flatten, ...) are undoable.
//
// # GPU Compositing
//
// Compositing is pure Go. To offload flat layer stacks and stroke merges
// to wgpu compute shaders:
//
//	import _ "github.com/gogpu/paint/gpu" // enables GPU compositing
//
// GPU and CPU paths blend with the same integer math, so composites are
// byte-identical; anything the GPU cannot express falls back to the CPU
// transparently.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians
package paint

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
