package paint

// CanvasOption configures a Canvas during creation.
//
// Example:
//
//	// Default canvas: one layer, worker pool sized to GOMAXPROCS.
//	cv := paint.NewCanvas(1920, 1080)
//
//	// White paper, serial compositing, deep history:
//	cv := paint.NewCanvas(1920, 1080,
//	    paint.WithBackground(paint.RGB(1, 1, 1)),
//	    paint.WithWorkers(0),
//	    paint.WithUndoLimit(256))
type CanvasOption func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	workers    int
	undoLimit  int
	background RGBA
	software   bool
	seed       int64
	seedSet    bool
}

func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		workers:   -1, // sized to GOMAXPROCS
		undoLimit: DefaultUndoLimit,
	}
}

// WithWorkers sets the number of goroutines used for stamp rendering and
// tile compositing. Zero disables the pool entirely; everything runs on the
// calling goroutine. Negative (the default) sizes the pool to GOMAXPROCS.
func WithWorkers(n int) CanvasOption {
	return func(o *canvasOptions) {
		o.workers = n
	}
}

// WithUndoLimit sets how many edits the history retains before the oldest
// falls off. Values below 1 keep the default.
func WithUndoLimit(n int) CanvasOption {
	return func(o *canvasOptions) {
		o.undoLimit = n
	}
}

// WithBackground sets the paper color the bottom layer blends against.
// The default is transparent.
func WithBackground(c RGBA) CanvasOption {
	return func(o *canvasOptions) {
		o.background = c
	}
}

// WithSoftwareOnly makes the canvas skip any registered GPU accelerator and
// composite on the CPU unconditionally.
func WithSoftwareOnly() CanvasOption {
	return func(o *canvasOptions) {
		o.software = true
	}
}

// WithSeed fixes the random seed for per-stroke scatter, jitter, and color
// dynamics, making stroke output reproducible. Without it each stroke draws
// a fresh seed.
func WithSeed(seed int64) CanvasOption {
	return func(o *canvasOptions) {
		o.seed = seed
		o.seedSet = true
	}
}
