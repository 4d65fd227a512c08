package paint

import (
	"errors"
	"image"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this operation.
// The caller should transparently fall back to CPU compositing.
var ErrFallbackToCPU = errors.New("paint: falling back to CPU compositing")

// AcceleratedOp describes operation types for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelComposite represents full layer-stack compositing.
	AccelComposite AcceleratedOp = 1 << iota

	// AccelStrokeMerge represents merging a stroke buffer into a layer.
	AccelStrokeMerge
)

// Accelerator is an optional GPU compositing provider.
//
// When registered via RegisterAccelerator, the Canvas tries GPU compositing
// first for supported operations. If the accelerator returns ErrFallbackToCPU
// or any error, compositing transparently falls back to the CPU path.
//
// Implementations should be provided by GPU backend packages (e.g., paint/gpu/).
// Users opt in to GPU compositing via blank import:
//
//	import _ "github.com/gogpu/paint/gpu" // enables GPU compositing
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu", "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given operation.
	// This is a fast check used to skip GPU entirely for unsupported operations.
	CanAccelerate(op AcceleratedOp) bool

	// CompositeStack composites the layer stack bottom-to-top onto dst,
	// which arrives pre-filled with the backdrop. The stack is flat:
	// groups and clipping masks must be resolved by the caller before
	// dispatch. Returns ErrFallbackToCPU if the stack cannot be
	// GPU-composited.
	CompositeStack(dst *Pixmap, layers []*Layer) error

	// MergeStroke merges the stroke buffer region into the layer using the
	// given blend mode, honoring alpha lock.
	// Returns ErrFallbackToCPU if the merge cannot be GPU-accelerated.
	MergeStroke(layer *Layer, buf *Pixmap, region image.Rectangle, mode BlendMode, alphaLock bool) error
}

// DeviceProviderAware is an optional interface for accelerators that can share
// GPU resources with an external provider (e.g., a window surface).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU compositing.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    paint.RegisterAccelerator(NewAccelerator())
//	}
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("paint: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// RegisteredAccelerator returns the currently registered accelerator, or nil
// if none.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
