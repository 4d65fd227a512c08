//go:build !nogpu

// Package gpu registers the GPU compositor for hardware-accelerated
// layer compositing and stroke merging.
//
// Import this package to composite layer stacks and merge finished
// strokes on the GPU. The compositor uses wgpu/hal compute shaders and
// blends with the same integer math as the software path, so GPU and
// CPU composites are byte-identical for the supported blend modes.
// Stacks that use float-math modes (soft light, the hue family), groups,
// or clipping masks stay on the CPU.
//
// If GPU initialization fails (no Vulkan available), compositing
// silently falls back to the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/paint/gpu" // enable GPU compositing
package gpu

import (
	"github.com/gogpu/paint"
	gpuimpl "github.com/gogpu/paint/internal/gpu"
)

func init() {
	if err := paint.RegisterAccelerator(&gpuimpl.Compositor{}); err != nil {
		paint.Logger().Warn("GPU compositor not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU compositor to use a shared GPU device
// from an external provider (e.g., gogpu). This avoids creating a separate
// GPU instance and enables efficient device sharing with a window surface.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// returning wgpu/hal types.
//
// Call this before painting begins, or any time after registering the
// compositor.
func SetDeviceProvider(provider any) error {
	return paint.SetAcceleratorDeviceProvider(provider)
}
