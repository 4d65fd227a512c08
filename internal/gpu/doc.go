//go:build !nogpu

// Package gpu provides the GPU compositing backend for the paint engine.
//
// It implements paint.Accelerator on top of wgpu/hal compute shaders via
// the gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which supports
// Vulkan, Metal, and DX12 backends depending on the platform.
//
// # Pipeline
//
// Layer compositing runs as a sequence of compute passes, one per visible
// layer, inside a single command submission:
//
//	dst (backdrop)  ─┐
//	layer pixels ────┼─> blend pass 1 -> blend pass 2 -> ... -> readback
//	per-pass params ─┘
//
// Storage-buffer barriers between passes keep the bottom-to-top compositing
// order. The same pipeline merges a finished stroke buffer into its layer
// with one pass over the stroke's dirty region.
//
// # Parity with the CPU path
//
// The composite shader reproduces the byte-exact integer math of the
// software blend table, so a stack composited on the GPU is bit-identical
// to the software result for every supported mode. Modes whose software
// implementation uses float math (soft-light and the HSL family) are not
// implemented in the shader; stacks using them fall back to the CPU.
// port.go carries a line-for-line Go port of the shader that the tests
// hold equal to the software compositor.
//
// # Device sharing
//
// By default the backend opens its own Vulkan device lazily on first use.
// A host that already owns a GPU device (a gogpu application) can share it
// through SetDeviceProvider, which accepts any provider exposing
// HalDevice() and HalQueue().
package gpu
