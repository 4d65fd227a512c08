// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines where composited canvas output goes.
//
// A Target is a CPU-visible pixel destination: the canvas composites into
// it row by row, honoring the target's stride and byte order. Two
// implementations ship with the package:
//
//   - PixmapTarget: owns an *image.NRGBA, for PNG export and tests
//   - SurfaceTarget: wraps a caller-mapped buffer, for presenting into a
//     window surface or shared-memory framebuffer owned by the host
//
// The package also carries the GPU device integration point. Hosts built on
// gogpu hand their device to the paint engine rather than letting it create
// one:
//
//	app.OnInit(func(gc *gogpu.Context) {
//	    _ = paint.SetAcceleratorDeviceProvider(gc.GPUContextProvider())
//	})
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, so any gogpu host
// satisfies it directly. HasDevice reports whether a handle actually carries
// a device, which is how CPU-only paths (NullDeviceHandle, headless tests)
// are told apart from real GPU hosts.
package render
