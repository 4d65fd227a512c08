// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The paint engine RECEIVES a device from the host, it does not create
// one. A gogpu application passes its context provider straight through:
//
//	_ = paint.SetAcceleratorDeviceProvider(gc.GPUContextProvider())
//
// so the compositing accelerator shares the host's device and queue
// instead of opening a second adapter.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HasDevice reports whether a handle actually carries a GPU device.
// NullDeviceHandle and a nil handle both report false, which is how
// headless and CPU-only configurations are detected.
func HasDevice(h DeviceHandle) bool {
	return h != nil && h.Device() != nil
}

// NullDeviceHandle is a DeviceHandle with no device behind it.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
