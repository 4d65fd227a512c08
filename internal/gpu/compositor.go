//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/paint"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for a compositing submission.
const fenceTimeout = 5 * time.Second

// passParams is the per-dispatch uniform block. Layout matches the
// shader's Params struct: eight u32 words, 32 bytes.
type passParams struct {
	Width     uint32
	Height    uint32
	SrcOffset uint32
	Mode      uint32
	Opacity   uint32
	Flags     uint32
	_         [2]uint32
}

// pass describes one blend dispatch: a source slice of the upload buffer
// blended into the destination with one mode/opacity/flags triple.
type pass struct {
	srcOffset uint32 // texels
	mode      uint32
	opacity   uint32
	flags     uint32
}

// Compositor implements paint.Accelerator on wgpu/hal compute shaders.
//
// The GPU device is opened lazily on first use, or adopted from an
// external provider via SetDeviceProvider. Either way a failed setup
// leaves the compositor reporting ErrFallbackToCPU on every call, so the
// canvas silently stays on the software path.
type Compositor struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	initTried      bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// Interface compliance checks.
var _ paint.Accelerator = (*Compositor)(nil)
var _ paint.DeviceProviderAware = (*Compositor)(nil)

// Name returns the accelerator identifier.
func (c *Compositor) Name() string { return "wgpu-compositor" }

// Init registers the accelerator. GPU device initialization is deferred
// until the first composite or until SetDeviceProvider is called, to avoid
// creating a standalone Vulkan device that may interfere with an external
// device provided later.
func (c *Compositor) Init() error {
	return nil
}

// Close releases all GPU resources held by the compositor.
func (c *Compositor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.destroyPipeline()
	if !c.externalDevice {
		if c.device != nil {
			c.device.Destroy()
			c.device = nil
		}
		if c.instance != nil {
			c.instance.Destroy()
			c.instance = nil
		}
	} else {
		// Don't destroy shared resources -- we don't own them.
		c.device = nil
		c.instance = nil
	}
	c.queue = nil
	c.gpuReady = false
	c.initTried = false
	c.externalDevice = false
}

// SetLogger sets the logger for the GPU backend.
// Called by paint.SetLogger to propagate logging configuration.
func (c *Compositor) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// CanAccelerate reports whether this accelerator supports the given operation.
func (c *Compositor) CanAccelerate(op paint.AcceleratedOp) bool {
	return op&(paint.AccelComposite|paint.AccelStrokeMerge) != 0
}

// SetDeviceProvider switches the compositor to a shared GPU device from an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (c *Compositor) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu-compositor: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu-compositor: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu-compositor: provider HalQueue is not hal.Queue")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Destroy own resources if we created them.
	c.destroyPipeline()
	if !c.externalDevice && c.device != nil {
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}

	c.device = device
	c.queue = queue
	c.externalDevice = true
	c.initTried = true

	if err := c.createPipeline(); err != nil {
		c.gpuReady = false
		return fmt.Errorf("wgpu-compositor: create pipeline with shared device: %w", err)
	}
	c.gpuReady = true
	slogger().Info("switched to shared GPU device")
	return nil
}

// CompositeStack composites a flat layer stack onto dst, which arrives
// pre-filled with the backdrop. Each visible layer becomes one compute
// pass; storage barriers between passes keep the bottom-to-top order.
func (c *Compositor) CompositeStack(dst *paint.Pixmap, layers []*paint.Layer) error {
	w, h := dst.Width(), dst.Height()

	var srcs [][]byte
	var passes []pass
	var offset uint32
	for _, l := range layers {
		if !l.Visible || l.Opacity <= 0 {
			continue
		}
		if l.IsGroup() || l.ClippingMask {
			return paint.ErrFallbackToCPU
		}
		if !shaderMode(l.Mode) {
			return paint.ErrFallbackToCPU
		}
		buf := l.Buffer()
		if buf.Width() != w || buf.Height() != h {
			return paint.ErrFallbackToCPU
		}
		srcs = append(srcs, buf.Data())
		passes = append(passes, pass{
			srcOffset: offset,
			mode:      uint32(l.Mode),
			opacity:   uint32(opacityByte(l.Opacity)),
			flags:     0,
		})
		offset += uint32(w * h)
	}
	if len(passes) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureGPULocked(); err != nil {
		return paint.ErrFallbackToCPU
	}
	return c.dispatch(dst.Data(), w, h, srcs, passes)
}

// MergeStroke merges the stroke buffer region into the layer on the GPU.
// The pass runs over a tight copy of the region and is pasted back on
// completion, so only the dirty rectangle crosses the bus.
func (c *Compositor) MergeStroke(layer *paint.Layer, buf *paint.Pixmap, region image.Rectangle, mode paint.BlendMode, alphaLock bool) error {
	if layer.IsGroup() {
		return paint.ErrFallbackToCPU
	}
	if !shaderMode(mode) {
		return paint.ErrFallbackToCPU
	}
	target := layer.Buffer()
	region = region.Intersect(image.Rect(0, 0, target.Width(), target.Height()))
	if region.Empty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureGPULocked(); err != nil {
		return paint.ErrFallbackToCPU
	}

	dstPix := target.CopyRect(region)
	srcPix := buf.CopyRect(region)
	var flags uint32
	if alphaLock {
		flags |= flagAlphaLock
	}
	err := c.dispatch(dstPix, region.Dx(), region.Dy(), [][]byte{srcPix}, []pass{{
		srcOffset: 0,
		mode:      uint32(mode),
		opacity:   255,
		flags:     flags,
	}})
	if err != nil {
		return err
	}
	target.PasteRect(region, dstPix)
	return nil
}

// ensureGPULocked opens the standalone device on first use. A failed
// attempt is remembered so every later call falls back immediately
// instead of re-probing the driver.
func (c *Compositor) ensureGPULocked() error {
	if c.gpuReady {
		return nil
	}
	if c.initTried {
		return fmt.Errorf("wgpu-compositor: GPU unavailable")
	}
	c.initTried = true
	if err := c.initGPU(); err != nil {
		slogger().Warn("GPU init failed, compositing stays on CPU", "err", err)
		return err
	}
	return nil
}

func (c *Compositor) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	c.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	c.device = openDev.Device
	c.queue = openDev.Queue
	if err := c.createPipeline(); err != nil {
		c.device.Destroy()
		c.device = nil
		c.queue = nil
		return fmt.Errorf("create pipeline: %w", err)
	}
	c.gpuReady = true
	slogger().Info("GPU compositor initialized", "adapter", selected.Info.Name)
	return nil
}

func (c *Compositor) createPipeline() error {
	spirv, err := compileToSPIRV(compositeShaderSource)
	if err != nil {
		return fmt.Errorf("compile composite shader: %w", err)
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "composite",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create composite shader module: %w", err)
	}
	c.shader = shader

	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "composite_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "composite_pipeline", Layout: c.pipeLayout,
		Compute: hal.ComputeState{Module: c.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	c.pipeline = pipeline

	return nil
}

func (c *Compositor) destroyPipeline() {
	if c.device == nil {
		return
	}
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}

// dispatch uploads dst and the concatenated sources, encodes one compute
// pass per blend step in a single command buffer, and reads the result
// back into dst. One submit, one fence wait for the whole stack.
func (c *Compositor) dispatch(dst []byte, w, h int, srcs [][]byte, passes []pass) error {
	var srcTotal int
	for _, s := range srcs {
		srcTotal += len(s)
	}
	dstSize := uint64(len(dst))

	srcBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "composite_sources", Size: uint64(srcTotal),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create sources buffer: %w", err)
	}
	defer c.device.DestroyBuffer(srcBuf)

	dstBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "composite_dst", Size: dstSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create dst buffer: %w", err)
	}
	defer c.device.DestroyBuffer(dstBuf)

	stagingBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "composite_staging", Size: dstSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(stagingBuf)

	// Straight RGBA bytes are already little-endian u32 texels; upload as is.
	var off uint64
	for _, s := range srcs {
		c.queue.WriteBuffer(srcBuf, off, s)
		off += uint64(len(s))
	}
	c.queue.WriteBuffer(dstBuf, 0, dst)

	uniformBufs, bindGroups, err := c.createPassBindings(w, h, passes, srcBuf, uint64(srcTotal), dstBuf, dstSize)
	if err != nil {
		c.cleanupBindings(uniformBufs, bindGroups)
		return err
	}
	defer c.cleanupBindings(uniformBufs, bindGroups)

	return c.encodePasses(bindGroups, dstBuf, stagingBuf, uint32(w), uint32(h), dstSize, dst)
}

// createPassBindings creates one uniform buffer and one bind group per
// blend pass. Every bind group shares the same sources and dst buffers.
func (c *Compositor) createPassBindings(
	w, h int, passes []pass,
	srcBuf hal.Buffer, srcSize uint64,
	dstBuf hal.Buffer, dstSize uint64,
) ([]hal.Buffer, []hal.BindGroup, error) {
	paramSize := uint64(unsafe.Sizeof(passParams{}))
	uniformBufs := make([]hal.Buffer, 0, len(passes))
	bindGroups := make([]hal.BindGroup, 0, len(passes))

	for i, p := range passes {
		params := passParams{
			Width: uint32(w), Height: uint32(h),
			SrcOffset: p.srcOffset,
			Mode:      p.mode,
			Opacity:   p.opacity,
			Flags:     p.flags,
		}
		paramsBytes := structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)) //nolint:gosec // safe struct access

		ub, err := c.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "composite_params", Size: paramSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return uniformBufs, bindGroups, fmt.Errorf("create uniform buffer %d: %w", i, err)
		}
		uniformBufs = append(uniformBufs, ub)
		c.queue.WriteBuffer(ub, 0, paramsBytes)

		bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "composite_bind", Layout: c.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: paramSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: srcSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: dstSize}},
			},
		})
		if err != nil {
			return uniformBufs, bindGroups, fmt.Errorf("create bind group %d: %w", i, err)
		}
		bindGroups = append(bindGroups, bg)
	}

	return uniformBufs, bindGroups, nil
}

// cleanupBindings destroys uniform buffers and bind groups.
func (c *Compositor) cleanupBindings(uniformBufs []hal.Buffer, bindGroups []hal.BindGroup) {
	for _, bg := range bindGroups {
		if bg != nil {
			c.device.DestroyBindGroup(bg)
		}
	}
	for _, ub := range uniformBufs {
		if ub != nil {
			c.device.DestroyBuffer(ub)
		}
	}
}

// encodePasses records one compute pass per bind group in a single command
// encoder. Implicit storage buffer barriers between passes keep the
// compositing order.
func (c *Compositor) encodePasses(
	bindGroups []hal.BindGroup, dstBuf, stagingBuf hal.Buffer,
	w, h uint32, dstSize uint64, dst []byte,
) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "composite_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("composite"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	for _, bg := range bindGroups {
		computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "blend_pass"})
		computePass.SetPipeline(c.pipeline)
		computePass.SetBindGroup(0, bg, nil)
		computePass.Dispatch((w+7)/8, (h+7)/8, 1)
		computePass.End()
	}

	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: dstSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)
	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if err := c.queue.ReadBuffer(stagingBuf, 0, dst); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// opacityByte mirrors the software compositor's opacity rounding so GPU
// and CPU composites agree byte for byte.
func opacityByte(v float64) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}
