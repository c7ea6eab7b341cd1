// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements the wgpu compute backend. All working buffers are
// device resident and persist across frames; a frame is one coordinate
// upload, one compute dispatch, and one staging readback.
package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Vulkan is the only backend the standalone compute path targets.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/mandel"
	"github.com/gogpu/mandel/palette"
)

//go:embed mandelbrot.wgsl
var shaderSource string

const (
	// workgroupSize matches @workgroup_size in mandelbrot.wgsl.
	workgroupSize = 256

	// paramsSize is the byte size of the Params uniform in mandelbrot.wgsl.
	paramsSize = 32

	// fenceTimeout is the maximum time to wait for a frame to complete.
	fenceTimeout = 5 * time.Second
)

// frameParams mirrors the Params uniform in mandelbrot.wgsl.
type frameParams struct {
	width      uint32
	height     uint32
	maxIter    uint32
	palette    uint32
	colorPhase float32
}

func (p frameParams) toBytes() []byte {
	buf := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.width)
	le.PutUint32(buf[4:8], p.height)
	le.PutUint32(buf[8:12], p.maxIter)
	le.PutUint32(buf[12:16], p.palette)
	le.PutUint32(buf[16:20], math.Float32bits(p.colorPhase))
	return buf
}

// Dispatcher renders frames on a standalone Vulkan compute device. It owns
// the device, the pipeline, and all per-viewport buffers; the pipeline is
// built once at construction, buffers are reallocated only on Resize.
//
// Coordinates are uploaded as f32 (WGSL has no f64), so very deep zooms
// pixelate earlier on this backend than on the CPU.
type Dispatcher struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	module         hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline

	width  int
	height int

	paramsBuf  hal.Buffer
	xsBuf      hal.Buffer
	ysBuf      hal.Buffer
	iterBuf    hal.Buffer
	pixelBuf   hal.Buffer
	stagingBuf hal.Buffer
	bindGroup  hal.BindGroup

	// Host-side scratch reused every frame.
	xsUpload []byte
	ysUpload []byte
	readback []byte
}

// NewDispatcher opens a Vulkan compute device and builds the escape-time
// pipeline and buffers for the given viewport.
func NewDispatcher(width, height int) (*Dispatcher, error) {
	d := &Dispatcher{}
	if err := d.initDevice(); err != nil {
		return nil, err
	}
	if err := d.initPipeline(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.allocBuffers(width, height); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Name identifies the backend in logs.
func (d *Dispatcher) Name() string { return "wgpu-compute" }

func (d *Dispatcher) initDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("mandel gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("mandel gpu: create instance: %w", err)
	}
	d.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("mandel gpu: no GPU adapters found")
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
		return fmt.Errorf("mandel gpu: open device: %w", err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue

	mandel.Logger().Info("mandel gpu: device opened", "adapter", selected.Info.Name)
	return nil
}

func (d *Dispatcher) initPipeline() error {
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mandelbrot",
		Source: hal.ShaderSource{WGSL: shaderSource},
	})
	if err != nil {
		return fmt.Errorf("mandel gpu: create shader module: %w", err)
	}
	d.module = module

	// @binding(0) uniform params
	// @binding(1) storage(read) xs
	// @binding(2) storage(read) ys
	// @binding(3) storage(read_write) iterations
	// @binding(4) storage(read_write) pixels
	uniform := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "mandelbrot_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0), storageRO(1), storageRO(2), storageRW(3), storageRW(4),
		},
	})
	if err != nil {
		return fmt.Errorf("mandel gpu: create bind group layout: %w", err)
	}
	d.bgLayout = bgLayout

	pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "mandelbrot_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		return fmt.Errorf("mandel gpu: create pipeline layout: %w", err)
	}
	d.pipelineLayout = pipelineLayout

	pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "mandelbrot",
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("mandel gpu: create compute pipeline: %w", err)
	}
	d.pipeline = pipeline

	mandel.Logger().Debug("mandel gpu: pipeline created", "shader_bytes", len(shaderSource))
	return nil
}

func (d *Dispatcher) allocBuffers(width, height int) error {
	pixels := uint64(width) * uint64(height)

	storageCPU := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	storageOut := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	stagingRead := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}
	specs := []bufSpec{
		{&d.paramsBuf, "mandel_params", paramsSize, uniformCPU},
		{&d.xsBuf, "mandel_xs", uint64(width) * 4, storageCPU},
		{&d.ysBuf, "mandel_ys", uint64(height) * 4, storageCPU},
		{&d.iterBuf, "mandel_iterations", pixels * 4, gputypes.BufferUsageStorage},
		{&d.pixelBuf, "mandel_pixels", pixels * 4, storageOut},
		{&d.stagingBuf, "mandel_staging", pixels * 4, stagingRead},
	}
	for _, s := range specs {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  s.size,
			Usage: s.usage,
		})
		if err != nil {
			d.freeBuffers()
			return fmt.Errorf("mandel gpu: create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}

	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "mandelbrot_bg",
		Layout: d.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			entry(0, d.paramsBuf),
			entry(1, d.xsBuf),
			entry(2, d.ysBuf),
			entry(3, d.iterBuf),
			entry(4, d.pixelBuf),
		},
	})
	if err != nil {
		d.freeBuffers()
		return fmt.Errorf("mandel gpu: create bind group: %w", err)
	}
	d.bindGroup = bg

	d.width = width
	d.height = height
	d.xsUpload = make([]byte, width*4)
	d.ysUpload = make([]byte, height*4)
	d.readback = make([]byte, pixels*4)

	mandel.Logger().Debug("mandel gpu: buffers allocated",
		"viewport", fmt.Sprintf("%dx%d", width, height),
		"pixel_buf_bytes", pixels*4)
	return nil
}

func (d *Dispatcher) freeBuffers() {
	if d.bindGroup != nil {
		d.device.DestroyBindGroup(d.bindGroup)
		d.bindGroup = nil
	}
	for _, buf := range []*hal.Buffer{
		&d.paramsBuf, &d.xsBuf, &d.ysBuf, &d.iterBuf, &d.pixelBuf, &d.stagingBuf,
	} {
		if *buf != nil {
			d.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}

// Resize drops and reallocates every size-dependent buffer. The pipeline
// survives; only buffer handles change.
func (d *Dispatcher) Resize(width, height int) error {
	if width == d.width && height == d.height {
		return nil
	}
	d.freeBuffers()
	return d.allocBuffers(width, height)
}

// Render computes one full frame: upload the coordinate arrays and frame
// parameters, run one dispatch over width*height invocations, copy the
// pixel buffer to staging, and read it back into dst as packed RGB.
func (d *Dispatcher) Render(xs, ys []float64, bound int32, pal palette.Palette, shift float64, dst []byte) error {
	if len(xs) != d.width || len(ys) != d.height {
		return fmt.Errorf("mandel gpu: coordinate arrays %dx%d do not match viewport %dx%d",
			len(xs), len(ys), d.width, d.height)
	}

	le := binary.LittleEndian
	for i, v := range xs {
		le.PutUint32(d.xsUpload[i*4:], math.Float32bits(float32(v)))
	}
	for i, v := range ys {
		le.PutUint32(d.ysUpload[i*4:], math.Float32bits(float32(v)))
	}
	params := frameParams{
		width:      uint32(d.width),
		height:     uint32(d.height),
		maxIter:    uint32(bound),
		palette:    uint32(pal),
		colorPhase: float32(shift),
	}
	d.queue.WriteBuffer(d.paramsBuf, 0, params.toBytes())
	d.queue.WriteBuffer(d.xsBuf, 0, d.xsUpload)
	d.queue.WriteBuffer(d.ysBuf, 0, d.ysUpload)

	if err := d.dispatchFrame(); err != nil {
		return err
	}

	if err := d.queue.ReadBuffer(d.stagingBuf, 0, d.readback); err != nil {
		return fmt.Errorf("mandel gpu: readback: %w", err)
	}
	// Staging holds [r, g, b, 255] per pixel; dst wants tightly packed RGB.
	for i := 0; i < d.width*d.height; i++ {
		copy(dst[i*3:i*3+3], d.readback[i*4:i*4+3])
	}
	return nil
}

func (d *Dispatcher) dispatchFrame() error {
	pixels := uint32(d.width * d.height)
	wgCount := (pixels + workgroupSize - 1) / workgroupSize

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "mandelbrot_frame",
	})
	if err != nil {
		return fmt.Errorf("mandel gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mandelbrot_frame"); err != nil {
		return fmt.Errorf("mandel gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mandelbrot"})
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, d.bindGroup, nil)
	pass.Dispatch(wgCount, 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(d.pixelBuf, d.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(pixels) * 4},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("mandel gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("mandel gpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("mandel gpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("mandel gpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("mandel gpu: GPU timeout after %v", fenceTimeout)
	}
	return nil
}

// Close releases buffers, pipeline objects, and the device.
func (d *Dispatcher) Close() {
	if d.device != nil {
		d.freeBuffers()
		if d.pipeline != nil {
			d.device.DestroyComputePipeline(d.pipeline)
			d.pipeline = nil
		}
		if d.pipelineLayout != nil {
			d.device.DestroyPipelineLayout(d.pipelineLayout)
			d.pipelineLayout = nil
		}
		if d.bgLayout != nil {
			d.device.DestroyBindGroupLayout(d.bgLayout)
			d.bgLayout = nil
		}
		if d.module != nil {
			d.device.DestroyShaderModule(d.module)
			d.module = nil
		}
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
