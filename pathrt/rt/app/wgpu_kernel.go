package app

import (
	"fmt"

	"github.com/gekko3d/lumen/pathrt/rt/core"
	"github.com/gekko3d/lumen/pathrt/rt/gpu"
	"github.com/gekko3d/lumen/pathrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

const workgroupSize = 8

// wgpuKernel owns the compute pipeline and everything bound next to the
// geometry buffers: uniforms, placeholders, and the accumulation buffer.
type wgpuKernel struct {
	backend *WgpuBackend

	pipeline *wgpu.ComputePipeline
	uniforms *wgpu.Buffer

	// Bound when the matching geometry binding is empty; storage bindings
	// cannot be zero-sized.
	emptySpheres   *wgpu.Buffer
	emptyTriangles *wgpu.Buffer

	accum       *wgpu.Buffer
	accumPixels uint64

	spheres   gpu.Binding
	triangles gpu.Binding

	bindGroup   *wgpu.BindGroup
	boundTarget *WgpuTarget
}

func newWgpuKernel(b *WgpuBackend) (*wgpuKernel, error) {
	k := &wgpuKernel{backend: b}

	module, err := b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PathTrace CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PathTraceWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	k.pipeline, err = b.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "PathTrace Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, err
	}

	k.uniforms, err = k.createBuffer("PathTrace Params", core.KernelParamsSize, wgpu.BufferUsageUniform)
	if err != nil {
		k.Release()
		return nil, err
	}
	k.emptySpheres, err = k.createBuffer("Empty Spheres", core.SphereRecordSize, wgpu.BufferUsageStorage)
	if err != nil {
		k.Release()
		return nil, err
	}
	k.emptyTriangles, err = k.createBuffer("Empty Triangles", core.TriangleRecordSize, wgpu.BufferUsageStorage)
	if err != nil {
		k.Release()
		return nil, err
	}
	return k, nil
}

func (k *wgpuKernel) createBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return k.backend.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
}

func (k *wgpuKernel) BindGeometry(spheres, triangles gpu.Binding) error {
	k.spheres = spheres
	k.triangles = triangles
	k.dropBindGroup()
	return nil
}

func (k *wgpuKernel) Dispatch(params core.KernelParams, dst Target) error {
	target, ok := dst.(*WgpuTarget)
	if !ok || target.View == nil {
		return fmt.Errorf("%w: kernel output", ErrInvalidTarget)
	}

	pixels := uint64(target.width) * uint64(target.height)
	if k.accum == nil || k.accumPixels != pixels {
		if k.accum != nil {
			k.accum.Release()
			k.accum = nil
		}
		accum, err := k.createBuffer("Accumulation", pixels*16, wgpu.BufferUsageStorage)
		if err != nil {
			return err
		}
		k.accum = accum
		k.accumPixels = pixels
		k.dropBindGroup()
		// A fresh accumulation buffer holds nothing to blend with.
		params.FrameIndex = 0
	}

	if k.bindGroup == nil || k.boundTarget != target {
		if err := k.buildBindGroup(target); err != nil {
			return err
		}
	}

	if err := k.backend.Queue.WriteBuffer(k.uniforms, 0, params.Encode()); err != nil {
		return err
	}

	encoder, err := k.backend.Device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, k.bindGroup, nil)
	pass.DispatchWorkgroups((target.width+workgroupSize-1)/workgroupSize, (target.height+workgroupSize-1)/workgroupSize, 1)
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	k.backend.Queue.Submit(cmd)
	return nil
}

func (k *wgpuKernel) buildBindGroup(target *WgpuTarget) error {
	k.dropBindGroup()

	sphereBuf, _ := gpu.RawBuffer(k.spheres)
	if sphereBuf == nil {
		sphereBuf = k.emptySpheres
	}
	triangleBuf, _ := gpu.RawBuffer(k.triangles)
	if triangleBuf == nil {
		triangleBuf = k.emptyTriangles
	}

	bg, err := k.backend.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PathTrace BG",
		Layout: k.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: k.uniforms, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: sphereBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: triangleBuf, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: target.View},
			{Binding: 4, Buffer: k.accum, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	k.bindGroup = bg
	k.boundTarget = target
	return nil
}

func (k *wgpuKernel) dropBindGroup() {
	if k.bindGroup != nil {
		k.bindGroup.Release()
		k.bindGroup = nil
	}
	k.boundTarget = nil
}

func (k *wgpuKernel) Release() {
	k.dropBindGroup()
	for _, buf := range []**wgpu.Buffer{&k.uniforms, &k.emptySpheres, &k.emptyTriangles, &k.accum} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if k.pipeline != nil {
		k.pipeline.Release()
		k.pipeline = nil
	}
	k.spheres = gpu.Binding{}
	k.triangles = gpu.Binding{}
}
