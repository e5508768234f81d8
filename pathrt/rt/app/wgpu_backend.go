package app

import (
	"fmt"

	"github.com/gekko3d/lumen/logging"
	"github.com/gekko3d/lumen/pathrt/rt/gpu"
	"github.com/gekko3d/lumen/pathrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

const TargetFormat = wgpu.TextureFormatRGBA8Unorm

// WgpuTarget is an RGBA8 texture usable as kernel output, copy source or
// destination, and blit input.
type WgpuTarget struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	width   uint32
	height  uint32
}

func NewWgpuTarget(device *wgpu.Device, label string, w, h uint32) (*WgpuTarget, error) {
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrInvalidTarget, label, w, h)
	}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        TargetFormat,
		Usage: wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &WgpuTarget{Texture: tex, View: view, width: w, height: h}, nil
}

func (t *WgpuTarget) Width() uint32  { return t.width }
func (t *WgpuTarget) Height() uint32 { return t.height }

func (t *WgpuTarget) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// WgpuBackend implements Backend on a WebGPU device and presents finished
// frames to a surface.
type WgpuBackend struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Logger logging.Logger

	buffers *gpu.WgpuDevice

	blitPipeline *wgpu.RenderPipeline
	sampler      *wgpu.Sampler
	blitGroup    *wgpu.BindGroup
	blitSource   *WgpuTarget
}

func NewWgpuBackend(device *wgpu.Device, surfaceFormat wgpu.TextureFormat, logger logging.Logger) (*WgpuBackend, error) {
	b := &WgpuBackend{
		Device:  device,
		Queue:   device.GetQueue(),
		Logger:  logging.OrNop(logger),
		buffers: gpu.NewWgpuDevice(device),
	}

	blitModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlitWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer blitModule.Release()

	b.blitPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     blitModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     blitModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	b.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		b.blitPipeline.Release()
		return nil, err
	}
	return b, nil
}

func (b *WgpuBackend) BufferDevice() gpu.Device { return b.buffers }

func (b *WgpuBackend) NewKernel() (Kernel, error) {
	k, err := newWgpuKernel(b)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// Copy copies src into dst. A nil source means dst already holds the image
// to show, so nothing is copied.
func (b *WgpuBackend) Copy(src, dst Target) error {
	if src == nil {
		return nil
	}
	s, ok := src.(*WgpuTarget)
	if !ok || s == nil || s.Texture == nil {
		return fmt.Errorf("%w: copy source", ErrInvalidTarget)
	}
	d, ok := dst.(*WgpuTarget)
	if !ok || d == nil || d.Texture == nil {
		return fmt.Errorf("%w: copy destination", ErrInvalidTarget)
	}
	if s == d {
		return nil
	}

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	encoder.CopyTextureToTexture(s.Texture.AsImageCopy(), d.Texture.AsImageCopy(), &wgpu.Extent3D{
		Width:              min(s.width, d.width),
		Height:             min(s.height, d.height),
		DepthOrArrayLayers: 1,
	})

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	b.Queue.Submit(cmd)
	return nil
}

// Clear fills a target with a solid color.
func (b *WgpuBackend) Clear(dst *WgpuTarget, color wgpu.Color) error {
	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst.View,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: color,
		}},
	})
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	b.Queue.Submit(cmd)
	return nil
}

// Present draws src over the whole surface view.
func (b *WgpuBackend) Present(src *WgpuTarget, surfaceView *wgpu.TextureView) error {
	if b.blitGroup == nil || b.blitSource != src {
		if b.blitGroup != nil {
			b.blitGroup.Release()
			b.blitGroup = nil
		}
		bg, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Blit BG",
			Layout: b.blitPipeline.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: src.View},
				{Binding: 1, Sampler: b.sampler},
			},
		})
		if err != nil {
			return err
		}
		b.blitGroup = bg
		b.blitSource = src
	}

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       surfaceView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(b.blitPipeline)
	pass.SetBindGroup(0, b.blitGroup, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	b.Queue.Submit(cmd)
	return nil
}

// ForgetTarget drops cached state referring to t before it is released.
func (b *WgpuBackend) ForgetTarget(t *WgpuTarget) {
	if b.blitSource == t && b.blitGroup != nil {
		b.blitGroup.Release()
		b.blitGroup = nil
		b.blitSource = nil
	}
}

func (b *WgpuBackend) Release() {
	if b.blitGroup != nil {
		b.blitGroup.Release()
		b.blitGroup = nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.blitPipeline != nil {
		b.blitPipeline.Release()
		b.blitPipeline = nil
	}
}
