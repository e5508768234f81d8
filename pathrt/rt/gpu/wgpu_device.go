package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WgpuBuffer is a storage buffer created by WgpuDevice.
type WgpuBuffer struct {
	buf    *wgpu.Buffer
	count  int
	stride int
}

func (b *WgpuBuffer) Count() int  { return b.count }
func (b *WgpuBuffer) Stride() int { return b.stride }

// Raw returns the underlying handle, nil once released.
func (b *WgpuBuffer) Raw() *wgpu.Buffer { return b.buf }

func (b *WgpuBuffer) Size() uint64 { return uint64(b.count * b.stride) }

func (b *WgpuBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// WgpuDevice allocates storage buffers on a WebGPU device.
type WgpuDevice struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
}

func NewWgpuDevice(device *wgpu.Device) *WgpuDevice {
	return &WgpuDevice{
		Device: device,
		Queue:  device.GetQueue(),
	}
}

func (d *WgpuDevice) Allocate(label string, count, stride int) (Buffer, error) {
	if count <= 0 || stride <= 0 || stride%4 != 0 {
		return nil, fmt.Errorf("%w: %d records of %d bytes", ErrInvalidBuffer, count, stride)
	}
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(count * stride),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	return &WgpuBuffer{buf: buf, count: count, stride: stride}, nil
}

func (d *WgpuDevice) Write(buf Buffer, data []byte) error {
	wb, ok := buf.(*WgpuBuffer)
	if !ok || wb.buf == nil {
		return ErrInvalidBuffer
	}
	if uint64(len(data)) > wb.Size() {
		return fmt.Errorf("%w: %d bytes into %d byte buffer", ErrInvalidBuffer, len(data), wb.Size())
	}
	if len(data) == 0 {
		return nil
	}
	return d.Queue.WriteBuffer(wb.buf, 0, data)
}

// RawBuffer unwraps a binding's buffer for bind group construction.
func RawBuffer(b Binding) (*wgpu.Buffer, uint64) {
	wb, ok := b.Buffer.(*WgpuBuffer)
	if !ok || wb.buf == nil {
		return nil, 0
	}
	return wb.buf, wb.Size()
}
