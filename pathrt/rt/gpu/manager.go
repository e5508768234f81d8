package gpu

import (
	"fmt"

	"github.com/gekko3d/lumen/logging"
	"github.com/gekko3d/lumen/pathrt/rt/core"
)

// Binding is what the kernel binds for one record sequence. A zero Binding
// means no buffer is held and the count is 0.
type Binding struct {
	Buffer Buffer
	Count  int
}

func (b Binding) Empty() bool { return b.Buffer == nil }

type Stats struct {
	Allocations  int
	Releases     int
	Writes       int
	BytesWritten int
}

type slot struct {
	label   string
	stride  int
	buf     Buffer
	binding Binding
}

// BufferManager keeps one device buffer per record kind and reuses it while
// the record count and layout stay the same.
type BufferManager struct {
	Device Device
	Logger logging.Logger

	spheres   slot
	triangles slot

	scratch []byte
	stats   Stats
}

func NewBufferManager(device Device, logger logging.Logger) *BufferManager {
	return &BufferManager{
		Device:    device,
		Logger:    logging.OrNop(logger),
		spheres:   slot{label: "Sphere Records", stride: core.SphereRecordSize},
		triangles: slot{label: "Triangle Records", stride: core.TriangleRecordSize},
	}
}

// SyncSpheres uploads the sphere records. changed reports whether the
// binding now refers to a different buffer (or none).
func (m *BufferManager) SyncSpheres(records []core.SphereRecord) (bool, error) {
	m.scratch = core.AppendSphereRecords(m.scratch[:0], records)
	return m.sync(&m.spheres, len(records), m.scratch)
}

func (m *BufferManager) SyncTriangles(records []core.TriangleRecord) (bool, error) {
	m.scratch = core.AppendTriangleRecords(m.scratch[:0], records)
	return m.sync(&m.triangles, len(records), m.scratch)
}

func (m *BufferManager) Spheres() Binding   { return m.spheres.binding }
func (m *BufferManager) Triangles() Binding { return m.triangles.binding }

func (m *BufferManager) Stats() Stats { return m.stats }

// Release drops both buffers. The next sync allocates from scratch.
func (m *BufferManager) Release() {
	m.release(&m.spheres)
	m.release(&m.triangles)
}

func (m *BufferManager) sync(s *slot, count int, data []byte) (bool, error) {
	if count == 0 {
		if s.buf == nil {
			return false, nil
		}
		m.release(s)
		return true, nil
	}

	if len(data) != count*s.stride {
		m.release(s)
		return true, fmt.Errorf("%w: %s: %d bytes for %d records of %d", ErrInvalidBuffer, s.label, len(data), count, s.stride)
	}

	changed := false
	if s.buf == nil || s.buf.Count() != count || s.buf.Stride() != s.stride {
		m.release(s)

		buf, err := m.Device.Allocate(s.label, count, s.stride)
		if err != nil {
			return true, fmt.Errorf("%w: %s (%d x %d bytes): %v", ErrAllocationFailed, s.label, count, s.stride, err)
		}
		if buf == nil {
			return true, fmt.Errorf("%w: %s: device returned no buffer", ErrAllocationFailed, s.label)
		}
		m.stats.Allocations++
		m.Logger.Debugf("allocated %s: %d records (%d bytes)", s.label, count, count*s.stride)

		s.buf = buf
		changed = true
	}

	if err := m.Device.Write(s.buf, data); err != nil {
		m.release(s)
		return true, fmt.Errorf("%w: %s: %v", ErrWriteFailed, s.label, err)
	}
	m.stats.Writes++
	m.stats.BytesWritten += len(data)

	s.binding = Binding{Buffer: s.buf, Count: count}
	return changed, nil
}

func (m *BufferManager) release(s *slot) {
	if s.buf != nil {
		s.buf.Release()
		m.stats.Releases++
		m.Logger.Debugf("released %s", s.label)
	}
	s.buf = nil
	s.binding = Binding{}
}
