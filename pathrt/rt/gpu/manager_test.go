package gpu

import (
	"errors"
	"testing"

	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	id       int
	count    int
	stride   int
	released bool
	data     []byte
}

func (b *fakeBuffer) Count() int  { return b.count }
func (b *fakeBuffer) Stride() int { return b.stride }
func (b *fakeBuffer) Release()    { b.released = true }

type fakeDevice struct {
	allocated []*fakeBuffer
	writes    int
	failAlloc bool
	failWrite bool
	// strideOverride simulates a buffer created for an older record layout.
	strideOverride int
}

func (d *fakeDevice) Allocate(label string, count, stride int) (Buffer, error) {
	if d.failAlloc {
		return nil, errors.New("out of memory")
	}
	if d.strideOverride != 0 {
		stride = d.strideOverride
		d.strideOverride = 0
	}
	b := &fakeBuffer{id: len(d.allocated) + 1, count: count, stride: stride}
	d.allocated = append(d.allocated, b)
	return b, nil
}

func (d *fakeDevice) Write(buf Buffer, data []byte) error {
	if d.failWrite {
		return errors.New("device lost")
	}
	d.writes++
	buf.(*fakeBuffer).data = append([]byte(nil), data...)
	return nil
}

func sphereRecords(n int) []core.SphereRecord {
	recs := make([]core.SphereRecord, n)
	for i := range recs {
		recs[i].Radius = float32(i + 1)
	}
	return recs
}

func triangleRecords(n int) []core.TriangleRecord {
	recs := make([]core.TriangleRecord, n)
	for i := range recs {
		recs[i].V1 = [3]float32{float32(i), 1, 0}
	}
	return recs
}

func TestBufferManager_ReusesBufferWhileCountUnchanged(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	changed, err := m.SyncSpheres(sphereRecords(5))
	require.NoError(t, err)
	assert.True(t, changed)
	first := m.Spheres().Buffer

	for i := 0; i < 10; i++ {
		changed, err = m.SyncSpheres(sphereRecords(5))
		require.NoError(t, err)
		assert.False(t, changed)
	}

	assert.Same(t, first, m.Spheres().Buffer)
	assert.Equal(t, 1, m.Stats().Allocations)
	assert.Equal(t, 0, m.Stats().Releases)
	assert.Equal(t, 11, dev.writes)
	assert.Equal(t, 5, m.Spheres().Count)
}

func TestBufferManager_CountChangeReallocatesOnce(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncTriangles(triangleRecords(3))
	require.NoError(t, err)
	old := m.Triangles().Buffer.(*fakeBuffer)

	changed, err := m.SyncTriangles(triangleRecords(4))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, old.released)
	assert.Equal(t, 2, m.Stats().Allocations)
	assert.Equal(t, 1, m.Stats().Releases)

	changed, err = m.SyncTriangles(triangleRecords(4))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, m.Stats().Allocations)

	buf := m.Triangles().Buffer.(*fakeBuffer)
	assert.Len(t, buf.data, 4*core.TriangleRecordSize)
}

func TestBufferManager_StrideMismatchReallocates(t *testing.T) {
	dev := &fakeDevice{strideOverride: 32}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncSpheres(sphereRecords(2))
	require.NoError(t, err)
	require.Equal(t, 32, m.Spheres().Buffer.Stride())

	changed, err := m.SyncSpheres(sphereRecords(2))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, core.SphereRecordSize, m.Spheres().Buffer.Stride())
	assert.Equal(t, 2, m.Stats().Allocations)
}

func TestBufferManager_EmptyReleases(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncSpheres(sphereRecords(3))
	require.NoError(t, err)
	held := m.Spheres().Buffer.(*fakeBuffer)

	changed, err := m.SyncSpheres(nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, held.released)
	assert.True(t, m.Spheres().Empty())
	assert.Zero(t, m.Spheres().Count)

	changed, err = m.SyncSpheres(nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, m.Stats().Releases)
}

func TestBufferManager_ReleaseThenSyncAllocatesFresh(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncSpheres(sphereRecords(2))
	require.NoError(t, err)
	_, err = m.SyncTriangles(triangleRecords(2))
	require.NoError(t, err)

	m.Release()
	assert.True(t, m.Spheres().Empty())
	assert.True(t, m.Triangles().Empty())
	for _, b := range dev.allocated {
		assert.True(t, b.released)
	}

	changed, err := m.SyncSpheres(sphereRecords(2))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, m.Stats().Allocations)
}

func TestBufferManager_AllocationFailureLeavesNoBuffer(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncSpheres(sphereRecords(2))
	require.NoError(t, err)
	old := m.Spheres().Buffer.(*fakeBuffer)

	dev.failAlloc = true
	changed, err := m.SyncSpheres(sphereRecords(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.True(t, changed)
	assert.True(t, old.released)
	assert.Equal(t, Binding{}, m.Spheres())

	dev.failAlloc = false
	_, err = m.SyncSpheres(sphereRecords(3))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Spheres().Count)
}

func TestBufferManager_WriteFailureLeavesNoBuffer(t *testing.T) {
	dev := &fakeDevice{failWrite: true}
	m := NewBufferManager(dev, nil)

	_, err := m.SyncTriangles(triangleRecords(1))
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.True(t, m.Triangles().Empty())
	assert.True(t, dev.allocated[0].released)
}

func TestBufferManager_UploadsEncodedRecords(t *testing.T) {
	dev := &fakeDevice{}
	m := NewBufferManager(dev, nil)

	recs := sphereRecords(4)
	_, err := m.SyncSpheres(recs)
	require.NoError(t, err)

	buf := m.Spheres().Buffer.(*fakeBuffer)
	assert.Equal(t, core.EncodeSphereRecords(recs), buf.data)
	assert.Equal(t, 4*core.SphereRecordSize, m.Stats().BytesWritten)
}
