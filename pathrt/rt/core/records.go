package core

import "github.com/go-gl/mathgl/mgl32"

// Record sizes in bytes. The kernel reads both structs as arrays of
// 16-byte aligned vec4 groups.
const (
	SphereRecordSize   = 48
	TriangleRecordSize = 96
)

// SphereRecord is the device-side layout of one sphere.
type SphereRecord struct {
	Position         [3]float32
	Radius           float32
	Color            [3]float32
	Pad0             float32
	Emission         [3]float32
	EmissionStrength float32
}

// TriangleRecord is the device-side layout of one world-space triangle.
type TriangleRecord struct {
	V0               [3]float32
	Pad0             float32
	V1               [3]float32
	Pad1             float32
	V2               [3]float32
	Pad2             float32
	Normal           [3]float32
	Pad3             float32
	Color            [3]float32
	Pad4             float32
	Emission         [3]float32
	EmissionStrength float32
}

func NewSphereRecord(s Sphere) SphereRecord {
	return SphereRecord{
		Position:         s.Position,
		Radius:           s.Radius,
		Color:            s.Material.Color,
		Emission:         s.Material.Emission,
		EmissionStrength: s.Material.EmissionStrength,
	}
}

func NewTriangleRecord(v0, v1, v2, normal mgl32.Vec3, m Material) TriangleRecord {
	return TriangleRecord{
		V0:               v0,
		V1:               v1,
		V2:               v2,
		Normal:           normal,
		Color:            m.Color,
		Emission:         m.Emission,
		EmissionStrength: m.EmissionStrength,
	}
}

// AppendSphereRecords encodes records little-endian. Padding words are
// always written as zero.
func AppendSphereRecords(dst []byte, records []SphereRecord) []byte {
	for i := range records {
		r := &records[i]
		dst = appendVec3(dst, r.Position, r.Radius)
		dst = appendVec3(dst, r.Color, 0)
		dst = appendVec3(dst, r.Emission, r.EmissionStrength)
	}
	return dst
}

// AppendTriangleRecords encodes records little-endian. Padding words are
// always written as zero.
func AppendTriangleRecords(dst []byte, records []TriangleRecord) []byte {
	for i := range records {
		r := &records[i]
		dst = appendVec3(dst, r.V0, 0)
		dst = appendVec3(dst, r.V1, 0)
		dst = appendVec3(dst, r.V2, 0)
		dst = appendVec3(dst, r.Normal, 0)
		dst = appendVec3(dst, r.Color, 0)
		dst = appendVec3(dst, r.Emission, r.EmissionStrength)
	}
	return dst
}

func EncodeSphereRecords(records []SphereRecord) []byte {
	return AppendSphereRecords(make([]byte, 0, len(records)*SphereRecordSize), records)
}

func EncodeTriangleRecords(records []TriangleRecord) []byte {
	return AppendTriangleRecords(make([]byte, 0, len(records)*TriangleRecordSize), records)
}
