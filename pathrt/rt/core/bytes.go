package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func appendFloat32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

func appendUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// appendVec3 writes xyz followed by w, completing a 16-byte group.
func appendVec3(dst []byte, v [3]float32, w float32) []byte {
	dst = appendFloat32(dst, v[0])
	dst = appendFloat32(dst, v[1])
	dst = appendFloat32(dst, v[2])
	return appendFloat32(dst, w)
}

// appendMat4 writes a column-major matrix, matching WGSL mat4x4<f32>.
func appendMat4(dst []byte, m mgl32.Mat4) []byte {
	for _, v := range m {
		dst = appendFloat32(dst, v)
	}
	return dst
}
