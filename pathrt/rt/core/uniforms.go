package core

// KernelParamsSize is the size of the kernel uniform block.
//
//	struct Params {
//	  cam_local_to_world: mat4x4<f32>, // 0
//	  view_params: vec4<f32>,          // 64  half_w, half_h, ref_dist, 0
//	  num_pixels: vec2<f32>,           // 80
//	  num_spheres: u32,                // 88
//	  num_triangles: u32,              // 92
//	  max_bounces: u32,                // 96
//	  rays_per_pixel: u32,             // 100
//	  frame_index: u32,                // 104
//	  _pad: u32,                       // 108
//	} -> 112 bytes
const KernelParamsSize = 112

// KernelParams is the scalar state uploaded once per traced frame.
type KernelParams struct {
	View         ViewParams
	NumPixels    [2]float32
	NumSpheres   uint32
	NumTriangles uint32
	MaxBounces   uint32
	RaysPerPixel uint32
	FrameIndex   uint32
}

func (p KernelParams) Encode() []byte {
	buf := make([]byte, 0, KernelParamsSize)
	buf = appendMat4(buf, p.View.LocalToWorld)
	buf = appendFloat32(buf, p.View.HalfWidth)
	buf = appendFloat32(buf, p.View.HalfHeight)
	buf = appendFloat32(buf, p.View.ReferenceDistance)
	buf = appendFloat32(buf, 0)
	buf = appendFloat32(buf, p.NumPixels[0])
	buf = appendFloat32(buf, p.NumPixels[1])
	buf = appendUint32(buf, p.NumSpheres)
	buf = appendUint32(buf, p.NumTriangles)
	buf = appendUint32(buf, p.MaxBounces)
	buf = appendUint32(buf, p.RaysPerPixel)
	buf = appendUint32(buf, p.FrameIndex)
	buf = appendUint32(buf, 0)
	return buf
}
