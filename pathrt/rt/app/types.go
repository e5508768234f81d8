package app

import (
	"errors"

	"github.com/gekko3d/lumen/pathrt/rt/collect"
	"github.com/gekko3d/lumen/pathrt/rt/core"
	"github.com/gekko3d/lumen/pathrt/rt/gpu"
)

var (
	ErrKernelUnavailable = errors.New("app: tracing kernel unavailable")
	ErrInvalidTarget     = errors.New("app: invalid render target")
)

// Mode is the per-frame dispatch decision.
type Mode int

const (
	ModePassthrough Mode = iota
	ModeTracing
)

func (m Mode) String() string {
	if m == ModeTracing {
		return "tracing"
	}
	return "passthrough"
}

// ViewKind distinguishes the primary view from preview contexts.
type ViewKind int

const (
	ViewPrimary ViewKind = iota
	ViewPreview
)

// Target is an image the kernel writes or the passthrough copies between.
type Target interface {
	Width() uint32
	Height() uint32
}

// Frame is everything RenderFrame needs for one frame.
type Frame struct {
	View        ViewKind
	Camera      core.Camera
	Scene       collect.Scene
	Source      Target // nil: the destination already holds the previous image
	Destination Target
}

// Kernel is the device-side tracing program plus the state it binds.
type Kernel interface {
	BindGeometry(spheres, triangles gpu.Binding) error
	Dispatch(params core.KernelParams, dst Target) error
	Release()
}

// Backend provides device resources to the dispatcher.
type Backend interface {
	BufferDevice() gpu.Device
	NewKernel() (Kernel, error)
	Copy(src, dst Target) error
}
