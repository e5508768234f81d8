package app

import (
	"github.com/gekko3d/lumen/pathrt/rt/collect"
	"github.com/gekko3d/lumen/pathrt/rt/core"
)

const (
	DefaultMaxBounces   = 3
	DefaultRaysPerPixel = 10
	DefaultWidth        = 1280
	DefaultHeight       = 1080
)

// Config holds the shared tracer parameters.
type Config struct {
	MaxSpheres   int
	MaxTriangles int
	MaxBounces   uint32
	RaysPerPixel uint32

	// Initial output resolution. The dispatcher always traces the full
	// destination target, whatever its size.
	Width  uint32
	Height uint32

	// TraceInPreview enables tracing for preview views as well as the
	// primary view.
	TraceInPreview bool

	Reference core.ReferenceConvention

	// Accumulate averages successive frames while the camera and scene
	// are unchanged.
	Accumulate bool
}

func DefaultConfig() Config {
	return Config{
		MaxSpheres:     collect.DefaultMaxSpheres,
		MaxTriangles:   collect.DefaultMaxTriangles,
		MaxBounces:     DefaultMaxBounces,
		RaysPerPixel:   DefaultRaysPerPixel,
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		TraceInPreview: true,
		Reference:      core.ReferenceUnit,
		Accumulate:     true,
	}
}

// Normalize replaces zero numeric fields with defaults. Flags are left alone.
func (c Config) Normalize() Config {
	if c.MaxSpheres <= 0 {
		c.MaxSpheres = collect.DefaultMaxSpheres
	}
	if c.MaxTriangles <= 0 {
		c.MaxTriangles = collect.DefaultMaxTriangles
	}
	if c.MaxBounces == 0 {
		c.MaxBounces = DefaultMaxBounces
	}
	if c.RaysPerPixel == 0 {
		c.RaysPerPixel = DefaultRaysPerPixel
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	return c
}
