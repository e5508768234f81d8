package app

import (
	"fmt"
	"hash/fnv"

	"github.com/gekko3d/lumen/logging"
	"github.com/gekko3d/lumen/pathrt/rt/collect"
	"github.com/gekko3d/lumen/pathrt/rt/core"
	"github.com/gekko3d/lumen/pathrt/rt/gpu"
)

// Dispatcher runs the per-frame trace-or-passthrough cycle. It owns the
// kernel handle and the geometry buffers. Not safe for concurrent use.
type Dispatcher struct {
	Config   Config
	Backend  Backend
	Logger   logging.Logger
	Profiler *Profiler

	collector *collect.Collector
	buffers   *gpu.BufferManager
	kernel    Kernel

	enabled   bool
	needsBind bool

	frameIndex  uint32
	fingerprint uint64
	scratch     []byte

	lastMode Mode
	lastErr  error
}

func NewDispatcher(cfg Config, backend Backend, logger logging.Logger) *Dispatcher {
	cfg = cfg.Normalize()
	logger = logging.OrNop(logger)
	return &Dispatcher{
		Config:    cfg,
		Backend:   backend,
		Logger:    logger,
		Profiler:  NewProfiler(),
		collector: collect.NewCollector(cfg.MaxSpheres, cfg.MaxTriangles),
		buffers:   gpu.NewBufferManager(backend.BufferDevice(), logger),
		enabled:   true,
		needsBind: true,
	}
}

func (d *Dispatcher) Enabled() bool      { return d.enabled }
func (d *Dispatcher) HasKernel() bool    { return d.kernel != nil }
func (d *Dispatcher) LastMode() Mode     { return d.lastMode }
func (d *Dispatcher) FrameIndex() uint32 { return d.frameIndex }

// LastError is the error that demoted the most recent frame, if any.
func (d *Dispatcher) LastError() error { return d.lastErr }

func (d *Dispatcher) Buffers() *gpu.BufferManager { return d.buffers }

// Collector exposes the diagnostics of the last collection.
func (d *Dispatcher) Collector() *collect.Collector { return d.collector }

// ShouldTrace is the per-frame mode decision.
func (d *Dispatcher) ShouldTrace(view ViewKind) bool {
	if !d.enabled {
		return false
	}
	return view == ViewPrimary || d.Config.TraceInPreview
}

// RenderFrame traces the frame or, when tracing is not engaged or fails,
// copies the source into the destination. Tracing failures are logged and
// absorbed; only a failing passthrough is returned.
func (d *Dispatcher) RenderFrame(frame Frame) (Mode, error) {
	d.lastErr = nil
	d.Profiler.Reset()

	if d.ShouldTrace(frame.View) {
		err := d.trace(frame)
		if err == nil {
			d.lastMode = ModeTracing
			return ModeTracing, nil
		}
		d.lastErr = err
		d.demote()
		d.Logger.Warnf("trace failed, passing frame through: %v", err)
	}

	d.lastMode = ModePassthrough
	d.Profiler.BeginScope("Passthrough")
	err := d.Backend.Copy(frame.Source, frame.Destination)
	d.Profiler.EndScope("Passthrough")
	if err != nil {
		return ModePassthrough, fmt.Errorf("passthrough: %w", err)
	}
	return ModePassthrough, nil
}

func (d *Dispatcher) trace(frame Frame) error {
	dst := frame.Destination
	if dst == nil || dst.Width() == 0 || dst.Height() == 0 {
		return ErrInvalidTarget
	}

	if d.kernel == nil {
		d.Profiler.BeginScope("Kernel Init")
		k, err := d.Backend.NewKernel()
		d.Profiler.EndScope("Kernel Init")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrKernelUnavailable, err)
		}
		d.kernel = k
		d.needsBind = true
		d.Logger.Infof("tracing kernel created")
	}

	w, h := dst.Width(), dst.Height()
	view := frame.Camera.ViewParams(float32(w)/float32(h), d.Config.Reference)

	d.Profiler.BeginScope("Collect")
	spheres, triangles := d.collector.Collect(frame.Scene)
	d.Profiler.EndScope("Collect")

	d.Profiler.BeginScope("Sync")
	sphChanged, err := d.buffers.SyncSpheres(spheres)
	if err != nil {
		d.Profiler.EndScope("Sync")
		return err
	}
	triChanged, err := d.buffers.SyncTriangles(triangles)
	d.Profiler.EndScope("Sync")
	if err != nil {
		return err
	}

	if sphChanged || triChanged || d.needsBind {
		if err := d.kernel.BindGeometry(d.buffers.Spheres(), d.buffers.Triangles()); err != nil {
			return fmt.Errorf("bind geometry: %w", err)
		}
		d.needsBind = false
	}

	fp := d.frameFingerprint(view, w, h, spheres, triangles)
	if !d.Config.Accumulate || fp != d.fingerprint {
		d.frameIndex = 0
		d.fingerprint = fp
	}

	params := core.KernelParams{
		View:         view,
		NumPixels:    [2]float32{float32(w), float32(h)},
		NumSpheres:   uint32(len(spheres)),
		NumTriangles: uint32(len(triangles)),
		MaxBounces:   d.Config.MaxBounces,
		RaysPerPixel: d.Config.RaysPerPixel,
		FrameIndex:   d.frameIndex,
	}

	d.Profiler.BeginScope("Dispatch")
	err = d.kernel.Dispatch(params, dst)
	d.Profiler.EndScope("Dispatch")
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	d.frameIndex++

	stats := d.buffers.Stats()
	d.Profiler.SetCount("Spheres", len(spheres))
	d.Profiler.SetCount("Triangles", len(triangles))
	d.Profiler.SetCount("Frame Index", int(params.FrameIndex))
	d.Profiler.SetCount("Allocations", stats.Allocations)
	d.Profiler.SetCount("Releases", stats.Releases)
	if d.collector.TriangleCapHit {
		d.Logger.Debugf("triangle cap %d reached, remaining meshes skipped", d.collector.MaxTriangles)
	}
	return nil
}

// demote resets per-frame state after a failed trace so the next frame
// starts over.
func (d *Dispatcher) demote() {
	d.needsBind = true
	d.frameIndex = 0
	d.fingerprint = 0
}

// frameFingerprint changes whenever the accumulated image would be stale.
func (d *Dispatcher) frameFingerprint(view core.ViewParams, w, h uint32, spheres []core.SphereRecord, triangles []core.TriangleRecord) uint64 {
	params := core.KernelParams{
		View:         view,
		NumPixels:    [2]float32{float32(w), float32(h)},
		NumSpheres:   uint32(len(spheres)),
		NumTriangles: uint32(len(triangles)),
		MaxBounces:   d.Config.MaxBounces,
		RaysPerPixel: d.Config.RaysPerPixel,
	}
	d.scratch = append(d.scratch[:0], params.Encode()...)
	d.scratch = core.AppendSphereRecords(d.scratch, spheres)
	d.scratch = core.AppendTriangleRecords(d.scratch, triangles)

	h64 := fnv.New64a()
	h64.Write(d.scratch)
	return h64.Sum64()
}

func (d *Dispatcher) Enable() {
	if d.enabled {
		return
	}
	d.enabled = true
	d.Logger.Debugf("path tracer enabled")
}

// Disable releases the geometry buffers; frames pass through until Enable.
func (d *Dispatcher) Disable() {
	d.enabled = false
	d.buffers.Release()
	d.demote()
	d.Logger.Debugf("path tracer disabled")
}

// Destroy releases buffers and the kernel handle. A later frame starts from
// scratch as if it were the first.
func (d *Dispatcher) Destroy() {
	d.buffers.Release()
	if d.kernel != nil {
		d.kernel.Release()
		d.kernel = nil
	}
	d.demote()
	d.Logger.Debugf("path tracer destroyed")
}
