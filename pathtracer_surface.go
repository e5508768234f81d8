package lumen

import (
	"fmt"

	"github.com/gekko3d/lumen/logging"
	"github.com/gekko3d/lumen/pathrt/rt/app"

	"github.com/cogentcore/webgpu/wgpu"
)

// surfacePresenter owns the window GPU, the frame targets and the blit to
// the swapchain.
type surfacePresenter struct {
	window  *WindowState
	gpu     *GpuState
	backend *app.WgpuBackend
	logger  logging.Logger

	input  *app.WgpuTarget
	output *app.WgpuTarget
}

func newSurfacePresenter(window *WindowState, logger logging.Logger) (*surfacePresenter, error) {
	gpu, err := createGpuState(window)
	if err != nil {
		return nil, err
	}
	backend, err := app.NewWgpuBackend(gpu.Device(), gpu.SurfaceFormat(), logger)
	if err != nil {
		gpu.Release()
		return nil, fmt.Errorf("wgpu backend: %w", err)
	}
	return &surfacePresenter{
		window:  window,
		gpu:     gpu,
		backend: backend,
		logger:  logging.OrNop(logger),
	}, nil
}

// begin sizes the targets to the surface and clears the passthrough input.
// It reports false while the window has no drawable area.
func (p *surfacePresenter) begin(s *PathTracerState) (bool, error) {
	if p.gpu.Resize(p.window.FramebufferSize()) {
		p.logger.Debugf("surface resized to %dx%d", p.gpu.surfaceConfig.Width, p.gpu.surfaceConfig.Height)
	}
	w, h := p.gpu.SurfaceSize()
	if w == 0 || h == 0 {
		return false, nil
	}

	if p.output == nil || p.output.Width() != w || p.output.Height() != h {
		if err := p.resize(w, h); err != nil {
			return false, err
		}
	}
	if err := p.backend.Clear(p.input, wgpu.Color{0, 0, 0, 1}); err != nil {
		return false, fmt.Errorf("clear input: %w", err)
	}

	s.Source = p.input
	s.Destination = p.output
	return true, nil
}

func (p *surfacePresenter) resize(w, h uint32) error {
	p.releaseTargets()

	device := p.gpu.Device()
	input, err := app.NewWgpuTarget(device, "Frame Input", w, h)
	if err != nil {
		return fmt.Errorf("input target: %w", err)
	}
	output, err := app.NewWgpuTarget(device, "Frame Output", w, h)
	if err != nil {
		input.Release()
		return fmt.Errorf("output target: %w", err)
	}
	p.input, p.output = input, output
	return nil
}

func (p *surfacePresenter) end() error {
	view, err := p.gpu.acquireSurfaceView()
	if err != nil {
		return err
	}
	defer view.Release()

	if err := p.backend.Present(p.output, view); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	p.gpu.present()
	return nil
}

func (p *surfacePresenter) releaseTargets() {
	for _, t := range []*app.WgpuTarget{p.input, p.output} {
		if t != nil {
			p.backend.ForgetTarget(t)
			t.Release()
		}
	}
	p.input, p.output = nil, nil
}

func (p *surfacePresenter) Release() {
	p.releaseTargets()
	p.backend.Release()
	p.gpu.Release()
}
