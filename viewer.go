package mandel

import (
	"fmt"

	"github.com/gogpu/mandel/internal/cpu"
	"github.com/gogpu/mandel/palette"
)

// Viewer orchestrates frame computation and exclusively owns every buffer
// involved: the per-frame coordinate arrays, the RGB frame buffer, and all
// device-resident buffers of the active backend. Buffers are allocated at
// construction and on Resize, never per frame.
//
// Viewer is not safe for concurrent use. The caller sequences ComputeFrame,
// Resize, and parameter mutation; in particular Resize must not be called
// while ComputeFrame is in flight.
type Viewer struct {
	width  int
	height int

	bound int32
	pal   palette.Palette
	phase float64

	backend Backend
	xs, ys  []float64
	frame   []byte
	closed  bool
}

// viewerConfig collects constructor options.
type viewerConfig struct {
	bound       int32
	pal         palette.Palette
	phase       float64
	workers     int
	cpuOnly     bool
	gpuRequired bool
}

// Option configures a Viewer at construction.
type Option func(*viewerConfig)

// WithIterationBound sets the initial escape-time iteration bound.
// Default is 1000.
func WithIterationBound(n int32) Option {
	return func(c *viewerConfig) { c.bound = n }
}

// WithPalette sets the initial palette. Default is palette.Rainbow.
func WithPalette(p palette.Palette) Option {
	return func(c *viewerConfig) { c.pal = p }
}

// WithColorPhase sets the initial palette phase shift. Default is 0.
func WithColorPhase(shift float64) Option {
	return func(c *viewerConfig) { c.phase = shift }
}

// WithWorkers sets the CPU backend's worker count. If n <= 0, GOMAXPROCS
// is used. Ignored when the GPU backend is selected.
func WithWorkers(n int) Option {
	return func(c *viewerConfig) { c.workers = n }
}

// WithCPUOnly skips the GPU backend even when one is registered.
func WithCPUOnly() Option {
	return func(c *viewerConfig) { c.cpuOnly = true }
}

// WithGPURequired makes construction fail with ErrGPUUnavailable (or the
// backend's own initialization error) instead of falling back to the CPU.
func WithGPURequired() Option {
	return func(c *viewerConfig) { c.gpuRequired = true }
}

// New creates a Viewer for the given viewport. If the gpu package has been
// imported and a usable device exists, frames are computed on the GPU;
// otherwise the CPU worker-pool backend is used. Backend initialization and
// buffer allocation failures are fatal here, not per frame.
func New(width, height int, opts ...Option) (*Viewer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}

	cfg := viewerConfig{
		bound: 1000,
		pal:   palette.Rainbow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bound <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterationBound, cfg.bound)
	}
	if !cfg.pal.Valid() {
		return nil, fmt.Errorf("mandel: unknown palette %d", int32(cfg.pal))
	}

	backend, err := selectBackend(width, height, cfg)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		width:   width,
		height:  height,
		bound:   cfg.bound,
		pal:     cfg.pal,
		phase:   cfg.phase,
		backend: backend,
		xs:      make([]float64, width),
		ys:      make([]float64, height),
		frame:   make([]byte, width*height*3),
	}

	Logger().Info("mandel: viewer created",
		"viewport", fmt.Sprintf("%dx%d", width, height),
		"backend", backend.Name(),
		"iteration_bound", cfg.bound)
	return v, nil
}

// selectBackend tries the registered GPU factory first and falls back to
// the CPU worker pool unless the caller required the GPU.
func selectBackend(width, height int, cfg viewerConfig) (Backend, error) {
	if !cfg.cpuOnly {
		if factory := registeredGPUFactory(); factory != nil {
			b, err := factory(width, height)
			if err == nil {
				return b, nil
			}
			if cfg.gpuRequired {
				return nil, fmt.Errorf("mandel: GPU backend init: %w", err)
			}
			Logger().Warn("mandel: GPU backend init failed, using CPU", "err", err)
		} else if cfg.gpuRequired {
			return nil, ErrGPUUnavailable
		}
	} else if cfg.gpuRequired {
		return nil, ErrGPUUnavailable
	}
	return cpu.New(width, height, cfg.workers), nil
}

// ComputeFrame computes one full frame for the given view center and zoom:
// it regenerates the coordinate arrays, dispatches one evaluation unit per
// pixel through the active backend, and blocks until the RGB result has
// been written to the frame buffer. Every frame is recomputed from scratch;
// there is no incremental reuse across frames.
//
// zoom <= 0 (or a non-positive iteration bound) is a defined no-render:
// the call returns a sentinel error and the frame buffer is untouched.
// A backend dispatch failure fails the frame as a whole; the engine does
// not retry, the caller decides whether to skip or abort.
func (v *Viewer) ComputeFrame(centerX, centerY, zoom float64) error {
	if v.closed {
		return ErrViewerClosed
	}
	if zoom <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	if v.bound <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIterationBound, v.bound)
	}

	fillCoordinates(v.xs, v.ys, centerX, centerY, zoom)

	if err := v.backend.Render(v.xs, v.ys, v.bound, v.pal, v.phase, v.frame); err != nil {
		return fmt.Errorf("mandel: compute frame: %w", err)
	}
	return nil
}

// ComputeView applies p's iteration bound, palette, and phase, then
// computes the frame for p's center and zoom.
func (v *Viewer) ComputeView(p ViewParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	v.bound = p.IterationBound
	v.pal = p.Palette
	v.phase = p.ColorPhase
	return v.ComputeFrame(p.CenterX, p.CenterY, p.Zoom)
}

// FrameBuffer returns the current frame as tightly packed row-major 8-bit
// RGB (width*height*3 bytes, stride width*3, origin top-left), suitable for
// direct upload to a display texture.
//
// The returned slice is owned by the Viewer and must be treated as
// read-only; it is valid until the next ComputeFrame or Resize call, which
// replaces its contents wholesale.
func (v *Viewer) FrameBuffer() []byte {
	return v.frame
}

// Resize reallocates every host and device buffer for the new viewport and
// invalidates the current frame buffer. It must not be called while a
// ComputeFrame is in flight.
func (v *Viewer) Resize(width, height int) error {
	if v.closed {
		return ErrViewerClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}

	if err := v.backend.Resize(width, height); err != nil {
		return fmt.Errorf("mandel: resize to %dx%d: %w", width, height, err)
	}

	v.width = width
	v.height = height
	v.xs = make([]float64, width)
	v.ys = make([]float64, height)
	v.frame = make([]byte, width*height*3)

	Logger().Debug("mandel: viewport resized", "viewport", fmt.Sprintf("%dx%d", width, height))
	return nil
}

// SetIterationBound sets the escape-time bound for subsequent frames.
// It takes effect on the next ComputeFrame call; nothing is recomputed.
func (v *Viewer) SetIterationBound(n int32) { v.bound = n }

// SetPalette selects the palette for subsequent frames.
func (v *Viewer) SetPalette(p palette.Palette) { v.pal = p }

// SetColorPhase sets the palette phase shift for subsequent frames.
func (v *Viewer) SetColorPhase(shift float64) { v.phase = shift }

// IterationBound returns the current escape-time bound.
func (v *Viewer) IterationBound() int32 { return v.bound }

// Palette returns the current palette.
func (v *Viewer) Palette() palette.Palette { return v.pal }

// ColorPhase returns the current palette phase shift.
func (v *Viewer) ColorPhase() float64 { return v.phase }

// Width returns the viewport width in pixels.
func (v *Viewer) Width() int { return v.width }

// Height returns the viewport height in pixels.
func (v *Viewer) Height() int { return v.height }

// BackendName identifies the active compute backend ("cpu" or
// "wgpu-compute").
func (v *Viewer) BackendName() string { return v.backend.Name() }

// Close releases the backend and all of its device buffers. The Viewer
// must not be used afterwards. Close is idempotent.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.backend.Close()
	v.closed = true
}
