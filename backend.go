package mandel

import (
	"errors"
	"sync"

	"github.com/gogpu/mandel/palette"
)

// Backend computes one frame of pixels from prepared coordinate arrays.
//
// xs and ys hold the real-axis and imaginary-axis sample points for the
// current frame (lengths width and height). dst receives width*height RGB
// triplets, row-major. Render blocks until the whole frame is complete;
// a returned error means the frame as a whole failed (there is no partial
// success) and the backend does not retry.
//
// The built-in CPU worker-pool backend always exists; the wgpu compute
// backend is registered by importing github.com/gogpu/mandel/gpu.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Resize reallocates any size-dependent buffers for the new viewport.
	Resize(width, height int) error

	// Render computes one full frame into dst (width*height*3 bytes).
	Render(xs, ys []float64, bound int32, pal palette.Palette, shift float64, dst []byte) error

	// Close releases all backend resources.
	Close()
}

// BackendFactory constructs a Backend for a viewport. Construction errors
// are fatal for that backend (no usable device, buffer allocation failure).
type BackendFactory func(width, height int) (Backend, error)

var (
	backendMu  sync.RWMutex
	gpuFactory BackendFactory
)

// RegisterGPUBackend installs the factory Viewer construction uses to
// create a GPU backend. It is called from the gpu package's init; at most
// one factory can be registered.
func RegisterGPUBackend(f BackendFactory) error {
	if f == nil {
		return errors.New("mandel: backend factory must not be nil")
	}
	backendMu.Lock()
	defer backendMu.Unlock()
	if gpuFactory != nil {
		return errors.New("mandel: GPU backend already registered")
	}
	gpuFactory = f
	return nil
}

// registeredGPUFactory returns the installed GPU factory, or nil.
func registeredGPUFactory() BackendFactory {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return gpuFactory
}
