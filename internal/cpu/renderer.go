// Package cpu implements the host-side compute backend: the escape-time
// kernel dispatched row-parallel over a work-stealing worker pool. It is the
// fallback when no GPU backend is registered or GPU initialization fails,
// and the reference implementation the GPU output is judged against.
package cpu

import (
	"github.com/gogpu/mandel/internal/kernel"
	"github.com/gogpu/mandel/palette"
)

// Renderer renders full frames on the CPU. Rows are grouped into bands and
// evaluated concurrently; each band writes only its own slice of the output
// buffer, so no synchronization beyond the final barrier is needed.
type Renderer struct {
	pool   *workerPool
	width  int
	height int
}

// New creates a CPU renderer for the given viewport. If workers <= 0,
// GOMAXPROCS workers are used.
func New(width, height, workers int) *Renderer {
	return &Renderer{
		pool:   newWorkerPool(workers),
		width:  width,
		height: height,
	}
}

// Name identifies the backend in logs.
func (r *Renderer) Name() string { return "cpu" }

// Resize updates the viewport dimensions. The CPU backend holds no sized
// buffers of its own, so this never fails.
func (r *Renderer) Resize(width, height int) error {
	r.width = width
	r.height = height
	return nil
}

// Render evaluates and shades every pixel of the frame into dst, which must
// hold width*height*3 bytes of row-major RGB. It blocks until the whole
// frame is complete.
func (r *Renderer) Render(xs, ys []float64, bound int32, pal palette.Palette, shift float64, dst []byte) error {
	band := r.height / (r.pool.numWorkers() * 4)
	if band < 1 {
		band = 1
	}

	rowBytes := r.width * 3
	tasks := make([]func(), 0, (r.height+band-1)/band)
	for y0 := 0; y0 < r.height; y0 += band {
		y1 := y0 + band
		if y1 > r.height {
			y1 = r.height
		}
		start, end := y0, y1
		tasks = append(tasks, func() {
			for y := start; y < end; y++ {
				kernel.RenderRow(dst[y*rowBytes:(y+1)*rowBytes], xs, ys[y], bound, pal, shift)
			}
		})
	}

	r.pool.executeAll(tasks)
	return nil
}

// Close stops the worker pool.
func (r *Renderer) Close() {
	r.pool.close()
}
