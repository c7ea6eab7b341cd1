//go:build !nogpu

// Package gpu registers the wgpu compute backend for hardware-accelerated
// frame computation.
//
// Import this package to move escape-time evaluation onto the GPU. If no
// usable device exists at Viewer construction, initialization fails at that
// point and the Viewer falls back to the CPU worker pool (or errors, with
// mandel.WithGPURequired).
//
// Usage:
//
//	import _ "github.com/gogpu/mandel/gpu" // enable GPU frame computation
package gpu

import (
	"github.com/gogpu/mandel"
	gpuimpl "github.com/gogpu/mandel/internal/gpu"
)

func init() {
	err := mandel.RegisterGPUBackend(func(width, height int) (mandel.Backend, error) {
		return gpuimpl.NewDispatcher(width, height)
	})
	if err != nil {
		mandel.Logger().Warn("GPU backend not registered", "err", err)
	}
}
