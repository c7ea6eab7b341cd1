// Package mandel is an interactive Mandelbrot set compute engine.
//
// # Overview
//
// Given a view (center point, zoom factor, iteration bound, palette, color
// phase) the engine produces a full-viewport, tightly packed 8-bit RGB frame,
// recomputed from scratch on every parameter change. Pixel evaluation is
// embarrassingly parallel; the engine dispatches it either to a wgpu compute
// shader or to a CPU worker pool.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/mandel"
//	    _ "github.com/gogpu/mandel/gpu" // optional: enable the wgpu backend
//	)
//
//	v, err := mandel.New(1920, 1080, mandel.WithIterationBound(1000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	if err := v.ComputeFrame(-0.5, 0, 1.0); err != nil {
//	    log.Fatal(err)
//	}
//	rgb := v.FrameBuffer() // 1920*1080*3 bytes, row-major, stride width*3
//
// # Architecture
//
//	Public API:  Viewer, ViewParameters, History, Snapshot, PlaneX/PlaneY
//	palette/:    iteration-count to RGB mapping (six palettes, log smoothing)
//	internal/:   kernel (escape-time loop), cpu (worker pool), gpu (wgpu)
//	gpu/:        blank-import registration of the wgpu backend
//
// A Viewer owns all frame buffers. It is not safe for concurrent use: the
// caller sequences ComputeFrame, Resize, and parameter mutation.
package mandel
