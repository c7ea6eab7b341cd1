//go:build nogpu

// Package gpu registers the wgpu compute backend for hardware-accelerated
// frame computation. Under the nogpu build tag it registers nothing and
// every Viewer uses the CPU worker pool.
package gpu
