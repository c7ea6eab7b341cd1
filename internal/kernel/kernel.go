// Package kernel holds the scalar Mandelbrot escape-time kernel shared by
// the CPU compute backend and the test suite. The GPU backend runs the same
// algorithm as a WGSL compute shader.
package kernel

import "github.com/gogpu/mandel/palette"

// BailoutRadiusSq is the squared escape radius: a point is divergent once
// |z|^2 exceeds it.
const BailoutRadiusSq = 4.0

// Evaluate iterates z <- z^2 + c from z = 0 with c = x0 + i*y0, using the
// three-variable form that reuses the squares of the real and imaginary
// parts between steps. It returns the iteration count at exit and whether
// the point escaped before reaching bound.
func Evaluate(x0, y0 float64, bound int32) (count int32, escaped bool) {
	var x1, y1, x2, y2 float64
	var n int32
	for x2+y2 <= BailoutRadiusSq && n < bound {
		y1 = 2*x1*y1 + y0
		x1 = x2 - y2 + x0
		x2 = x1 * x1
		y2 = y1 * y1
		n++
	}
	return n, n < bound
}

// RenderRow evaluates and shades one pixel row. dst must hold len(xs)*3
// bytes; pixels are packed as consecutive RGB triplets.
func RenderRow(dst []byte, xs []float64, y0 float64, bound int32, pal palette.Palette, shift float64) {
	for i, x0 := range xs {
		n, _ := Evaluate(x0, y0, bound)
		r, g, b := palette.RGB8(n, bound, pal, shift)
		dst[i*3] = r
		dst[i*3+1] = g
		dst[i*3+2] = b
	}
}
