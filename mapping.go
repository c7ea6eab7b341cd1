package mandel

// baseWindow is the complex-plane width of the view at zoom 1. The visible
// window width is always baseWindow/zoom.
const baseWindow = 4.0

// PlaneX maps a pixel column to its real-axis coordinate:
//
//	centerX + (x - width/2) * (4/zoom) / width * aspect
//
// where aspect = width/height. The center column maps to centerX exactly.
func PlaneX(x, width, height int, centerX, zoom float64) float64 {
	aspect := float64(width) / float64(height)
	return centerX + (float64(x)-float64(width)/2)*(baseWindow/zoom)/float64(width)*aspect
}

// PlaneY maps a pixel row to its imaginary-axis coordinate:
//
//	centerY + (y - height/2) * (4/zoom) / height
//
// Screen space is flipped relative to the mathematical plane: y grows
// downward on screen, so increasing y corresponds to decreasing imaginary
// value. Callers translating pointer drags into center deltas must apply
// the same convention or vertical panning appears inverted.
func PlaneY(y, height int, centerY, zoom float64) float64 {
	return centerY + (float64(y)-float64(height)/2)*(baseWindow/zoom)/float64(height)
}

// fillCoordinates computes the per-column and per-row sample points for one
// frame. The arrays are shared by every pixel in the corresponding column
// or row, so they are computed once per frame rather than per pixel.
func fillCoordinates(xs, ys []float64, centerX, centerY, zoom float64) {
	width, height := len(xs), len(ys)
	aspect := float64(width) / float64(height)
	scale := baseWindow / zoom

	for x := range xs {
		xs[x] = centerX + (float64(x)-float64(width)/2)*scale/float64(width)*aspect
	}
	for y := range ys {
		ys[y] = centerY + (float64(y)-float64(height)/2)*scale/float64(height)
	}
}
