package mandel

import "errors"

var (
	// ErrInvalidViewport is returned when a viewport dimension is not positive.
	ErrInvalidViewport = errors.New("mandel: viewport dimensions must be positive")

	// ErrInvalidZoom is returned by ComputeFrame for zoom <= 0. The frame
	// buffer is left untouched.
	ErrInvalidZoom = errors.New("mandel: zoom must be positive")

	// ErrInvalidIterationBound is returned for an iteration bound <= 0.
	ErrInvalidIterationBound = errors.New("mandel: iteration bound must be positive")

	// ErrGPUUnavailable is returned when WithGPURequired is set and no GPU
	// backend is registered or its initialization failed.
	ErrGPUUnavailable = errors.New("mandel: GPU backend unavailable")

	// ErrViewerClosed is returned by operations on a closed Viewer.
	ErrViewerClosed = errors.New("mandel: viewer is closed")
)
