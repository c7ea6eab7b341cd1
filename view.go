package mandel

import (
	"fmt"

	"github.com/gogpu/mandel/palette"
)

// ViewParameters describes one rendered view of the set. The caller owns
// the struct and passes it by value; the engine never retains a reference
// to caller state across frames.
type ViewParameters struct {
	// CenterX, CenterY locate the view center in the complex plane
	// (real and imaginary parts, screen-space sign convention, see PlaneY).
	CenterX float64
	CenterY float64

	// Zoom is the magnification factor; the visible window width is
	// 4.0/Zoom. Must be positive.
	Zoom float64

	// IterationBound caps the escape-time loop. Must be positive.
	IterationBound int32

	// Palette selects the color mapping.
	Palette palette.Palette

	// ColorPhase shifts the palette cyclically with period 1. Any real
	// value is accepted; palettes reduce it modulo 1.
	ColorPhase float64
}

// DefaultViewParameters returns the canonical whole-set starting view.
func DefaultViewParameters() ViewParameters {
	return ViewParameters{
		CenterX:        -0.5,
		CenterY:        0,
		Zoom:           1,
		IterationBound: 1000,
		Palette:        palette.Rainbow,
		ColorPhase:     0,
	}
}

// Validate reports the first contract violation in p, or nil.
func (p ViewParameters) Validate() error {
	if p.Zoom <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, p.Zoom)
	}
	if p.IterationBound <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIterationBound, p.IterationBound)
	}
	if !p.Palette.Valid() {
		return fmt.Errorf("mandel: unknown palette %d", int32(p.Palette))
	}
	return nil
}
