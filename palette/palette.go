// Package palette maps escape-time iteration counts to RGB colors.
//
// A palette is a pure function of the smoothed iteration fraction and a
// caller-supplied phase shift. All palettes are stateless and deterministic:
// identical inputs always produce identical colors, and every output channel
// is within [0, 1] for any real-valued phase input.
package palette

import (
	"fmt"
	"math"
	"strings"
)

// Palette selects one of the built-in color mappings.
type Palette int32

const (
	// Rainbow cycles three sine waves at 120 degree offsets.
	Rainbow Palette = iota
	// Fire ramps black through red to yellow.
	Fire
	// ElectricBlue ramps cyan-blue with no red component.
	ElectricBlue
	// Twilight blends deep blue into purple.
	Twilight
	// Neon uses offset sine/cosine waves for saturated tones.
	Neon
	// Sepia is a near-monochrome warm ramp.
	Sepia

	// Count is the number of built-in palettes.
	Count
)

// String returns the palette name as used by CLI flags and logs.
func (p Palette) String() string {
	switch p {
	case Rainbow:
		return "rainbow"
	case Fire:
		return "fire"
	case ElectricBlue:
		return "electric-blue"
	case Twilight:
		return "twilight"
	case Neon:
		return "neon"
	case Sepia:
		return "sepia"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(p))
	}
}

// Valid reports whether p names a built-in palette.
func (p Palette) Valid() bool {
	return p >= Rainbow && p < Count
}

// Parse returns the palette named by s (case-insensitive, as produced by
// String). It returns an error for unknown names.
func Parse(s string) (Palette, error) {
	for p := Rainbow; p < Count; p++ {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("palette: unknown palette %q", s)
}

// LogSmooth remaps a normalized iteration fraction in [0, 1) to reduce
// color banding: log(v*0.5 + 0.5) / log(1.5). The output is negative,
// ranging over roughly [-1.71, 0); palette functions wrap it into a cyclic
// phase, so only its monotonic shape matters.
func LogSmooth(v float64) float64 {
	return math.Log(v*0.5+0.5) / math.Log(1.5)
}

// ColorFor maps an escape-time result to an RGB color with all channels in
// [0, 1]. Points that reached bound without escaping (count >= bound) are
// interior to the set and map to exact black. The shift argument is cyclic
// with period 1 and may be any real number.
func ColorFor(count, bound int32, p Palette, shift float64) (r, g, b float64) {
	if count >= bound {
		return 0, 0, 0
	}
	s := LogSmooth(float64(count) / float64(bound))
	return shade(s, shift, p)
}

// RGB8 is ColorFor quantized to 8-bit channels by truncation.
func RGB8(count, bound int32, p Palette, shift float64) (r, g, b uint8) {
	fr, fg, fb := ColorFor(count, bound, p, shift)
	return uint8(fr * 255), uint8(fg * 255), uint8(fb * 255)
}

// shade dispatches the smoothed fraction to the selected palette function.
// Unknown palette values map to black, mirroring the kernel's default case.
func shade(smoothed, shift float64, p Palette) (r, g, b float64) {
	switch p {
	case Rainbow:
		return rainbow(smoothed, shift)
	case Fire:
		return fire(smoothed, shift)
	case ElectricBlue:
		return electricBlue(smoothed, shift)
	case Twilight:
		return twilight(smoothed, shift)
	case Neon:
		return neon(smoothed, shift)
	case Sepia:
		return sepia(smoothed, shift)
	default:
		return 0, 0, 0
	}
}

// wrap01 reduces x modulo 1 into [0, 1). Unlike math.Mod it never returns
// a negative phase; the smoothed fraction is negative and shifts are
// unconstrained, so both sides of zero occur in practice.
func wrap01(x float64) float64 {
	return x - math.Floor(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// rainbow runs the phase through three sine waves at 120 degree offsets,
// each boosted 1.5x and clamped. The fraction is tripled so the full hue
// wheel repeats three times across the iteration range.
func rainbow(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed*3 + shift)
	angle := phase * 2 * math.Pi

	r = math.Sin(angle)*0.5 + 0.5
	g = math.Sin(angle+2*math.Pi/3)*0.5 + 0.5
	b = math.Sin(angle+4*math.Pi/3)*0.5 + 0.5

	return clamp01(r * 1.5), clamp01(g * 1.5), clamp01(b * 1.5)
}

func fire(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed + shift)
	return clamp01(phase * 2), clamp01((phase - 0.3) * 2), 0
}

func electricBlue(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed + shift)
	return 0, clamp01(phase * 2), clamp01(phase * 2.5)
}

func twilight(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed + shift)
	return clamp01(phase * 1.5), 0, clamp01(phase * 2)
}

func neon(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed + shift)
	r = math.Sin(phase*math.Pi)*0.5 + 0.5
	g = math.Cos(phase*math.Pi)*0.5 + 0.5
	b = math.Sin(phase*math.Pi+math.Pi/3)*0.5 + 0.5
	return clamp01(r), clamp01(g), clamp01(b)
}

func sepia(smoothed, shift float64) (r, g, b float64) {
	phase := wrap01(smoothed + shift)
	return clamp01(phase * 1.2), clamp01(phase * 1.1), clamp01(phase * 0.9)
}
