package kernel

import (
	"testing"

	"github.com/gogpu/mandel/palette"
)

func TestEvaluate_KnownPoints(t *testing.T) {
	const bound = 200
	tests := []struct {
		name        string
		x0, y0      float64
		wantEscaped bool
	}{
		{"origin is interior", 0, 0, false},
		{"period-two bulb center", -1, 0, false},
		{"left tip stays on bailout circle", -2, 0, false},
		{"far outside", 2.5, 0, true},
		{"outside corner", -2.5, -2, true},
		{"upper filament region escapes", 0.5, 0.5, true},
	}
	for _, tt := range tests {
		count, escaped := Evaluate(tt.x0, tt.y0, bound)
		if escaped != tt.wantEscaped {
			t.Errorf("%s: Evaluate(%v, %v) escaped = %v, want %v (count %d)",
				tt.name, tt.x0, tt.y0, escaped, tt.wantEscaped, count)
		}
		if !escaped && count != bound {
			t.Errorf("%s: interior point count = %d, want bound %d", tt.name, count, bound)
		}
		if escaped && count >= bound {
			t.Errorf("%s: escaped point count = %d, want < bound", tt.name, count)
		}
	}
}

func TestEvaluate_ImmediateEscape(t *testing.T) {
	// |c| far beyond the bailout radius escapes on the first step.
	count, escaped := Evaluate(10, 10, 100)
	if !escaped || count != 1 {
		t.Errorf("Evaluate(10, 10) = (%d, %v), want (1, true)", count, escaped)
	}
}

func TestEvaluate_BoundOne(t *testing.T) {
	count, escaped := Evaluate(0, 0, 1)
	if escaped || count != 1 {
		t.Errorf("Evaluate(0, 0, 1) = (%d, %v), want (1, false)", count, escaped)
	}
}

func TestRenderRow_MatchesEvaluate(t *testing.T) {
	xs := []float64{-2.5, -1.5, -0.5, 0.5}
	const (
		y0    = 0.0
		bound = 50
	)
	dst := make([]byte, len(xs)*3)
	RenderRow(dst, xs, y0, bound, palette.Fire, 0)

	for i, x0 := range xs {
		n, _ := Evaluate(x0, y0, bound)
		r, g, b := palette.RGB8(n, bound, palette.Fire, 0)
		if dst[i*3] != r || dst[i*3+1] != g || dst[i*3+2] != b {
			t.Errorf("pixel %d = (%d,%d,%d), want (%d,%d,%d)",
				i, dst[i*3], dst[i*3+1], dst[i*3+2], r, g, b)
		}
	}

	// x = -0.5 on the real axis is inside the main cardioid: black.
	if dst[6] != 0 || dst[7] != 0 || dst[8] != 0 {
		t.Errorf("interior pixel = (%d,%d,%d), want black", dst[6], dst[7], dst[8])
	}
	// x = -2.5 escapes: not black.
	if dst[0] == 0 && dst[1] == 0 && dst[2] == 0 {
		t.Error("escaped pixel rendered black")
	}
}
