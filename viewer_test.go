package mandel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/mandel/internal/kernel"
	"github.com/gogpu/mandel/palette"
)

func TestNewRejectsInvalidViewport(t *testing.T) {
	for _, dims := range [][2]int{{0, 600}, {800, 0}, {-1, -1}} {
		if _, err := New(dims[0], dims[1]); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("New(%d, %d) error = %v, want ErrInvalidViewport", dims[0], dims[1], err)
		}
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	if _, err := New(8, 8, WithIterationBound(0)); !errors.Is(err, ErrInvalidIterationBound) {
		t.Errorf("WithIterationBound(0) error = %v, want ErrInvalidIterationBound", err)
	}
	if _, err := New(8, 8, WithPalette(palette.Count)); err == nil {
		t.Error("WithPalette(Count) succeeded, want error")
	}
}

func TestComputeFrameKnownPixels(t *testing.T) {
	// 4x4 viewport, default view: xs = [-2.5 -1.5 -0.5 0.5], ys = [-2 -1 0 1].
	v, err := New(4, 4, WithCPUOnly(), WithIterationBound(1000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	if err := v.ComputeFrame(-0.5, 0, 1); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}
	frame := v.FrameBuffer()
	if len(frame) != 4*4*3 {
		t.Fatalf("FrameBuffer len = %d, want %d", len(frame), 4*4*3)
	}

	// (0,0) maps to (-2.5,-2), which escapes immediately and must not be
	// rendered black.
	if frame[0] == 0 && frame[1] == 0 && frame[2] == 0 {
		t.Error("escaped corner pixel rendered black")
	}

	// (2,2) maps to (-0.5,0), inside the set: exact black.
	off := (2*4 + 2) * 3
	if frame[off] != 0 || frame[off+1] != 0 || frame[off+2] != 0 {
		t.Errorf("interior pixel = (%d,%d,%d), want (0,0,0)",
			frame[off], frame[off+1], frame[off+2])
	}

	// Every pixel matches the scalar pipeline.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			x0 := PlaneX(x, 4, 4, -0.5, 1)
			y0 := PlaneY(y, 4, 0, 1)
			n, _ := kernel.Evaluate(x0, y0, 1000)
			r, g, b := palette.RGB8(n, 1000, palette.Rainbow, 0)
			off := (y*4 + x) * 3
			if frame[off] != r || frame[off+1] != g || frame[off+2] != b {
				t.Errorf("pixel (%d,%d) = (%d,%d,%d), want (%d,%d,%d)",
					x, y, frame[off], frame[off+1], frame[off+2], r, g, b)
			}
		}
	}
}

func TestComputeFrameDeterministic(t *testing.T) {
	v, err := New(32, 24, WithCPUOnly(), WithIterationBound(300))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	if err := v.ComputeFrame(-0.7435, 0.1314, 512); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}
	first := bytes.Clone(v.FrameBuffer())

	if err := v.ComputeFrame(-0.7435, 0.1314, 512); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}
	if !bytes.Equal(first, v.FrameBuffer()) {
		t.Error("identical view parameters produced different frames")
	}
}

func TestComputeFrameRejectsInvalidZoom(t *testing.T) {
	v, err := New(4, 4, WithCPUOnly())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	if err := v.ComputeFrame(0, 0, 1); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}
	before := bytes.Clone(v.FrameBuffer())

	for _, zoom := range []float64{0, -1} {
		if err := v.ComputeFrame(0, 0, zoom); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("ComputeFrame(zoom=%v) error = %v, want ErrInvalidZoom", zoom, err)
		}
	}
	v.SetIterationBound(0)
	if err := v.ComputeFrame(0, 0, 1); !errors.Is(err, ErrInvalidIterationBound) {
		t.Errorf("ComputeFrame error = %v, want ErrInvalidIterationBound", err)
	}

	// A rejected frame leaves the buffer untouched.
	if !bytes.Equal(before, v.FrameBuffer()) {
		t.Error("frame buffer changed on a rejected frame")
	}
}

func TestComputeViewAppliesParameters(t *testing.T) {
	v, err := New(8, 8, WithCPUOnly())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	p := ViewParameters{
		CenterX:        -0.5,
		CenterY:        0,
		Zoom:           2,
		IterationBound: 250,
		Palette:        palette.Fire,
		ColorPhase:     0.25,
	}
	if err := v.ComputeView(p); err != nil {
		t.Fatalf("ComputeView: %v", err)
	}
	if v.IterationBound() != 250 || v.Palette() != palette.Fire || v.ColorPhase() != 0.25 {
		t.Errorf("parameters not applied: bound=%d palette=%v phase=%v",
			v.IterationBound(), v.Palette(), v.ColorPhase())
	}

	p.Zoom = 0
	if err := v.ComputeView(p); !errors.Is(err, ErrInvalidZoom) {
		t.Errorf("ComputeView(zoom=0) error = %v, want ErrInvalidZoom", err)
	}
}

func TestResizeRoundTripMatchesFreshViewer(t *testing.T) {
	const w, h = 64, 48
	resized, err := New(w, h, WithCPUOnly(), WithIterationBound(200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer resized.Close()

	if err := resized.Resize(128, 96); err != nil {
		t.Fatalf("Resize up: %v", err)
	}
	if err := resized.Resize(w, h); err != nil {
		t.Fatalf("Resize back: %v", err)
	}
	if err := resized.ComputeFrame(-0.5, 0, 8); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}

	fresh, err := New(w, h, WithCPUOnly(), WithIterationBound(200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer fresh.Close()
	if err := fresh.ComputeFrame(-0.5, 0, 8); err != nil {
		t.Fatalf("ComputeFrame: %v", err)
	}

	if !bytes.Equal(resized.FrameBuffer(), fresh.FrameBuffer()) {
		t.Error("frame after resize round trip differs from a fresh viewer's")
	}
}

func TestResizeRejectsInvalidViewport(t *testing.T) {
	v, err := New(8, 8, WithCPUOnly())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	if err := v.Resize(0, 8); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Resize(0, 8) error = %v, want ErrInvalidViewport", err)
	}
	if v.Width() != 8 || v.Height() != 8 {
		t.Errorf("viewport changed on rejected resize: %dx%d", v.Width(), v.Height())
	}
}

func TestGPURequiredWithoutUsableDevice(t *testing.T) {
	// The test binary never registers a working GPU factory, so requiring
	// one must fail construction instead of falling back.
	if _, err := New(8, 8, WithGPURequired()); err == nil {
		t.Error("New(WithGPURequired) succeeded without a GPU backend")
	}
	if _, err := New(8, 8, WithCPUOnly(), WithGPURequired()); !errors.Is(err, ErrGPUUnavailable) {
		t.Errorf("CPU-only with GPU required error = %v, want ErrGPUUnavailable", err)
	}
}

func TestViewerClosed(t *testing.T) {
	v, err := New(8, 8, WithCPUOnly())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v.Close()
	v.Close()

	if err := v.ComputeFrame(0, 0, 1); !errors.Is(err, ErrViewerClosed) {
		t.Errorf("ComputeFrame after Close error = %v, want ErrViewerClosed", err)
	}
	if err := v.Resize(16, 16); !errors.Is(err, ErrViewerClosed) {
		t.Errorf("Resize after Close error = %v, want ErrViewerClosed", err)
	}
}
