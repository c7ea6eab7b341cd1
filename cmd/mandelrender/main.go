// Command mandelrender renders one Mandelbrot view to a PNG file.
//
// The view comes either from flags or from a saved state file written by
// mandelserve. Supersampling renders at an integer multiple of the target
// resolution and downscales with a Catmull-Rom filter.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/gogpu/mandel"
	_ "github.com/gogpu/mandel/gpu"
	"github.com/gogpu/mandel/palette"
)

type renderOptions struct {
	width       int
	height      int
	centerX     float64
	centerY     float64
	zoom        float64
	iterations  int32
	paletteName string
	phase       float64
	supersample int
	out         string
	state       string
	cpu         bool
	verbose     bool
}

func mainCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "mandelrender",
		Short: "Render a Mandelbrot view to a PNG file",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	view := mandel.DefaultViewParameters()
	f := cmd.Flags()
	f.IntVar(&opts.width, "width", 800, "output image width")
	f.IntVar(&opts.height, "height", 600, "output image height")
	f.Float64Var(&opts.centerX, "center-x", view.CenterX, "view center, real axis")
	f.Float64Var(&opts.centerY, "center-y", view.CenterY, "view center, imaginary axis")
	f.Float64Var(&opts.zoom, "zoom", view.Zoom, "magnification factor")
	f.Int32Var(&opts.iterations, "iterations", view.IterationBound, "escape-time iteration bound")
	f.StringVar(&opts.paletteName, "palette", view.Palette.String(), "color palette (rainbow, fire, electric-blue, twilight, neon, sepia)")
	f.Float64Var(&opts.phase, "phase", view.ColorPhase, "palette phase shift, cyclic with period 1")
	f.IntVar(&opts.supersample, "supersample", 1, "render at N times the resolution and downscale")
	f.StringVar(&opts.out, "out", "mandelbrot.png", "output PNG path")
	f.StringVar(&opts.state, "state", "", "load the view from a saved state file (overrides view flags)")
	f.BoolVar(&opts.cpu, "cpu", false, "force the CPU backend")
	f.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	return cmd
}

func run(opts *renderOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	view := mandel.ViewParameters{
		CenterX:        opts.centerX,
		CenterY:        opts.centerY,
		Zoom:           opts.zoom,
		IterationBound: opts.iterations,
		ColorPhase:     opts.phase,
	}
	var err error
	if view.Palette, err = palette.Parse(opts.paletteName); err != nil {
		return err
	}

	if opts.state != "" {
		if view, err = loadState(opts.state); err != nil {
			return err
		}
	}

	if opts.supersample < 1 {
		return fmt.Errorf("supersample must be at least 1, got %d", opts.supersample)
	}
	renderW := opts.width * opts.supersample
	renderH := opts.height * opts.supersample

	var viewerOpts []mandel.Option
	if opts.cpu {
		viewerOpts = append(viewerOpts, mandel.WithCPUOnly())
	}
	viewer, err := mandel.New(renderW, renderH, viewerOpts...)
	if err != nil {
		return err
	}
	defer viewer.Close()

	start := time.Now()
	if err := viewer.ComputeView(view); err != nil {
		return err
	}
	mandel.Logger().Info("frame computed",
		"viewport", fmt.Sprintf("%dx%d", renderW, renderH),
		"backend", viewer.BackendName(),
		"elapsed", time.Since(start))

	img := frameImage(viewer.FrameBuffer(), renderW, renderH)
	if opts.supersample > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, opts.width, opts.height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	out, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	mandel.Logger().Info("image written", "path", opts.out)
	return nil
}

// frameImage wraps a packed RGB frame in an RGBA image for encoding.
func frameImage(frame []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		copy(img.Pix[i*4:i*4+3], frame[i*3:i*3+3])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

func loadState(path string) (mandel.ViewParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return mandel.ViewParameters{}, err
	}
	defer f.Close()

	snap, err := mandel.DecodeSnapshot(f)
	if err != nil {
		return mandel.ViewParameters{}, err
	}
	view := snap.ViewParameters()
	if snap.HighQuality && snap.QualityMultiplier > 1 {
		view.IterationBound *= snap.QualityMultiplier
	}
	return view, nil
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
