// Command mandelserve serves an interactive Mandelbrot explorer over
// WebSockets. Each connection owns a Viewer and a zoom history; the client
// sends JSON view requests and receives raw binary frames.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/mandel"
	_ "github.com/gogpu/mandel/gpu"
)

type serveOptions struct {
	addr      string
	width     int
	height    int
	stateFile string
	cpu       bool
	verbose   bool
}

func mainCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "mandelserve",
		Short: "Serve an interactive Mandelbrot explorer over WebSockets",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", ":8080", "HTTP listen address")
	f.IntVar(&opts.width, "width", 800, "initial viewport width")
	f.IntVar(&opts.height, "height", 600, "initial viewport height")
	f.StringVar(&opts.stateFile, "state", "view.state", "path for saved view state")
	f.BoolVar(&opts.cpu, "cpu", false, "force the CPU backend")
	f.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, opts *serveOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", sessionHandler(opts, logger))
	mux.HandleFunc("/", indexHandler)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("listening", "addr", opts.addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
