// Command minilight renders a MiniLight model file to a tone-mapped PPM
// image via progressive Monte-Carlo path tracing.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/loaders"
	"github.com/hxa7241/minilight-go/pkg/render"
)

const usage = `MiniLight 1.6

Usage: minilight <modelFilePath> [options]

Renders a MiniLight model file by progressive Monte-Carlo path tracing,
writing a tone-mapped PPM image to <modelFilePath>.ppm after the first,
every power-of-two, and the final iteration.

Options:
  -?, --help      show this message
  -workers N      split each iteration across N goroutines (default 1,
                  the single-stream reference path)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run implements the CLI contract: a missing argument or -?/--help
// prints usage and exits 0; a parse or I/O failure prints
// "*** execution failed: <detail>" and exits 1; a user interrupt during
// rendering exits 0 having printed "interrupted".
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-?" || args[0] == "--help" || args[0] == "-h" {
		fmt.Fprint(stdout, usage)
		return 0
	}
	modelPath := args[0]

	flags := flag.NewFlagSet("minilight", flag.ContinueOnError)
	flags.SetOutput(stderr)
	workers := flags.Int("workers", 1, "number of goroutines per iteration (1 = serial reference path)")
	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintf(stderr, "*** execution failed: %v\n", err)
		return 1
	}

	model, err := loaders.Load(modelPath)
	if err != nil {
		fmt.Fprintf(stderr, "*** execution failed: %v\n", err)
		return 1
	}

	camera := render.NewCamera(model.CameraEye, model.CameraDir, model.ViewAngle)
	tracer := render.NewRayTracer(model.Scene())
	img := render.NewImage(model.Width, model.Height)
	var logger core.Logger = writerLogger{w: stdout}

	progressive := render.NewProgressive(camera, tracer, img, logger)

	outputPath := modelPath + ".ppm"
	snapshot := func(iteration int) error {
		return writeSnapshot(outputPath, img, iteration)
	}

	stop := make(chan struct{})
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		<-interrupts
		close(stop)
	}()

	cfg := render.Config{Iterations: model.Iterations, Parallel: *workers > 1, NumWorkers: *workers}
	if _, err := progressive.Run(cfg, stop, snapshot); err != nil {
		if render.IsInterrupted(err) {
			fmt.Fprintln(stdout, "interrupted")
			return 0
		}
		fmt.Fprintf(stderr, "*** execution failed: %v\n", err)
		return 1
	}

	return 0
}

func writeSnapshot(path string, img *render.Image, iteration int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %q: %w", path, err)
	}
	defer f.Close()

	return render.WriteSnapshot(img, iteration, f)
}

// writerLogger is a core.Logger that writes to w.
type writerLogger struct{ w io.Writer }

func (l writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
}
