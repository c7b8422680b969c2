package render

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// SnapshotWriter is called after any iteration whose PPM should be saved
// (every power-of-two iteration, plus the final one).
type SnapshotWriter func(iteration int) error

// Config controls the progressive render loop.
type Config struct {
	Iterations int
	Parallel   bool // split each iteration's pixel rows across workers
	NumWorkers int  // 0 = runtime.NumCPU()
}

// Progressive drives the iteration loop: one call to Camera.GetFrame per
// iteration, snapshotting the Image on power-of-two and final iterations,
// and reporting progress through a Logger. Its RNG (or, in parallel mode,
// each worker's RNG substream) is a single stream advanced in strict
// program order across the entire run, not reseeded per iteration — this
// is what makes a full render reproducible from the reference seed.
type Progressive struct {
	Camera *Camera
	Tracer *RayTracer
	Image  *Image
	Logger core.Logger
}

// NewProgressive builds a Progressive driver. A nil logger defaults to
// core.NopLogger.
func NewProgressive(camera *Camera, tracer *RayTracer, img *Image, logger core.Logger) *Progressive {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Progressive{Camera: camera, Tracer: tracer, Image: img, Logger: logger}
}

// Run executes cfg.Iterations iterations, calling snapshot after every
// iteration isSnapshotIteration reports true for. It returns after the
// last iteration or when ctx-style cancellation is signaled via stop
// (checked between iterations; stop may be nil).
func (p *Progressive) Run(cfg Config, stop <-chan struct{}, snapshot SnapshotWriter) (Stats, error) {
	start := time.Now()
	stats := Stats{}
	rngs := newWorkerRngs(cfg)

	for iteration := 1; iteration <= cfg.Iterations; iteration++ {
		select {
		case <-stop:
			return stats, errInterrupted
		default:
		}

		iterStart := time.Now()
		p.runIteration(cfg, rngs)
		stats.Iteration = iteration
		stats.LastIteration = time.Since(iterStart)
		stats.TotalElapsed = time.Since(start)

		p.Logger.Printf("iteration: %d\r", iteration)

		if isSnapshotIteration(iteration, cfg.Iterations) {
			if err := snapshot(iteration); err != nil {
				return stats, fmt.Errorf("writing snapshot at iteration %d: %w", iteration, err)
			}
		}
	}

	p.Logger.Printf("\nfinished\n")
	return stats, nil
}

// errInterrupted signals user cancellation; the CLI maps it to an exit
// code of 0 and the message "interrupted".
var errInterrupted = fmt.Errorf("interrupted")

// IsInterrupted reports whether err is the interruption sentinel Run
// returns when stop fires.
func IsInterrupted(err error) bool { return err == errInterrupted }

// isSnapshotIteration reports whether iteration N should produce a PPM
// snapshot: N is a power of two, or N is the final iteration.
func isSnapshotIteration(n, total int) bool {
	return n == total || n&(n-1) == 0
}

func (p *Progressive) runIteration(cfg Config, rngs []core.Rng) {
	if !cfg.Parallel {
		p.Camera.GetFrame(p.Tracer, rngs[0], p.Image)
		return
	}

	height := p.Image.Height()
	numWorkers := len(rngs)

	var wg sync.WaitGroup
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		yStart := w * rowsPerWorker
		yEnd := yStart + rowsPerWorker
		if yEnd > height {
			yEnd = height
		}
		if yStart >= yEnd {
			continue
		}

		wg.Add(1)
		go func(yStart, yEnd int, rng core.Rng) {
			defer wg.Done()
			p.Camera.GetFrameRows(p.Tracer, rng, p.Image, yStart, yEnd)
		}(yStart, yEnd, rngs[w])
	}
	wg.Wait()
}

// newWorkerRngs builds the RNG substream(s) used for the entire run, one
// per worker (a single entry for serial rendering). Each substream is
// seeded once, here, and advances continuously across every iteration:
// a single stream advanced in strict program order, never reseeded
// mid-run. Serial mode's sole stream seeds from core.ReferenceSeed
// alone, preserving reference reproducibility; parallel mode partitions
// the stream per worker, so parallel output matches the serial
// reference only modulo row-range/RNG-stream partitioning.
func newWorkerRngs(cfg Config) []core.Rng {
	if !cfg.Parallel {
		return []core.Rng{core.NewReferenceRng()}
	}

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	rngs := make([]core.Rng, numWorkers)
	for w := 0; w < numWorkers; w++ {
		rngs[w] = core.NewLFSR113(core.ReferenceSeed + uint32(w)*1000003)
	}
	return rngs
}

// WriteSnapshot formats img at the given iteration count to w.
func WriteSnapshot(img *Image, iteration int, w io.Writer) error {
	return img.Format(w, iteration)
}
