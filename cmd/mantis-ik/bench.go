package main

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

const (
	flagCount   = "count"
	flagWorkers = "workers"
	flagStep    = "step"
	flagSeed    = "seed"
)

type benchSample struct {
	millis     float64
	iterations float64
	converged  bool
}

// benchAction drives independent solvers through random small deltas, alternating hands, and
// reports solve time and iteration statistics.
func benchAction(c *cli.Context, logger logging.Logger) error {
	count := c.Int(flagCount)
	workers := c.Int(flagWorkers)
	if count <= 0 || workers <= 0 {
		return errors.New("count and workers must be positive")
	}
	step := c.Float64(flagStep)

	var mu sync.Mutex
	samples := make([]benchSample, 0, count)
	g, ctx := errgroup.WithContext(c.Context)
	for w := 0; w < workers; w++ {
		w := w
		n := count / workers
		if w < count%workers {
			n++
		}
		rng := rand.New(rand.NewSource(c.Int64(flagSeed) + int64(w))) //nolint:gosec
		g.Go(func() error {
			solver, err := newSolver(c, logger.Sublogger(fmt.Sprintf("worker%d", w)))
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				side := joints.Side(i % 2)
				res, err := solver.IK(side,
					step*(2*rng.Float64()-1), step*(2*rng.Float64()-1), step*(2*rng.Float64()-1),
					0, 0, 0, false)
				if err != nil {
					return err
				}
				mu.Lock()
				samples = append(samples, benchSample{
					millis:     float64(res.Duration.Microseconds()) / 1000,
					iterations: float64(res.Iterations),
					converged:  res.Converged,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return renderBench(c, samples)
}

func renderBench(c *cli.Context, samples []benchSample) error {
	millis := make(stats.Float64Data, 0, len(samples))
	iterations := make(stats.Float64Data, 0, len(samples))
	notConverged := 0
	for _, s := range samples {
		millis = append(millis, s.millis)
		iterations = append(iterations, s.iterations)
		if !s.converged {
			notConverged++
		}
	}

	t := newTable(c.App.Writer, "metric", "mean", "median", "p95", "max")
	for _, row := range []struct {
		name string
		data stats.Float64Data
	}{{"time (ms)", millis}, {"iterations", iterations}} {
		mean, err1 := row.data.Mean()
		median, err2 := row.data.Median()
		p95, err3 := row.data.Percentile(95)
		maxV, err4 := row.data.Max()
		for _, err := range []error{err1, err2, err3, err4} {
			if err != nil {
				return errors.Wrapf(err, "summarizing %s", row.name)
			}
		}
		t.AppendRow(table.Row{
			row.name,
			fmt.Sprintf("%.3f", mean), fmt.Sprintf("%.3f", median),
			fmt.Sprintf("%.3f", p95), fmt.Sprintf("%.3f", maxV),
		})
	}
	t.Render()

	if notConverged == 0 {
		color.New(color.FgGreen).Fprintf(c.App.Writer, "%d solves, all converged\n", len(samples))
	} else {
		color.New(color.FgYellow).Fprintf(c.App.Writer, "%d solves, %d did not converge\n", len(samples), notConverged)
	}
	return nil
}
