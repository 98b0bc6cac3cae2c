//go:build !windows && !no_cgo

// Package slsqp registers an nlopt SLSQP minimizer for the IK engine under the name "slsqp".
// Import it for its side effect.
package slsqp

import (
	"math"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

// Name is the name the minimizer is registered under.
const Name = "slsqp"

const (
	gradientStep = 1e-6
	// Objective evaluations allowed per iteration of the iteration budget.
	evalsPerIteration = 40
)

var errBadBounds = errors.New("cannot set empty bounds for nlopt")

func init() {
	ik.RegisterMinimizer(Name, func(opts ik.SolverOptions, logger logging.Logger) (ik.Minimizer, error) {
		return New(opts, logger), nil
	})
}

// Minimizer runs nlopt's SLSQP on the sum of squared residuals with a forward-difference gradient.
type Minimizer struct {
	opts   ik.SolverOptions
	logger logging.Logger
}

// New returns an SLSQP minimizer. Zero options take the ik package defaults.
func New(opts ik.SolverOptions, logger logging.Logger) *Minimizer {
	if opts.MaxIterations == 0 {
		opts.MaxIterations = ik.DefaultMaxIterations
	}
	if opts.StepTolerance == 0 {
		opts.StepTolerance = ik.DefaultStepTolerance
	}
	if opts.CostTolerance == 0 {
		opts.CostTolerance = ik.DefaultCostTolerance
	}
	return &Minimizer{opts: opts, logger: logger}
}

// Minimize implements ik.Minimizer.
func (s *Minimizer) Minimize(obj ik.Objective, lower, upper, seed []float64) (*ik.Solution, error) {
	n := obj.Dim()
	if len(lower) == 0 || len(upper) == 0 {
		return nil, errBadBounds
	}
	if len(seed) != n || len(lower) != n || len(upper) != n {
		return nil, errors.Errorf("dimension mismatch: objective has %d variables, seed %d, bounds %d/%d",
			n, len(seed), len(lower), len(upper))
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(n))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	r := make([]float64, obj.NumResiduals())
	cost := func(x []float64) float64 {
		obj.Residuals(x, r)
		return floats.Dot(r, r)
	}
	probe := make([]float64, n)
	evals := 0
	minFunc := func(x, gradient []float64) float64 {
		evals++
		c := cost(x)
		if len(gradient) > 0 {
			copy(probe, x)
			for i := range gradient {
				h := gradientStep
				if x[i]+h > upper[i] {
					h = -h
				}
				probe[i] = x[i] + h
				gradient[i] = (cost(probe) - c) / h
				probe[i] = x[i]
			}
		}
		return c
	}

	maxEval := s.opts.MaxIterations * evalsPerIteration
	if err := multierr.Combine(
		opt.SetLowerBounds(lower),
		opt.SetUpperBounds(upper),
		opt.SetFtolRel(s.opts.CostTolerance),
		opt.SetXtolAbs1(s.opts.StepTolerance),
		opt.SetMinObjective(minFunc),
		opt.SetMaxEval(maxEval),
	); err != nil {
		return nil, errors.Wrap(err, "configuring nlopt")
	}

	start := make([]float64, n)
	for i, v := range seed {
		start[i] = math.Min(math.Max(v, lower[i]), upper[i])
	}
	x, value, err := opt.Optimize(start)
	if x == nil {
		if err == nil {
			err = errors.New("nlopt returned no solution")
		}
		return nil, err
	}
	converged := err == nil && evals < maxEval
	if err != nil {
		// Roundoff and similar failures still leave a usable best point.
		s.logger.Debugw("nlopt stopped early", "error", err, "evaluations", evals)
	}
	return &ik.Solution{
		Q:          x,
		Cost:       value,
		Iterations: (evals + evalsPerIteration - 1) / evalsPerIteration,
		Converged:  converged,
	}, nil
}
