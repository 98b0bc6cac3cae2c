package ik

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

const (
	lmInitialDamping = 1e-3
	lmMinDamping     = 1e-12
	lmDampingFactor  = 10.
	lmMaxRejections  = 12
	jacobianStep     = 1e-6
)

func init() {
	RegisterMinimizer(DefaultSolver, func(opts SolverOptions, logger logging.Logger) (Minimizer, error) {
		return NewLevenbergMarquardt(opts, logger), nil
	})
}

// LevenbergMarquardt is a projected Levenberg-Marquardt least-squares minimizer. Every trial step
// is projected onto the bounds box, so every iterate is feasible.
type LevenbergMarquardt struct {
	opts   SolverOptions
	logger logging.Logger
}

// NewLevenbergMarquardt returns a projected Levenberg-Marquardt minimizer. Zero options take the
// package defaults.
func NewLevenbergMarquardt(opts SolverOptions, logger logging.Logger) *LevenbergMarquardt {
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.GradientTolerance == 0 {
		opts.GradientTolerance = DefaultGradientTolerance
	}
	if opts.StepTolerance == 0 {
		opts.StepTolerance = DefaultStepTolerance
	}
	if opts.CostTolerance == 0 {
		opts.CostTolerance = DefaultCostTolerance
	}
	return &LevenbergMarquardt{opts: opts, logger: logger}
}

// Minimize runs until the projected gradient, the step or the cost decrease falls under its
// tolerance, no damping makes progress, or MaxIterations is reached.
func (lm *LevenbergMarquardt) Minimize(obj Objective, lower, upper, seed []float64) (*Solution, error) {
	n, m := obj.Dim(), obj.NumResiduals()
	if len(seed) != n || len(lower) != n || len(upper) != n {
		return nil, errors.Errorf("dimension mismatch: objective has %d variables, seed %d, bounds %d/%d",
			n, len(seed), len(lower), len(upper))
	}

	q := project(seed, lower, upper)
	r := make([]float64, m)
	obj.Residuals(q, r)
	cost := floats.Dot(r, r)

	jac := mat.NewDense(m, n, nil)
	rVec := mat.NewVecDense(m, r)
	grad := mat.NewVecDense(n, nil)
	jtj := mat.NewSymDense(n, nil)
	damped := mat.NewSymDense(n, nil)
	step := mat.NewVecDense(n, nil)
	negGrad := mat.NewVecDense(n, nil)
	trial := make([]float64, n)
	trialR := make([]float64, m)
	scratch := make([]float64, m)

	damping := lmInitialDamping
	sol := &Solution{}
	for sol.Iterations < lm.opts.MaxIterations {
		sol.Iterations++

		numericJacobian(obj, q, r, upper, jac, scratch)
		grad.MulVec(jac.T(), rVec)
		if projectedGradientNorm(q, grad.RawVector().Data, lower, upper) < lm.opts.GradientTolerance {
			sol.Converged = true
			break
		}
		jtj.SymOuterK(1, jac.T())
		negGrad.ScaleVec(-1, grad)

		accepted := false
		trialCost := 0.
		for try := 0; try < lmMaxRejections; try++ {
			damped.CopySym(jtj)
			for i := 0; i < n; i++ {
				damped.SetSym(i, i, jtj.At(i, i)*(1+damping))
			}
			if err := solveSym(damped, negGrad, step); err != nil {
				damping *= lmDampingFactor
				continue
			}
			for i := range trial {
				trial[i] = q[i] + step.AtVec(i)
			}
			trial = project(trial, lower, upper)
			obj.Residuals(trial, trialR)
			trialCost = floats.Dot(trialR, trialR)
			if trialCost < cost {
				accepted = true
				break
			}
			damping *= lmDampingFactor
		}
		if !accepted {
			// No descent direction left at any damping: q is stationary within the bounds.
			lm.logger.Debugw("no damping made progress", "iteration", sol.Iterations, "damping", damping, "cost", cost)
			sol.Converged = true
			break
		}

		stepNorm := floats.Distance(trial, q, math.Inf(1))
		decrease := cost - trialCost
		copy(q, trial)
		copy(r, trialR)
		cost = trialCost
		damping = math.Max(damping/lmDampingFactor, lmMinDamping)
		if stepNorm < lm.opts.StepTolerance || decrease < lm.opts.CostTolerance*(1+cost) {
			sol.Converged = true
			break
		}
	}

	sol.Q = q
	sol.Cost = cost
	return sol, nil
}

// numericJacobian fills jac with forward differences of the residuals at q, whose residuals are r.
// The step is taken downward for variables that would cross their upper bound.
func numericJacobian(obj Objective, q, r, upper []float64, jac *mat.Dense, scratch []float64) {
	probe := append([]float64{}, q...)
	for i := range probe {
		h := jacobianStep
		if probe[i]+h > upper[i] {
			h = -h
		}
		probe[i] = q[i] + h
		obj.Residuals(probe, scratch)
		for k := range scratch {
			jac.Set(k, i, (scratch[k]-r[k])/h)
		}
		probe[i] = q[i]
	}
}

// projectedGradientNorm is the infinity norm of the gradient with components that push into an
// active bound zeroed.
func projectedGradientNorm(q, grad, lower, upper []float64) float64 {
	norm := 0.
	for i, g := range grad {
		if (q[i] <= lower[i] && g > 0) || (q[i] >= upper[i] && g < 0) {
			continue
		}
		norm = math.Max(norm, math.Abs(g))
	}
	return norm
}

// solveSym solves a x = b, preferring a Cholesky factorization and falling back to LU.
func solveSym(a *mat.SymDense, b, x *mat.VecDense) error {
	var chol mat.Cholesky
	if chol.Factorize(a) {
		return chol.SolveVecTo(x, b)
	}
	return x.SolveVec(a, b)
}

func project(q, lower, upper []float64) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = math.Min(math.Max(v, lower[i]), upper[i])
	}
	return out
}
