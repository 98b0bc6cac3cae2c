package ik

import (
	"testing"

	"go.viam.com/test"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

// funcObjective adapts a residual function to Objective.
type funcObjective struct {
	dim, residuals int
	f              func(q, out []float64)
}

func (o *funcObjective) Dim() int                   { return o.dim }
func (o *funcObjective) NumResiduals() int          { return o.residuals }
func (o *funcObjective) Residuals(q, out []float64) { o.f(q, out) }

func TestLMBoundedQuadratic(t *testing.T) {
	lm := NewLevenbergMarquardt(SolverOptions{}, logging.NewTestLogger(t))
	obj := &funcObjective{2, 2, func(q, out []float64) {
		out[0] = q[0] - 2
		out[1] = q[1] + 1
	}}
	sol, err := lm.Minimize(obj, []float64{0, -5}, []float64{1, 5}, []float64{0.5, 3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Converged, test.ShouldBeTrue)
	test.That(t, sol.Q[0], test.ShouldEqual, 1.)
	test.That(t, sol.Q[1], test.ShouldAlmostEqual, -1, 1e-6)
	test.That(t, sol.Cost, test.ShouldAlmostEqual, 1, 1e-6)
}

func TestLMRosenbrock(t *testing.T) {
	lm := NewLevenbergMarquardt(SolverOptions{MaxIterations: 500}, logging.NewTestLogger(t))
	obj := &funcObjective{2, 2, func(q, out []float64) {
		out[0] = 10 * (q[1] - q[0]*q[0])
		out[1] = 1 - q[0]
	}}
	sol, err := lm.Minimize(obj, []float64{-2, -2}, []float64{2, 2}, []float64{-1.2, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Q[0], test.ShouldAlmostEqual, 1, 1e-3)
	test.That(t, sol.Q[1], test.ShouldAlmostEqual, 1, 1e-3)
}

func TestLMIterationBudget(t *testing.T) {
	lm := NewLevenbergMarquardt(SolverOptions{MaxIterations: 2}, logging.NewTestLogger(t))
	obj := &funcObjective{2, 2, func(q, out []float64) {
		out[0] = 10 * (q[1] - q[0]*q[0])
		out[1] = 1 - q[0]
	}}
	sol, err := lm.Minimize(obj, []float64{-2, -2}, []float64{2, 2}, []float64{-1.2, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Converged, test.ShouldBeFalse)
	test.That(t, sol.Iterations, test.ShouldEqual, 2)
	for _, v := range sol.Q {
		test.That(t, v, test.ShouldBeBetweenOrEqual, -2, 2)
	}
}

func TestLMDimensionMismatch(t *testing.T) {
	lm := NewLevenbergMarquardt(SolverOptions{}, logging.NewTestLogger(t))
	obj := &funcObjective{2, 1, func(q, out []float64) {}}
	_, err := lm.Minimize(obj, []float64{0}, []float64{1}, []float64{0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegistry(t *testing.T) {
	test.That(t, MinimizerRegistered(DefaultSolver), test.ShouldBeTrue)
	test.That(t, RegisteredMinimizers(), test.ShouldContain, DefaultSolver)
	m, err := NewMinimizer(DefaultSolver, SolverOptions{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldHaveSameTypeAs, &LevenbergMarquardt{})

	_, err = NewMinimizer("simplex", SolverOptions{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, func() { RegisterMinimizer(DefaultSolver, nil) }, test.ShouldPanic)
}
