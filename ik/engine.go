package ik

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// KinematicModel is what the engine needs from a reduced dual-arm model.
type KinematicModel interface {
	ForwardKinematics
	DoF() int
	JointNames() []string
	Limits() []referenceframe.Limit
	ReferenceConfiguration() []float64
}

// Result is the outcome of one solve. Joints is always within limits. When Converged is false the
// joints are the minimizer's best iterate and the targets may not be met.
type Result struct {
	Joints     []float64
	Converged  bool
	Iterations int
	Cost       float64
	Duration   time.Duration
}

// Engine solves the dual-arm IK problem. It owns the problem structure and the last accepted
// joint vector, which warm-starts each solve and anchors the smoothness term. An Engine is not
// safe for concurrent use.
type Engine struct {
	logger    logging.Logger
	clock     clock.Clock
	model     KinematicModel
	problem   *problem
	minimizer Minimizer
	limits    []referenceframe.Limit
	lower     []float64
	upper     []float64
	qPrev     []float64
}

// NewEngine builds the fixed problem for model. seed becomes the first warm start; it is clamped
// into the joint limits.
func NewEngine(
	model KinematicModel,
	weights Weights,
	minimizer Minimizer,
	seed []float64,
	clk clock.Clock,
	logger logging.Logger,
) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, newConfigurationError(err)
	}
	if minimizer == nil {
		return nil, newConfigurationError(errors.New("no minimizer"))
	}
	if len(seed) != model.DoF() {
		return nil, newConfigurationError(referenceframe.NewIncorrectDoFError(len(seed), model.DoF()))
	}
	if clk == nil {
		clk = clock.New()
	}
	limits := model.Limits()
	lower, upper := referenceframe.LimitsToArrays(limits)
	return &Engine{
		logger:    logger,
		clock:     clk,
		model:     model,
		problem:   newProblem(model, model.ReferenceConfiguration(), weights),
		minimizer: minimizer,
		limits:    limits,
		lower:     lower,
		upper:     upper,
		qPrev:     referenceframe.ClampToLimits(seed, limits),
	}, nil
}

// Solve finds the joint vector reaching both end-effector targets, warm-started at the last
// accepted joint vector. The result, converged or not, becomes the new last accepted vector.
func (e *Engine) Solve(leftEE, rightEE spatialmath.Pose) (*Result, error) {
	start := e.clock.Now()
	obj := e.problem.bind(leftEE, rightEE, e.qPrev)
	sol, err := e.minimizer.Minimize(obj, e.lower, e.upper, e.qPrev)
	if err != nil {
		return nil, newStageError(StageSolve, err)
	}
	if len(sol.Q) != len(e.qPrev) {
		return nil, newStageError(StageSolve, referenceframe.NewIncorrectDoFError(len(sol.Q), len(e.qPrev)))
	}

	q := sol.Q
	if err := referenceframe.CheckInputsInBounds(q, e.limits); err != nil {
		e.logger.Errorw("minimizer returned joints outside limits, clamping", "error", &BoundsViolation{Err: err})
		q = referenceframe.ClampToLimits(q, e.limits)
	}

	res := &Result{
		Joints:     append([]float64{}, q...),
		Converged:  sol.Converged,
		Iterations: sol.Iterations,
		Cost:       sol.Cost,
		Duration:   e.clock.Since(start),
	}
	e.qPrev = append([]float64{}, q...)

	if res.Converged {
		e.logger.Debugw("ik solved", "iterations", res.Iterations, "cost", res.Cost, "duration", res.Duration)
	} else {
		e.logger.Warnw("ik did not converge, returning best iterate", "iterations", res.Iterations, "cost", res.Cost)
	}
	return res, nil
}

// LastJoints returns a copy of the last accepted joint vector.
func (e *Engine) LastJoints() []float64 {
	return append([]float64{}, e.qPrev...)
}

// SetLastJoints replaces the last accepted joint vector, e.g. after joints were commanded directly.
// Values outside the limits are clamped.
func (e *Engine) SetLastJoints(q []float64) error {
	if len(q) != len(e.qPrev) {
		return referenceframe.NewIncorrectDoFError(len(q), len(e.qPrev))
	}
	if err := referenceframe.CheckInputsInBounds(q, e.limits); err != nil {
		e.logger.Warnw("synced joints outside limits, clamping", "error", err)
	}
	e.qPrev = referenceframe.ClampToLimits(q, e.limits)
	return nil
}
