// Package ik solves dual-arm inverse kinematics for the Mantis arms. A DualArmIK keeps a
// persistent target per arm in the marker frame, updates one side per call by absolute pose or
// by delta, and solves both arms together against the last accepted joint vector.
package ik

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Option customizes a DualArmIK.
type Option func(*options)

type options struct {
	minimizer Minimizer
	clock     clock.Clock
}

// WithMinimizer overrides the minimizer named in the config.
func WithMinimizer(m Minimizer) Option {
	return func(o *options) {
		o.minimizer = m
	}
}

// WithClock sets the clock used to time solves.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Stats counts solves since construction.
type Stats struct {
	Solves       uint64
	NotConverged uint64
	LastDuration time.Duration
}

// DualArmIK is the IK subsystem. All methods are safe for concurrent use; a call holds one lock
// across target update, solve and joint update, so a second caller waits for the first.
type DualArmIK struct {
	logger     logging.Logger
	model      *referenceframe.DualArmModel
	calibrator *Calibrator

	mu      sync.Mutex
	targets *TargetStore
	engine  *Engine

	solves       atomic.Uint64
	notConverged atomic.Uint64
	lastDuration atomic.Duration
}

// New builds the IK subsystem described by conf, starting from the joint vector initial. A nil
// initial starts at the model's reference configuration.
func New(conf *Config, initial []float64, logger logging.Logger, opts ...Option) (*DualArmIK, error) {
	if err := conf.Validate("ik"); err != nil {
		return nil, newConfigurationError(err)
	}
	model, err := conf.LoadModel()
	if err != nil {
		return nil, err
	}
	return NewFromModel(model, conf, initial, logger, opts...)
}

// NewFromModel builds the IK subsystem on an already reduced model.
func NewFromModel(
	model *referenceframe.DualArmModel,
	conf *Config,
	initial []float64,
	logger logging.Logger,
	opts ...Option,
) (*DualArmIK, error) {
	full := conf.WithDefaults()
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minimizer == nil {
		m, err := NewMinimizer(full.Solver, full.SolverOptions, logger.Sublogger(full.Solver))
		if err != nil {
			return nil, newConfigurationError(err)
		}
		o.minimizer = m
	}
	if initial == nil {
		initial = model.ReferenceConfiguration()
	}

	calibrator, err := newCalibratorFromConfig(full)
	if err != nil {
		return nil, newConfigurationError(err)
	}
	engine, err := NewEngine(model, full.Weights, o.minimizer, initial, o.clock, logger.Sublogger("engine"))
	if err != nil {
		return nil, err
	}
	targets, err := NewTargetStore(model, calibrator, engine.LastJoints())
	if err != nil {
		return nil, newConfigurationError(errors.Wrap(err, "seeding targets"))
	}
	return &DualArmIK{
		logger:     logger,
		model:      model,
		calibrator: calibrator,
		targets:    targets,
		engine:     engine,
	}, nil
}

// IK moves one arm's target and solves both arms. With absolute the arguments are the new target
// pose in the marker frame; otherwise they are a Delta applied to the current target. The other
// arm's target is held. On error the targets are left as they were.
func (ik *DualArmIK) IK(side joints.Side, x, y, z, roll, pitch, yaw float64, absolute bool) (*Result, error) {
	if side != joints.Left && side != joints.Right {
		return nil, newStageError(StageSolveSetup, errors.Errorf("unknown side %v", side))
	}
	ik.mu.Lock()
	defer ik.mu.Unlock()

	saved := ik.targets.snapshot()
	if absolute {
		ik.targets.SetAbsolute(side, spatialmath.NewPoseFromXYZRPY(x, y, z, roll, pitch, yaw))
	} else {
		ik.targets.ApplyDelta(side, Delta{X: x, Y: y, Z: z, Roll: roll, Pitch: pitch, Yaw: yaw})
	}
	res, err := ik.solveLocked()
	if err != nil {
		ik.targets.restore(saved)
		return nil, err
	}
	return res, nil
}

// SolveTargets sets both arms' targets in the marker frame and solves.
func (ik *DualArmIK) SolveTargets(left, right spatialmath.Pose) (*Result, error) {
	ik.mu.Lock()
	defer ik.mu.Unlock()

	saved := ik.targets.snapshot()
	ik.targets.SetAbsolute(joints.Left, left)
	ik.targets.SetAbsolute(joints.Right, right)
	res, err := ik.solveLocked()
	if err != nil {
		ik.targets.restore(saved)
		return nil, err
	}
	return res, nil
}

func (ik *DualArmIK) solveLocked() (*Result, error) {
	left, right := ik.targets.EETargets()
	res, err := ik.engine.Solve(left, right)
	if err != nil {
		return nil, err
	}
	ik.solves.Inc()
	if !res.Converged {
		ik.notConverged.Inc()
	}
	ik.lastDuration.Store(res.Duration)
	return res, nil
}

// JointNames returns the joint names in model order, matching Result.Joints.
func (ik *DualArmIK) JointNames() []string {
	return ik.model.JointNames()
}

// Limits returns the joint limits in model order.
func (ik *DualArmIK) Limits() []referenceframe.Limit {
	return ik.model.Limits()
}

// Model returns the reduced kinematic model.
func (ik *DualArmIK) Model() *referenceframe.DualArmModel {
	return ik.model
}

// Calibrator returns the marker calibration.
func (ik *DualArmIK) Calibrator() *Calibrator {
	return ik.calibrator
}

// ResetToCurrent re-seeds both targets from the last accepted joint vector. Targets are never
// reset implicitly.
func (ik *DualArmIK) ResetToCurrent() error {
	ik.mu.Lock()
	defer ik.mu.Unlock()
	return newStageError(StageFK, ik.targets.ResetToCurrent(ik.engine.LastJoints()))
}

// SyncJoints replaces the last accepted joint vector after joints were commanded outside IK. The
// targets are not touched; call ResetToCurrent to move them too.
func (ik *DualArmIK) SyncJoints(q []float64) error {
	ik.mu.Lock()
	defer ik.mu.Unlock()
	return ik.engine.SetLastJoints(q)
}

// LastJoints returns a copy of the last accepted joint vector.
func (ik *DualArmIK) LastJoints() []float64 {
	ik.mu.Lock()
	defer ik.mu.Unlock()
	return ik.engine.LastJoints()
}

// Target returns one arm's current target in the marker frame.
func (ik *DualArmIK) Target(side joints.Side) spatialmath.Pose {
	ik.mu.Lock()
	defer ik.mu.Unlock()
	return ik.targets.Target(side)
}

// SetTarget replaces one arm's target in the marker frame without solving, e.g. to put back a
// target whose solution could not be commanded.
func (ik *DualArmIK) SetTarget(side joints.Side, marker spatialmath.Pose) error {
	if side != joints.Left && side != joints.Right {
		return newStageError(StageSolveSetup, errors.Errorf("unknown side %v", side))
	}
	ik.mu.Lock()
	defer ik.mu.Unlock()
	ik.targets.SetAbsolute(side, marker)
	return nil
}

// Targets returns both current targets in the marker frame.
func (ik *DualArmIK) Targets() (spatialmath.Pose, spatialmath.Pose) {
	ik.mu.Lock()
	defer ik.mu.Unlock()
	return ik.targets.Targets()
}

// MarkerFK returns the pose of each hand in the marker frame for a joint vector.
func (ik *DualArmIK) MarkerFK(q []float64) (spatialmath.Pose, spatialmath.Pose, error) {
	left, right, err := ik.model.ComputeFK(q)
	if err != nil {
		return spatialmath.Pose{}, spatialmath.Pose{}, newStageError(StageFK, err)
	}
	return ik.calibrator.EEToMarker(left), ik.calibrator.EEToMarker(right), nil
}

// Stats returns solve counters.
func (ik *DualArmIK) Stats() Stats {
	return Stats{
		Solves:       ik.solves.Load(),
		NotConverged: ik.notConverged.Load(),
		LastDuration: ik.lastDuration.Load(),
	}
}
