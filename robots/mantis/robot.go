// Package mantis drives the two arms of a Mantis robot: joint-space commands, Cartesian IK
// commands, and the bookkeeping that keeps the IK warm start in step with what was commanded.
package mantis

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Robot is a Mantis robot. Every command goes through one lock, so joint-space and IK commands
// never interleave.
type Robot struct {
	logger    logging.Logger
	clamp     bool
	solver    *ik.DualArmIK
	adapter   *joints.Adapter
	commander JointCommander
	arms      [2]*Arm

	mu sync.Mutex
	// serial is the last commanded value of every arm joint, by serial name.
	serial map[string]float64
}

// NewRobot builds a robot from conf. Nothing is commanded until the first call.
func NewRobot(conf *Config, commander JointCommander, logger logging.Logger, opts ...ik.Option) (*Robot, error) {
	if err := conf.Validate("mantis"); err != nil {
		return nil, err
	}
	model, err := conf.LoadModel()
	if err != nil {
		return nil, err
	}
	adapter, err := joints.NewAdapter(joints.Table(), model.JointNames())
	if err != nil {
		return nil, errors.Wrap(err, "model joints do not match the joint table")
	}
	initial, err := adapter.FromSerial(
		clampSerial(adapter, conf.InitialJoints),
		model.ReferenceConfiguration(),
	)
	if err != nil {
		return nil, err
	}
	solver, err := ik.NewFromModel(model, &conf.Config, initial, logger.Sublogger("ik"), opts...)
	if err != nil {
		return nil, err
	}
	serial, err := adapter.ToSerial(solver.LastJoints())
	if err != nil {
		return nil, err
	}

	r := &Robot{
		logger:    logger,
		clamp:     conf.Clamp,
		solver:    solver,
		adapter:   adapter,
		commander: commander,
		serial:    serial,
	}
	r.arms[joints.Left] = &Arm{robot: r, side: joints.Left}
	r.arms[joints.Right] = &Arm{robot: r, side: joints.Right}
	return r, nil
}

func clampSerial(adapter *joints.Adapter, serial map[string]float64) map[string]float64 {
	return lo.MapValues(serial, func(v float64, name string) float64 {
		j, err := adapter.Joint(name)
		if err != nil {
			return v
		}
		return j.Limit.Clamp(v)
	})
}

// Arm returns one arm.
func (r *Robot) Arm(side joints.Side) (*Arm, error) {
	if side != joints.Left && side != joints.Right {
		return nil, errors.Errorf("unknown side %v", side)
	}
	return r.arms[side], nil
}

// LeftArm returns the left arm.
func (r *Robot) LeftArm() *Arm {
	return r.arms[joints.Left]
}

// RightArm returns the right arm.
func (r *Robot) RightArm() *Arm {
	return r.arms[joints.Right]
}

// Solver returns the IK subsystem.
func (r *Robot) Solver() *ik.DualArmIK {
	return r.solver
}

// IK moves one hand's target, absolutely or by a delta in the marker frame, solves both arms, and
// commands both arms to the result. An arm whose command fails keeps its joints and its target.
func (r *Robot) IK(
	ctx context.Context,
	side joints.Side,
	x, y, z, roll, pitch, yaw float64,
	absolute bool,
) (*ik.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.savedTargets()
	res, err := r.solver.IK(side, x, y, z, roll, pitch, yaw, absolute)
	if err != nil {
		return nil, err
	}
	if err := r.commandSolutionLocked(ctx, res, saved); err != nil {
		return nil, err
	}
	return res, nil
}

// DualIK sets both hands' targets in the marker frame, solves once, and commands both arms.
func (r *Robot) DualIK(ctx context.Context, left, right spatialmath.Pose) (*ik.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.savedTargets()
	res, err := r.solver.SolveTargets(left, right)
	if err != nil {
		return nil, err
	}
	if err := r.commandSolutionLocked(ctx, res, saved); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Robot) savedTargets() [2]spatialmath.Pose {
	left, right := r.solver.Targets()
	return [2]spatialmath.Pose{left, right}
}

// commandSolutionLocked sends an IK result. An arm whose command fails keeps its last commanded
// joints, and its target goes back to the one saved before the solve.
func (r *Robot) commandSolutionLocked(ctx context.Context, res *ik.Result, saved [2]spatialmath.Pose) error {
	serial, err := r.adapter.ToSerial(res.Joints)
	if err != nil {
		return multierr.Combine(
			&ik.StageError{Stage: ik.StageMapping, Err: err},
			r.rollbackLocked(saved, []joints.Side{joints.Left, joints.Right}),
		)
	}
	failed, err := r.sendLocked(ctx, serial)
	if err != nil {
		return multierr.Combine(errors.Wrap(err, "commanding ik solution"), r.rollbackLocked(saved, failed))
	}
	return nil
}

// rollbackLocked restores the targets of the failed sides and points the IK warm start at the
// joints that were actually commanded.
func (r *Robot) rollbackLocked(saved [2]spatialmath.Pose, failed []joints.Side) error {
	errs := r.syncSolverLocked()
	for _, side := range failed {
		errs = multierr.Append(errs, r.solver.SetTarget(side, saved[side]))
	}
	return errs
}

// syncSolverLocked sets the IK warm start to the last commanded joints.
func (r *Robot) syncSolverLocked() error {
	q, err := r.adapter.FromSerial(r.serial, r.solver.LastJoints())
	if err != nil {
		return err
	}
	return r.solver.SyncJoints(q)
}

// SetJoints commands joints by serial name. Joints not named hold their last commanded value. The IK
// warm start follows; the IK targets do not, until ResetTargets.
func (r *Robot) SetJoints(ctx context.Context, serial map[string]float64) error {
	return r.setJoints(ctx, serial, r.clamp)
}

func (r *Robot) setJoints(ctx context.Context, serial map[string]float64, clamp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	checked, err := r.checkLimits(serial, clamp)
	if err != nil {
		return err
	}
	_, err = r.sendLocked(ctx, checked)
	return multierr.Combine(err, r.syncSolverLocked())
}

func (r *Robot) checkLimits(serial map[string]float64, clamp bool) (map[string]float64, error) {
	checked := make(map[string]float64, len(serial))
	var errs error
	for name, v := range serial {
		j, err := r.adapter.Joint(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !j.Limit.Contains(v) {
			if !clamp {
				errs = multierr.Append(errs, errors.Errorf("%s: %s value %.4f not in [%.4f, %.4f]",
					referenceframe.OOBErrString, name, v, j.Limit.Min, j.Limit.Max))
				continue
			}
			r.logger.Debugw("clamping joint command", "joint", name, "value", v)
			v = j.Limit.Clamp(v)
		}
		checked[name] = v
	}
	return checked, errs
}

// sendLocked commands each arm named in serial in parallel. An arm's values are recorded only when
// its command succeeds; the sides whose command failed are returned with the error.
func (r *Robot) sendLocked(ctx context.Context, serial map[string]float64) ([]joints.Side, error) {
	sides := []joints.Side{joints.Left, joints.Right}
	var wg sync.WaitGroup
	var positions [2]map[string]float64
	var errs [2]error
	for _, side := range sides {
		side := side
		positions[side] = lo.PickBy(serial, func(name string, _ float64) bool {
			j, err := r.adapter.Joint(name)
			return err == nil && j.Side == side
		})
		if len(positions[side]) == 0 {
			continue
		}
		wg.Add(1)
		goutils.PanicCapturingGo(func() {
			defer wg.Done()
			errs[side] = errors.Wrapf(r.commander.CommandArm(ctx, side, positions[side]), "%s arm", side)
		})
	}
	wg.Wait()

	var failed []joints.Side
	for _, side := range sides {
		if errs[side] != nil {
			failed = append(failed, side)
			continue
		}
		for name, v := range positions[side] {
			r.serial[name] = v
		}
	}
	return failed, multierr.Combine(errs[:]...)
}

// Joints returns the last commanded value of every arm joint by serial name.
func (r *Robot) Joints() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Assign(r.serial)
}

// TargetPose returns one hand's IK target in the marker frame.
func (r *Robot) TargetPose(side joints.Side) spatialmath.Pose {
	return r.solver.Target(side)
}

// ResetTargets moves both IK targets to where the hands are at the last commanded joints.
func (r *Robot) ResetTargets() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.solver.ResetToCurrent()
}
