package mantis

//go:generate go run ../../internal/cmd/jointgen -o setters_generated.go

import (
	"context"

	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
)

// Arm is one 7-joint arm of a Robot. Joint values are in the serial convention, in
// joints.ArmJoints order.
type Arm struct {
	robot *Robot
	side  joints.Side
}

// Side returns which arm this is.
func (a *Arm) Side() joints.Side {
	return a.side
}

// SetJoints commands all seven joints. Values outside the soft limits are clamped when clamp is set
// and rejected otherwise.
func (a *Arm) SetJoints(ctx context.Context, positions []float64, clamp bool) error {
	if len(positions) != joints.NumArmJoints {
		return referenceframe.NewIncorrectDoFError(len(positions), joints.NumArmJoints)
	}
	serial := make(map[string]float64, joints.NumArmJoints)
	for i, v := range positions {
		serial[joints.SerialName(a.side, i)] = v
	}
	return a.robot.setJoints(ctx, serial, clamp)
}

// SetJoint commands one joint by index, holding the others. The robot's clamp setting applies.
func (a *Arm) SetJoint(ctx context.Context, index int, value float64) error {
	if index < 0 || index >= joints.NumArmJoints {
		return errors.Errorf("joint index %d out of range [0, %d)", index, joints.NumArmJoints)
	}
	return a.robot.SetJoints(ctx, map[string]float64{joints.SerialName(a.side, index): value})
}

// Home commands every joint to zero, clamped into its limits.
func (a *Arm) Home(ctx context.Context) error {
	return a.SetJoints(ctx, make([]float64, joints.NumArmJoints), true)
}

// Positions returns the last commanded joint values.
func (a *Arm) Positions() []float64 {
	serial := a.robot.Joints()
	out := make([]float64, joints.NumArmJoints)
	for i := range out {
		out[i] = serial[joints.SerialName(a.side, i)]
	}
	return out
}

// Limits returns the soft joint limits.
func (a *Arm) Limits() [joints.NumArmJoints]referenceframe.Limit {
	return joints.ArmLimits(a.side)
}

// IK moves this hand's target and solves both arms. See Robot.IK.
func (a *Arm) IK(ctx context.Context, x, y, z, roll, pitch, yaw float64, absolute bool) (*ik.Result, error) {
	return a.robot.IK(ctx, a.side, x, y, z, roll, pitch, yaw, absolute)
}
