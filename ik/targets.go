package ik

import (
	"github.com/golang/geo/r3"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// ForwardKinematics computes both end-effector poses from a joint vector.
type ForwardKinematics interface {
	ComputeFK(q []float64) (spatialmath.Pose, spatialmath.Pose, error)
}

// Delta is an incremental pose change. The translation is applied in the world frame; the rotation
// (fixed-axis roll, pitch, yaw) is applied about the target's own axes.
type Delta struct {
	X, Y, Z          float64
	Roll, Pitch, Yaw float64
}

// Apply composes the delta onto a pose.
func (d Delta) Apply(p spatialmath.Pose) spatialmath.Pose {
	rot := (&spatialmath.EulerAngles{Roll: d.Roll, Pitch: d.Pitch, Yaw: d.Yaw}).RotationMatrix()
	return spatialmath.NewPose(
		p.Point().Add(r3.Vector{X: d.X, Y: d.Y, Z: d.Z}),
		p.Orientation().Mul(rot),
	)
}

// TargetStore holds the target of each arm in the marker frame. Each mutation touches exactly one
// side. It is not safe for concurrent use; DualArmIK serializes access.
type TargetStore struct {
	fk         ForwardKinematics
	calibrator *Calibrator
	targets    [2]spatialmath.Pose
}

// NewTargetStore seeds both targets from the forward kinematics of q.
func NewTargetStore(fk ForwardKinematics, calibrator *Calibrator, q []float64) (*TargetStore, error) {
	ts := &TargetStore{fk: fk, calibrator: calibrator}
	if err := ts.ResetToCurrent(q); err != nil {
		return nil, err
	}
	return ts, nil
}

// Targets returns the left and right targets in the marker frame.
func (ts *TargetStore) Targets() (spatialmath.Pose, spatialmath.Pose) {
	return ts.targets[joints.Left], ts.targets[joints.Right]
}

// Target returns one side's target in the marker frame.
func (ts *TargetStore) Target(side joints.Side) spatialmath.Pose {
	return ts.targets[side]
}

// SetAbsolute replaces one side's target. The other side's target is left as is.
func (ts *TargetStore) SetAbsolute(side joints.Side, marker spatialmath.Pose) {
	ts.targets[side] = marker
}

// ApplyDelta composes a delta onto one side's target.
func (ts *TargetStore) ApplyDelta(side joints.Side, delta Delta) {
	ts.targets[side] = delta.Apply(ts.targets[side])
}

// ResetToCurrent re-seeds both targets from the forward kinematics of q. Nothing is changed on error.
func (ts *TargetStore) ResetToCurrent(q []float64) error {
	left, right, err := ts.fk.ComputeFK(q)
	if err != nil {
		return err
	}
	ts.targets[joints.Left] = ts.calibrator.EEToMarker(left)
	ts.targets[joints.Right] = ts.calibrator.EEToMarker(right)
	return nil
}

// EETargets returns both targets converted to the end-effector frame.
func (ts *TargetStore) EETargets() (spatialmath.Pose, spatialmath.Pose) {
	return ts.calibrator.MarkerToEE(ts.targets[joints.Left]), ts.calibrator.MarkerToEE(ts.targets[joints.Right])
}

func (ts *TargetStore) snapshot() [2]spatialmath.Pose {
	return ts.targets
}

func (ts *TargetStore) restore(targets [2]spatialmath.Pose) {
	ts.targets = targets
}
