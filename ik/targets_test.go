package ik

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// fakeFK places the left hand at q[0] along x and the right hand at q[1] along y.
type fakeFK struct {
	err error
}

func (f *fakeFK) ComputeFK(q []float64) (spatialmath.Pose, spatialmath.Pose, error) {
	if f.err != nil {
		return spatialmath.Pose{}, spatialmath.Pose{}, f.err
	}
	return spatialmath.NewPoseFromPoint(r3.Vector{X: q[0]}), spatialmath.NewPoseFromPoint(r3.Vector{Y: q[1]}), nil
}

func TestTargetStoreSeeding(t *testing.T) {
	c := NewDefaultCalibrator()
	ts, err := NewTargetStore(&fakeFK{}, c, []float64{1, 2})
	test.That(t, err, test.ShouldBeNil)
	left, right := ts.Targets()
	test.That(t, left.Point(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, right.Point(), test.ShouldResemble, r3.Vector{Y: 2})
	// Stored in the marker convention.
	test.That(t, spatialmath.PoseAlmostCoincident(c.MarkerToEE(left), spatialmath.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeTrue)

	_, err = NewTargetStore(&fakeFK{err: errors.New("bad fk")}, c, []float64{1, 2})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTargetStoreAbsoluteIsolation(t *testing.T) {
	ts, err := NewTargetStore(&fakeFK{}, NewDefaultCalibrator(), []float64{1, 2})
	test.That(t, err, test.ShouldBeNil)
	_, right := ts.Targets()

	p := spatialmath.NewPoseFromXYZRPY(0, 0.5, 0, 0.1, 0.2, 0.3)
	ts.SetAbsolute(joints.Left, p)
	test.That(t, ts.Target(joints.Left), test.ShouldResemble, p)
	test.That(t, ts.Target(joints.Right), test.ShouldResemble, right)
}

func TestDeltaTranslationIsWorldFrame(t *testing.T) {
	start := spatialmath.NewPoseFromXYZRPY(1, 2, 3, 0, 0, math.Pi/2)
	moved := Delta{X: 0.1}.Apply(start)
	test.That(t, moved.Point().X, test.ShouldAlmostEqual, 1.1, 1e-12)
	test.That(t, moved.Point().Y, test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, moved.Orientation().AngleTo(start.Orientation()), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestDeltaRotationIsLocalFrame(t *testing.T) {
	start := spatialmath.NewPoseFromXYZRPY(0, 0, 0, math.Pi/2, 0, 0)
	moved := Delta{Yaw: 0.4}.Apply(start)

	local := start.Orientation().Mul(spatialmath.AxisRotation(r3.Vector{Z: 1}, 0.4))
	world := spatialmath.AxisRotation(r3.Vector{Z: 1}, 0.4).Mul(start.Orientation())
	test.That(t, moved.Orientation().AngleTo(local), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, moved.Orientation().AngleTo(world), test.ShouldBeGreaterThan, 0.1)
	test.That(t, moved.Point(), test.ShouldResemble, start.Point())
}

func TestDeltaAccumulates(t *testing.T) {
	ts, err := NewTargetStore(&fakeFK{}, NewDefaultCalibrator(), []float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	ts.ApplyDelta(joints.Left, Delta{X: 0.05})
	ts.ApplyDelta(joints.Left, Delta{X: 0.05})
	test.That(t, ts.Target(joints.Left).Point().X, test.ShouldAlmostEqual, 0.1, 1e-15)
	test.That(t, ts.Target(joints.Right).Point(), test.ShouldResemble, r3.Vector{})
}

func TestTargetStoreReset(t *testing.T) {
	fk := &fakeFK{}
	ts, err := NewTargetStore(fk, NewDefaultCalibrator(), []float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	ts.SetAbsolute(joints.Left, spatialmath.NewPoseFromXYZRPY(5, 5, 5, 0, 0, 0))

	test.That(t, ts.ResetToCurrent([]float64{3, 4}), test.ShouldBeNil)
	test.That(t, ts.Target(joints.Left).Point(), test.ShouldResemble, r3.Vector{X: 3})
	test.That(t, ts.Target(joints.Right).Point(), test.ShouldResemble, r3.Vector{Y: 4})

	fk.err = errors.New("bad fk")
	test.That(t, ts.ResetToCurrent([]float64{7, 7}), test.ShouldNotBeNil)
	test.That(t, ts.Target(joints.Left).Point(), test.ShouldResemble, r3.Vector{X: 3})
}
