package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe/urdf"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

var (
	leftArm = []string{
		"L_Shoulder_Pitch_Joint", "L_Shoulder_Yaw_Joint", "L_Shoulder_Roll_Joint", "L_Elbow_Pitch_Joint",
		"L_Wrist_Roll_Joint", "L_Wrist_Pitch_Joint", "L_Wrist_Yaw_Joint",
	}
	rightArm = []string{
		"R_Shoulder_Pitch_Joint", "R_Shoulder_Yaw_Joint", "R_Shoulder_Roll_Joint", "R_Elbow_Pitch_Joint",
		"R_Wrist_Roll_Joint", "R_Wrist_Pitch_Joint", "R_Wrist_Yaw_Joint",
	}
)

func mantisConfig() DualArmConfig {
	return DualArmConfig{
		LeftJoints:  leftArm,
		RightJoints: rightArm,
		LeftFrame:   "L_Wrist_Yaw_Joint",
		RightFrame:  "R_Wrist_Yaw_Joint",
	}
}

func TestParseMantisURDF(t *testing.T) {
	m, err := ParseURDF(urdf.Mantis)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "mantis")
	test.That(t, m.Root(), test.ShouldEqual, "base_link")

	yaw, ok := m.Joint("R_Shoulder_Yaw_Joint")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, yaw.Limit, test.ShouldResemble, Limit{Min: -1.04, Max: -0.08})
	test.That(t, yaw.ReferenceValue(), test.ShouldEqual, -0.08)
	test.That(t, yaw.Axis, test.ShouldResemble, r3.Vector{X: 1})

	hand, ok := m.Joint("L_Hand_Joint")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hand.Actuated(), test.ShouldBeFalse)

	chain, err := m.ChainTo("L_Hand_Link")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chain[0].Name, test.ShouldEqual, "Waist_Yaw_Joint")
	test.That(t, chain[len(chain)-1].Name, test.ShouldEqual, "L_Hand_Joint")

	_, err = m.ChainTo("nope")
	test.That(t, errors.Is(err, ErrMissingFrame), test.ShouldBeTrue)
}

func TestParseURDFErrors(t *testing.T) {
	_, err := ParseURDF(nil)
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = ParseURDF([]byte(`<robot name="x"></robot>`))
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = ParseURDF([]byte(`<robot name="x"><joint name="a" type="planar">
		<parent link="p"/><child link="c"/></joint></robot>`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported joint type")

	_, err = ParseURDF([]byte(`<robot name="x"><joint name="a" type="revolute">
		<parent link="p"/><child link="c"/></joint></robot>`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "limit")

	_, err = ParseURDF([]byte(`<robot name="x"><joint name="a" type="fixed">
		<origin xyz="0 0"/><parent link="p"/><child link="c"/></joint></robot>`))
	test.That(t, err, test.ShouldNotBeNil)

	// Two roots.
	_, err = ParseURDF([]byte(`<robot name="x">
		<joint name="a" type="fixed"><parent link="p"/><child link="c"/></joint>
		<joint name="b" type="fixed"><parent link="q"/><child link="d"/></joint></robot>`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exactly one root")
}

func TestJointTransform(t *testing.T) {
	j := &Joint{
		Type:   RevoluteJoint,
		Origin: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
		Axis:   r3.Vector{Z: 1},
	}
	p := j.Transform(math.Pi / 2)
	test.That(t, p.Point().Z, test.ShouldAlmostEqual, 1)
	test.That(t, p.Orientation().MulVec(r3.Vector{X: 1}).Y, test.ShouldAlmostEqual, 1)

	j.Type = PrismaticJoint
	p = j.Transform(0.25)
	test.That(t, p.Point().Z, test.ShouldAlmostEqual, 1.25)
}

func TestLimits(t *testing.T) {
	limits := []Limit{{-1, 1}, {0.08, 1.04}}
	test.That(t, CheckInputsInBounds([]float64{0, 0.5}, limits), test.ShouldBeNil)
	err := CheckInputsInBounds([]float64{2, 0}, limits)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)
	test.That(t, ClampToLimits([]float64{2, 0}, limits), test.ShouldResemble, []float64{1, 0.08})

	err = CheckInputsInBounds([]float64{0}, limits)
	test.That(t, errors.Is(err, ErrJointCountMismatch), test.ShouldBeTrue)

	mins, maxes := LimitsToArrays(limits)
	test.That(t, mins, test.ShouldResemble, []float64{-1, 0.08})
	test.That(t, maxes, test.ShouldResemble, []float64{1, 1.04})
}
