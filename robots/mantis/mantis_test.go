package mantis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

func newTestRobot(t *testing.T, conf *Config) (*Robot, *RecordingCommander) {
	t.Helper()
	if conf == nil {
		conf = &Config{}
	}
	commander := &RecordingCommander{}
	r, err := NewRobot(conf, commander, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return r, commander
}

func TestNewRobotStartsAtNeutral(t *testing.T) {
	r, commander := newTestRobot(t, nil)
	test.That(t, commander.Commands(), test.ShouldBeEmpty)

	serial := r.Joints()
	test.That(t, serial, test.ShouldHaveLength, 14)
	test.That(t, serial["left_shoulder_yaw_joint"], test.ShouldEqual, 0.08)
	test.That(t, serial["right_shoulder_yaw_joint"], test.ShouldEqual, -0.08)
	test.That(t, serial["left_elbow_pitch_joint"], test.ShouldEqual, 0.)
	test.That(t, r.LeftArm().Side(), test.ShouldEqual, joints.Left)
	arm, err := r.Arm(joints.Right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm, test.ShouldEqual, r.RightArm())
	_, err = r.Arm(joints.Side(2))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestArmSetJoints(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	arm := r.RightArm()

	positions := []float64{-0.5, -0.3, 0.5, 1.0, 0.2, 0.1, -0.4}
	test.That(t, arm.SetJoints(ctx, positions, false), test.ShouldBeNil)
	test.That(t, arm.Positions(), test.ShouldResemble, positions)

	cmd, ok := commander.Last(joints.Right)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, cmd.Positions, test.ShouldHaveLength, 7)
	test.That(t, cmd.Positions["right_shoulder_roll_joint"], test.ShouldEqual, 0.5)
	_, ok = commander.Last(joints.Left)
	test.That(t, ok, test.ShouldBeFalse)

	// The IK warm start follows.
	q := r.Solver().LastJoints()
	test.That(t, q[7], test.ShouldEqual, -0.5)
	test.That(t, q[9], test.ShouldEqual, 0.5)
	test.That(t, q[13], test.ShouldEqual, -0.4)

	test.That(t, arm.SetJoints(ctx, positions[:3], false), test.ShouldNotBeNil)
}

func TestArmSetJointsLimits(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	arm := r.LeftArm()
	before := arm.Positions()

	err := arm.SetJoints(ctx, []float64{2, 0.5, 0, 0, 0, 0, 0}, false)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)
	test.That(t, commander.Commands(), test.ShouldBeEmpty)
	test.That(t, arm.Positions(), test.ShouldResemble, before)

	test.That(t, arm.SetJoints(ctx, []float64{2, 0.5, 0, 0, 0, 0, 0}, true), test.ShouldBeNil)
	test.That(t, arm.Positions()[0], test.ShouldEqual, 0.78)
	test.That(t, r.Solver().LastJoints()[0], test.ShouldEqual, 0.78)
}

func TestGeneratedSetters(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	arm := r.LeftArm()

	test.That(t, arm.SetElbowPitch(ctx, 1.2), test.ShouldBeNil)
	test.That(t, arm.ElbowPitch(), test.ShouldEqual, 1.2)
	cmd, _ := commander.Last(joints.Left)
	test.That(t, cmd.Positions, test.ShouldResemble, map[string]float64{"left_elbow_pitch_joint": 1.2})

	test.That(t, arm.SetWristPitch(ctx, 1), test.ShouldNotBeNil)
	test.That(t, arm.WristPitch(), test.ShouldEqual, 0.)
	test.That(t, arm.SetJoint(ctx, 7, 0), test.ShouldNotBeNil)
}

func TestClampConfig(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRobot(t, &Config{Clamp: true})
	test.That(t, r.LeftArm().SetWristPitch(ctx, 1), test.ShouldBeNil)
	test.That(t, r.LeftArm().WristPitch(), test.ShouldEqual, 0.52)
}

func TestHome(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRobot(t, nil)
	arm := r.LeftArm()
	test.That(t, arm.SetJoints(ctx, []float64{-1, 0.5, 0.3, 1, 0.2, 0.1, 0.3}, false), test.ShouldBeNil)
	test.That(t, arm.Home(ctx), test.ShouldBeNil)
	test.That(t, arm.Positions(), test.ShouldResemble, []float64{0, 0.08, 0, 0, 0, 0, 0})
	test.That(t, arm.Limits(), test.ShouldResemble, joints.LeftArmLimits)
}

func TestRobotIK(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	rightBefore := r.RightArm().Positions()

	res, err := r.LeftArm().IK(ctx, 0, 0.5, 0, 0, 0, 0, true)
	test.That(t, err, test.ShouldBeNil)

	left, _, err := r.Solver().MarkerFK(res.Joints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(left, spatialmath.NewPoseFromXYZRPY(0, 0.5, 0, 0, 0, 0), 5e-3, 0.02), test.ShouldBeTrue)

	// Both arms are commanded, each with its seven joints.
	test.That(t, commander.Commands(), test.ShouldHaveLength, 2)
	cmd, ok := commander.Last(joints.Left)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, cmd.Positions, test.ShouldHaveLength, 7)
	test.That(t, cmd.Positions["left_shoulder_pitch_joint"], test.ShouldEqual, res.Joints[0])

	for i, v := range r.RightArm().Positions() {
		test.That(t, v, test.ShouldAlmostEqual, rightBefore[i], 1e-4)
	}
	test.That(t, r.TargetPose(joints.Left).Point().Y, test.ShouldAlmostEqual, 0.5, 1e-12)
}

func TestRobotIKCommandFailure(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	commander.Err = errors.New("link down")
	before := r.Solver().LastJoints()
	serial := r.Joints()
	left, right := r.Solver().Targets()

	_, err := r.IK(ctx, joints.Left, 0, 0.5, 0, 0, 0, 0, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "link down")
	test.That(t, r.Solver().LastJoints(), test.ShouldResemble, before)
	test.That(t, r.Joints(), test.ShouldResemble, serial)
	test.That(t, spatialmath.PoseAlmostCoincident(r.TargetPose(joints.Left), left), test.ShouldBeTrue)

	// A relative move after the failure starts from the target the arm last reached.
	_, err = r.IK(ctx, joints.Left, 0, 0, 0.01, 0, 0, 0, false)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, r.TargetPose(joints.Left).Point().Z, test.ShouldAlmostEqual, left.Point().Z, 1e-12)

	_, err = r.DualIK(ctx, spatialmath.NewPoseFromXYZRPY(0, 0.5, 0, 0, 0, 0), spatialmath.NewPoseFromXYZRPY(0, -0.5, 0, 0, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
	gotLeft, gotRight := r.Solver().Targets()
	test.That(t, spatialmath.PoseAlmostCoincident(gotLeft, left), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincident(gotRight, right), test.ShouldBeTrue)
	test.That(t, r.Solver().LastJoints(), test.ShouldResemble, before)
}

// armFailingCommander records every command and fails those sent to one arm.
type armFailingCommander struct {
	RecordingCommander
	fail joints.Side
}

func (c *armFailingCommander) CommandArm(ctx context.Context, side joints.Side, positions map[string]float64) error {
	if err := c.RecordingCommander.CommandArm(ctx, side, positions); err != nil {
		return err
	}
	if side == c.fail {
		return errors.New("arm offline")
	}
	return nil
}

func TestRobotOneArmCommandFails(t *testing.T) {
	ctx := context.Background()
	commander := &armFailingCommander{fail: joints.Right}
	r, err := NewRobot(&Config{}, commander, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	rightJoints := r.RightArm().Positions()
	rightTarget := r.TargetPose(joints.Right)
	leftTarget := spatialmath.NewPoseFromXYZRPY(0, 0.5, 0, 0, 0, 0)

	_, err = r.DualIK(ctx, leftTarget, spatialmath.NewPoseFromXYZRPY(0, -0.5, 0, 0, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "right arm")

	// The left arm moved: its joints, warm start and target follow what was sent.
	sent, ok := commander.Last(joints.Left)
	test.That(t, ok, test.ShouldBeTrue)
	leftJoints := r.LeftArm().Positions()
	q := r.Solver().LastJoints()
	for i := 0; i < joints.NumArmJoints; i++ {
		v := sent.Positions[joints.SerialName(joints.Left, i)]
		test.That(t, leftJoints[i], test.ShouldEqual, v)
		test.That(t, q[i], test.ShouldEqual, v)
	}
	test.That(t, leftJoints[0], test.ShouldNotEqual, 0.)
	test.That(t, spatialmath.PoseAlmostCoincident(r.TargetPose(joints.Left), leftTarget), test.ShouldBeTrue)

	// The right arm did not.
	test.That(t, r.RightArm().Positions(), test.ShouldResemble, rightJoints)
	test.That(t, q[joints.NumArmJoints+1], test.ShouldEqual, -0.08)
	test.That(t, spatialmath.PoseAlmostCoincident(r.TargetPose(joints.Right), rightTarget), test.ShouldBeTrue)

	// Joint-space commands record the arm that took them too.
	err = r.SetJoints(ctx, map[string]float64{"left_elbow_pitch_joint": 0.5, "right_elbow_pitch_joint": 0.5})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, r.LeftArm().ElbowPitch(), test.ShouldEqual, 0.5)
	test.That(t, r.RightArm().ElbowPitch(), test.ShouldEqual, rightJoints[3])
	test.That(t, r.Solver().LastJoints()[3], test.ShouldEqual, 0.5)
}

func TestDualIK(t *testing.T) {
	ctx := context.Background()
	r, commander := newTestRobot(t, nil)
	left := spatialmath.NewPoseFromXYZRPY(0, 0.5, 0, 0, 0, 0)
	right := spatialmath.NewPoseFromXYZRPY(0, -0.5, 0, 0, 0, 0)

	res, err := r.DualIK(ctx, left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, commander.Commands(), test.ShouldHaveLength, 2)

	l, rr, err := r.Solver().MarkerFK(res.Joints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(l, left, 5e-3, 0.02), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(rr, right, 5e-3, 0.02), test.ShouldBeTrue)
}

func TestJointCommandsSyncWarmStartNotTargets(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRobot(t, nil)
	target := r.TargetPose(joints.Left)

	test.That(t, r.SetJoints(ctx, map[string]float64{"left_elbow_pitch_joint": 1}), test.ShouldBeNil)
	test.That(t, r.Solver().LastJoints()[3], test.ShouldEqual, 1.)
	test.That(t, spatialmath.PoseAlmostCoincident(r.TargetPose(joints.Left), target), test.ShouldBeTrue)

	test.That(t, r.ResetTargets(), test.ShouldBeNil)
	moved, _, err := r.Solver().MarkerFK(r.Solver().LastJoints())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostCoincident(r.TargetPose(joints.Left), moved), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincident(moved, target), test.ShouldBeFalse)

	err = r.SetJoints(ctx, map[string]float64{"left_pinky_joint": 1})
	var mappingErr *joints.MappingError
	test.That(t, errors.As(err, &mappingErr), test.ShouldBeTrue)
}

func TestConfigFromAttributes(t *testing.T) {
	conf, err := NewConfigFromAttributes(map[string]interface{}{
		"clamp":          true,
		"max_iterations": 200,
		"initial_joints": map[string]interface{}{"left_elbow_pitch_joint": 0.5},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Clamp, test.ShouldBeTrue)
	test.That(t, conf.MaxIterations, test.ShouldEqual, 200)
	test.That(t, conf.InitialJoints["left_elbow_pitch_joint"], test.ShouldEqual, 0.5)
	test.That(t, conf.Validate("mantis"), test.ShouldBeNil)

	r, _ := newTestRobot(t, conf)
	test.That(t, r.LeftArm().ElbowPitch(), test.ShouldEqual, 0.5)
	test.That(t, r.Solver().LastJoints()[3], test.ShouldEqual, 0.5)

	_, err = NewConfigFromAttributes(map[string]interface{}{"clmp": true})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	err := (&Config{InitialJoints: map[string]float64{"left_pinky_joint": 0}}).Validate("mantis")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left_pinky_joint")

	conf := &Config{InitialJoints: map[string]float64{"left_wrist_pitch_joint": 1}}
	test.That(t, conf.Validate("mantis"), test.ShouldNotBeNil)
	conf.Clamp = true
	test.That(t, conf.Validate("mantis"), test.ShouldBeNil)
	r, _ := newTestRobot(t, conf)
	test.That(t, r.LeftArm().WristPitch(), test.ShouldEqual, 0.52)

	_, err = NewRobot(&Config{Config: ik.Config{LeftFrame: "nope"}}, &RecordingCommander{}, logging.NewTestLogger(t))
	test.That(t, ik.IsConfigurationError(err), test.ShouldBeTrue)
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mantis.json")
	test.That(t, os.WriteFile(path, []byte(`{
	// clamp out of range commands
	"clamp": true,
	"weights": {"position": 100, "orientation": 10, "regularization": 1, "smoothness": 0.1,},
}`), 0o600), test.ShouldBeNil)

	conf, err := ReadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Clamp, test.ShouldBeTrue)
	test.That(t, conf.Weights.Position, test.ShouldEqual, 100.)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRecordingCommanderRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &RecordingCommander{}
	test.That(t, c.CommandArm(ctx, joints.Left, map[string]float64{}), test.ShouldNotBeNil)
	test.That(t, c.Commands(), test.ShouldBeEmpty)
}
