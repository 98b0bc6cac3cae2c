// Package joints holds the fixed table of Mantis arm joints as the robot's joint command topic
// names them, and the adapter between that serial convention and the kinematic model's.
package joints

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
)

// NumArmJoints is the number of joints on each arm.
const NumArmJoints = 7

// Side selects an arm.
type Side int

const (
	// Left is the robot's left arm.
	Left Side = iota
	// Right is the robot's right arm.
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide parses "left"/"right" (or "l"/"r"), case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return Left, errors.Errorf("side must be left or right, got %q", s)
}

// Spec describes one joint position within an arm.
type Spec struct {
	Index int
	// Name is the snake_case joint name without side prefix, e.g. "shoulder_pitch".
	Name string
	// Method is the CamelCase name used for generated setters, e.g. "ShoulderPitch".
	Method      string
	Description string
}

// ArmJoints lists the joints of one arm from shoulder to wrist.
var ArmJoints = [NumArmJoints]Spec{
	{0, "shoulder_pitch", "ShoulderPitch", "shoulder pitch"},
	{1, "shoulder_yaw", "ShoulderYaw", "shoulder yaw"},
	{2, "shoulder_roll", "ShoulderRoll", "shoulder roll"},
	{3, "elbow_pitch", "ElbowPitch", "elbow pitch"},
	{4, "wrist_roll", "WristRoll", "wrist roll"},
	{5, "wrist_pitch", "WristPitch", "wrist pitch"},
	{6, "wrist_yaw", "WristYaw", "wrist yaw"},
}

// Joint limits in radians, in ArmJoints order, as the serial convention sees them.
var (
	LeftArmLimits = [NumArmJoints]referenceframe.Limit{
		{Min: -2.61, Max: 0.78},
		{Min: 0.08, Max: 1.04},
		{Min: -1.57, Max: 1.57},
		{Min: -0.78, Max: 1.57},
		{Min: -1.57, Max: 1.57},
		{Min: -0.52, Max: 0.52},
		{Min: -1.57, Max: 1.57},
	}
	RightArmLimits = [NumArmJoints]referenceframe.Limit{
		{Min: -2.61, Max: 0.78},
		{Min: -1.04, Max: -0.08},
		{Min: -1.57, Max: 1.57},
		{Min: -0.78, Max: 1.57},
		{Min: -1.57, Max: 1.57},
		{Min: -0.52, Max: 0.52},
		{Min: -1.57, Max: 1.57},
	}
)

// Limits of the joints outside the arms.
var (
	HeadPitchLimit = referenceframe.Limit{Min: -0.7, Max: 0.2}
	HeadYawLimit   = referenceframe.Limit{Min: -1.57, Max: 1.57}
	// GripperLimit is normalized: 0 is closed, 1 fully open.
	GripperLimit = referenceframe.Limit{Min: 0, Max: 1}
)

// Topic names used by the transport collaborator.
const (
	TopicJointCommand  = "Teleop/joint_angle_solution/smooth"
	TopicGripper       = "Teleop/gripper_pos"
	TopicHead          = "Teleop/head_pose"
	TopicChassis       = "Teleop/cmd_vel"
	TopicPelvis        = "Teleop/pelvis_speed"
	TopicJointFeedback = "joint_states_fdb"
	TopicForceFeedback = "force_feedback"
)

// Joint is one row of the serial joint table.
type Joint struct {
	Spec
	Side Side
	// Serial is the name on the joint command topic, e.g. "left_shoulder_pitch_joint".
	Serial string
	// Model is the name in the kinematic model, e.g. "L_Shoulder_Pitch_Joint".
	Model string
	// Limit is the soft limit in the serial convention.
	Limit referenceframe.Limit
	// Sign converts a model angle to a serial angle: serial = Sign * model. Every row of the Mantis
	// table is +1.
	Sign float64
}

// ToSerial converts a model angle to the serial convention.
func (j Joint) ToSerial(model float64) float64 {
	return j.Sign * model
}

// ToModel converts a serial angle to the model convention.
func (j Joint) ToModel(serial float64) float64 {
	// Sign is +-1 so it is its own inverse.
	return j.Sign * serial
}

// ModelLimit returns the joint's limit in the model convention.
func (j Joint) ModelLimit() referenceframe.Limit {
	if j.Sign < 0 {
		return referenceframe.Limit{Min: -j.Limit.Max, Max: -j.Limit.Min}
	}
	return j.Limit
}

// SerialName returns the serial name of an arm joint.
func SerialName(side Side, index int) string {
	return fmt.Sprintf("%s_%s_joint", side, ArmJoints[index].Name)
}

// ModelName returns the kinematic model name of an arm joint.
func ModelName(side Side, index int) string {
	prefix := "L"
	if side == Right {
		prefix = "R"
	}
	parts := strings.Split(ArmJoints[index].Name, "_")
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return prefix + "_" + strings.Join(parts, "_") + "_Joint"
}

// ArmLimits returns the serial limits of one arm.
func ArmLimits(side Side) [NumArmJoints]referenceframe.Limit {
	if side == Right {
		return RightArmLimits
	}
	return LeftArmLimits
}

// Table returns every arm joint, left arm first, each arm in ArmJoints order.
func Table() []Joint {
	table := make([]Joint, 0, 2*NumArmJoints)
	for _, side := range []Side{Left, Right} {
		limits := ArmLimits(side)
		for i, spec := range ArmJoints {
			table = append(table, Joint{
				Spec:   spec,
				Side:   side,
				Serial: SerialName(side, i),
				Model:  ModelName(side, i),
				Limit:  limits[i],
				Sign:   1,
			})
		}
	}
	return table
}

// SerialNames returns the serial names of every arm joint in Table order.
func SerialNames() []string {
	names := make([]string, 0, 2*NumArmJoints)
	for _, j := range Table() {
		names = append(names, j.Serial)
	}
	return names
}

// ModelNames returns the model names of one arm's joints in ArmJoints order.
func ModelNames(side Side) []string {
	names := make([]string, 0, NumArmJoints)
	for i := range ArmJoints {
		names = append(names, ModelName(side, i))
	}
	return names
}
