package referenceframe

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// DualArmConfig names the free joints of each arm and the frame each arm is controlled at.
type DualArmConfig struct {
	LeftJoints  []string
	RightJoints []string
	LeftFrame   string
	RightFrame  string
}

// chainLink is one joint of an arm chain. index is the joint's position in the reduced joint
// vector, or -1 when the joint is locked at value.
type chainLink struct {
	joint *Joint
	index int
	value float64
}

// DualArmModel is a full model reduced to the free joints of two arms. Every other joint is locked
// at its reference value. Joints are ordered left arm first, then right arm, each in the order
// given by the config.
type DualArmModel struct {
	name       string
	jointNames []string
	limits     []Limit
	reference  []float64
	leftFrame  string
	rightFrame string
	leftChain  []chainLink
	rightChain []chainLink
}

// NewDualArmModel reduces m to the joints named in cfg and resolves each arm's frame.
func NewDualArmModel(m *Model, cfg DualArmConfig) (*DualArmModel, error) {
	if len(cfg.LeftJoints) == 0 || len(cfg.LeftJoints) != len(cfg.RightJoints) {
		return nil, errors.Wrapf(ErrJointCountMismatch, "left arm has %d joints, right arm has %d",
			len(cfg.LeftJoints), len(cfg.RightJoints))
	}
	names := append(append([]string{}, cfg.LeftJoints...), cfg.RightJoints...)
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, errors.Wrapf(ErrJointCountMismatch, "joints listed more than once: %v", dups)
	}

	var errs error
	for _, name := range names {
		joint, ok := m.Joint(name)
		switch {
		case !ok:
			errs = multierr.Append(errs, errors.Wrapf(ErrMissingJoint, "%q", name))
		case !joint.Actuated():
			errs = multierr.Append(errs, errors.Errorf("joint %q is fixed and cannot be free", name))
		}
	}
	for _, frame := range []string{cfg.LeftFrame, cfg.RightFrame} {
		if !m.HasFrame(frame) {
			errs = multierr.Append(errs, errors.Wrapf(ErrMissingFrame, "%q", frame))
		}
	}
	if errs != nil {
		return nil, errs
	}

	dam := &DualArmModel{
		name:       m.Name(),
		jointNames: names,
		leftFrame:  cfg.LeftFrame,
		rightFrame: cfg.RightFrame,
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		joint, _ := m.Joint(name)
		index[name] = i
		dam.limits = append(dam.limits, joint.Limit)
		dam.reference = append(dam.reference, joint.ReferenceValue())
	}

	var err error
	if dam.leftChain, err = buildChain(m, cfg.LeftFrame, cfg.LeftJoints, index); err != nil {
		return nil, errors.Wrap(err, "left arm")
	}
	if dam.rightChain, err = buildChain(m, cfg.RightFrame, cfg.RightJoints, index); err != nil {
		return nil, errors.Wrap(err, "right arm")
	}
	return dam, nil
}

// buildChain resolves the path to frame and checks that every joint of the arm lies on it.
func buildChain(m *Model, frame string, armJoints []string, index map[string]int) ([]chainLink, error) {
	joints, err := m.ChainTo(frame)
	if err != nil {
		return nil, err
	}
	onChain := lo.SliceToMap(joints, func(j *Joint) (string, bool) { return j.Name, true })
	if missing := lo.Reject(armJoints, func(name string, _ int) bool { return onChain[name] }); len(missing) > 0 {
		return nil, errors.Errorf("joints %v do not move frame %q", missing, frame)
	}

	chain := make([]chainLink, 0, len(joints))
	for _, joint := range joints {
		link := chainLink{joint: joint, index: -1, value: joint.ReferenceValue()}
		if i, ok := index[joint.Name]; ok {
			link.index = i
		}
		chain = append(chain, link)
	}
	return chain, nil
}

// Name returns the name of the underlying model.
func (dam *DualArmModel) Name() string {
	return dam.name
}

// DoF returns the number of free joints across both arms.
func (dam *DualArmModel) DoF() int {
	return len(dam.jointNames)
}

// ArmDoF returns the number of free joints of one arm.
func (dam *DualArmModel) ArmDoF() int {
	return len(dam.jointNames) / 2
}

// JointNames returns the free joint names in model order.
func (dam *DualArmModel) JointNames() []string {
	return append([]string{}, dam.jointNames...)
}

// Limits returns the limits of each free joint in model order.
func (dam *DualArmModel) Limits() []Limit {
	return append([]Limit{}, dam.limits...)
}

// ReferenceConfiguration returns the neutral joint vector: each free joint at zero moved into its limits.
func (dam *DualArmModel) ReferenceConfiguration() []float64 {
	return append([]float64{}, dam.reference...)
}

// Frames returns the left and right end-effector frame names.
func (dam *DualArmModel) Frames() (string, string) {
	return dam.leftFrame, dam.rightFrame
}

// ComputeFK returns the pose of each arm's end-effector frame in the root frame.
func (dam *DualArmModel) ComputeFK(q []float64) (spatialmath.Pose, spatialmath.Pose, error) {
	if len(q) != len(dam.jointNames) {
		return spatialmath.Pose{}, spatialmath.Pose{}, NewIncorrectDoFError(len(q), len(dam.jointNames))
	}
	return evalChain(dam.leftChain, q), evalChain(dam.rightChain, q), nil
}

func evalChain(chain []chainLink, q []float64) spatialmath.Pose {
	pose := spatialmath.NewZeroPose()
	for _, link := range chain {
		value := link.value
		if link.index >= 0 {
			value = q[link.index]
		}
		pose = spatialmath.Compose(pose, link.joint.Transform(value))
	}
	return pose
}
