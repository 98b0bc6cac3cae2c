package referenceframe

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Joint is one edge of the kinematic tree. Origin places the joint frame in the parent link
// frame; the joint's motion is applied after it.
type Joint struct {
	Name   string
	Type   string
	Parent string
	Child  string
	Origin spatialmath.Pose
	Axis   r3.Vector
	Limit  Limit
}

// Actuated returns whether the joint has a degree of freedom.
func (j *Joint) Actuated() bool {
	return j.Type != FixedJoint
}

// Transform returns the pose of the child link in the parent link frame for the given joint value.
func (j *Joint) Transform(value float64) spatialmath.Pose {
	switch j.Type {
	case RevoluteJoint, ContinuousJoint:
		return spatialmath.Compose(j.Origin, spatialmath.NewPose(r3.Vector{}, spatialmath.AxisRotation(j.Axis, value)))
	case PrismaticJoint:
		return spatialmath.Compose(j.Origin, spatialmath.NewPoseFromPoint(j.Axis.Mul(value)))
	default:
		return j.Origin
	}
}

// ReferenceValue is the value the joint is held at when it is not free: zero moved into its limits.
func (j *Joint) ReferenceValue() float64 {
	if !j.Actuated() {
		return 0
	}
	return j.Limit.Clamp(0)
}

// Model is a full kinematic tree as parsed from a structural description.
type Model struct {
	name   string
	root   string
	joints []*Joint
	// joint name -> joint
	byName map[string]*Joint
	// link name -> the joint whose child it is
	byChild map[string]*Joint
	links   map[string]bool
}

// NewModel checks the joints form a single tree and indexes them.
func NewModel(name string, links []string, joints []*Joint) (*Model, error) {
	if len(joints) == 0 {
		return nil, ErrNoModelInformation
	}
	m := &Model{
		name:    name,
		joints:  joints,
		byName:  make(map[string]*Joint, len(joints)),
		byChild: make(map[string]*Joint, len(joints)),
		links:   make(map[string]bool, len(links)),
	}
	for _, link := range links {
		m.links[link] = true
	}
	for _, joint := range joints {
		if _, ok := m.byName[joint.Name]; ok {
			return nil, errors.Errorf("duplicate joint name %q", joint.Name)
		}
		if other, ok := m.byChild[joint.Child]; ok {
			return nil, errors.Errorf("link %q is the child of both %q and %q", joint.Child, other.Name, joint.Name)
		}
		m.byName[joint.Name] = joint
		m.byChild[joint.Child] = joint
		m.links[joint.Parent] = true
		m.links[joint.Child] = true
	}

	var roots []string
	for link := range m.links {
		if _, ok := m.byChild[link]; !ok {
			roots = append(roots, link)
		}
	}
	if len(roots) != 1 {
		sort.Strings(roots)
		return nil, errors.Errorf("model must have exactly one root link, found %v", roots)
	}
	m.root = roots[0]

	// Every joint must reach the root.
	for _, joint := range joints {
		if _, err := m.ChainTo(joint.Name); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// Root returns the name of the root link.
func (m *Model) Root() string {
	return m.root
}

// Joint looks up a joint by name.
func (m *Model) Joint(name string) (*Joint, bool) {
	j, ok := m.byName[name]
	return j, ok
}

// Joints returns the joints in declaration order.
func (m *Model) Joints() []*Joint {
	out := make([]*Joint, len(m.joints))
	copy(out, m.joints)
	return out
}

// HasFrame returns whether name is a joint or link of the model.
func (m *Model) HasFrame(name string) bool {
	_, isJoint := m.byName[name]
	return isJoint || m.links[name]
}

// ChainTo returns the joints from the root down to the named frame. A joint frame is the frame of
// its child link, so a joint name and its child link name resolve to the same chain.
func (m *Model) ChainTo(frame string) ([]*Joint, error) {
	current, ok := m.byName[frame]
	if !ok {
		if !m.links[frame] {
			return nil, errors.Wrapf(ErrMissingFrame, "%q", frame)
		}
		current = m.byChild[frame]
	}

	var chain []*Joint
	for current != nil {
		if len(chain) > len(m.joints) {
			return nil, ErrCircularReference
		}
		chain = append(chain, current)
		current = m.byChild[current.Parent]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
