// Package spatialmath defines rigid transforms and the rotation parameterizations used by the
// kinematics and IK packages. Distances are in meters and angles in radians.
package spatialmath

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Pose represents a rigid transform: a translation plus a full 3x3 rotation. A Pose is immutable.
type Pose struct {
	point       r3.Vector
	orientation RotationMatrix
}

// NewPose returns a pose at the given point with the given orientation. A nil orientation is
// treated as the identity.
func NewPose(p r3.Vector, o *RotationMatrix) Pose {
	if o == nil {
		o = NewIdentityRotation()
	}
	return Pose{point: p, orientation: *o}
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return NewPose(r3.Vector{}, nil)
}

// NewPoseFromPoint returns a pose at the given point with no rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return NewPose(p, nil)
}

// NewPoseFromXYZRPY builds a pose from a position and fixed-axis roll-pitch-yaw angles.
func NewPoseFromXYZRPY(x, y, z, roll, pitch, yaw float64) Pose {
	return NewPose(r3.Vector{x, y, z}, (&EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw}).RotationMatrix())
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Orientation returns a copy of the rotation of the pose.
func (p Pose) Orientation() *RotationMatrix {
	o := p.orientation
	return &o
}

// Compose returns the pose a*b, i.e. b expressed in the frame that a is expressed in.
func Compose(a, b Pose) Pose {
	return Pose{
		point:       a.point.Add(a.orientation.MulVec(b.point)),
		orientation: *a.orientation.Mul(&b.orientation),
	}
}

// PoseInverse returns the inverse of the pose.
func PoseInverse(p Pose) Pose {
	rt := p.orientation.Transpose()
	return Pose{point: rt.MulVec(p.point).Mul(-1), orientation: *rt}
}

// PoseBetween returns the pose which when composed with a gives b, i.e. inverse(a)*b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseDelta returns the world-frame translation from a to b and the angle in radians of the
// rotation between them.
func PoseDelta(a, b Pose) (r3.Vector, float64) {
	return b.point.Sub(a.point), a.orientation.AngleTo(&b.orientation)
}

// PoseAlmostEqual returns whether two poses are within linTol meters and rotTol radians of each
// other.
func PoseAlmostEqual(a, b Pose, linTol, rotTol float64) bool {
	dp, dr := PoseDelta(a, b)
	return dp.Norm() <= linTol && dr <= rotTol
}

// PoseAlmostCoincident returns whether two poses are numerically identical up to 1e-9.
func PoseAlmostCoincident(a, b Pose) bool {
	const eps = 1e-9
	if a.point.Sub(b.point).Norm() > eps {
		return false
	}
	for i := range a.orientation.mat {
		if math.Abs(a.orientation.mat[i]-b.orientation.mat[i]) > eps {
			return false
		}
	}
	return true
}

func (p Pose) String() string {
	ea := p.orientation.EulerAngles()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f Roll:%.4f Pitch:%.4f Yaw:%.4f}",
		p.point.X, p.point.Y, p.point.Z, ea.Roll, ea.Pitch, ea.Yaw)
}

type poseJSON struct {
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Z        float64   `json:"z"`
	Rotation []float64 `json:"rotation"`
	*EulerAngles
}

// MarshalJSON encodes the pose as its position, its row-major rotation and the equivalent
// roll/pitch/yaw for readability.
func (p Pose) MarshalJSON() ([]byte, error) {
	return json.Marshal(poseJSON{
		X: p.point.X, Y: p.point.Y, Z: p.point.Z,
		Rotation:    p.orientation.Values(),
		EulerAngles: p.orientation.EulerAngles(),
	})
}

// UnmarshalJSON decodes a pose. The rotation matrix takes precedence over roll/pitch/yaw when both
// are present.
func (p *Pose) UnmarshalJSON(data []byte) error {
	var pj poseJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	point := r3.Vector{pj.X, pj.Y, pj.Z}
	switch {
	case len(pj.Rotation) > 0:
		rm, err := NewRotationMatrix(pj.Rotation)
		if err != nil {
			return err
		}
		*p = NewPose(point, rm)
	case pj.EulerAngles != nil:
		*p = NewPose(point, pj.EulerAngles.RotationMatrix())
	default:
		*p = NewPoseFromPoint(point)
	}
	return nil
}
