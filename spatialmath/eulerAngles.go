package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// EulerAngles are three angles in radians used to represent the rotation of an object in 3D
// Euclidean space. They follow the fixed-axis roll-pitch-yaw convention used by URDF, meaning
// the rotation matrix is Rz(Yaw) * Ry(Pitch) * Rx(Roll).
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	rz := AxisRotation(r3.Vector{Z: 1}, ea.Yaw)
	ry := AxisRotation(r3.Vector{Y: 1}, ea.Pitch)
	rx := AxisRotation(r3.Vector{X: 1}, ea.Roll)
	return rz.Mul(ry).Mul(rx)
}

// EulerAngles returns the fixed-axis roll-pitch-yaw angles of the rotation. At pitch = +-pi/2
// roll is reported as zero.
func (rm *RotationMatrix) EulerAngles() *EulerAngles {
	sp := -rm.At(2, 0)
	if sp >= 1-1e-12 || sp <= -1+1e-12 {
		pitch := math.Copysign(math.Pi/2, sp)
		return &EulerAngles{
			Roll:  0,
			Pitch: pitch,
			Yaw:   math.Atan2(-rm.At(0, 1), rm.At(1, 1)),
		}
	}
	return &EulerAngles{
		Roll:  math.Atan2(rm.At(2, 1), rm.At(2, 2)),
		Pitch: math.Asin(sp),
		Yaw:   math.Atan2(rm.At(1, 0), rm.At(0, 0)),
	}
}
