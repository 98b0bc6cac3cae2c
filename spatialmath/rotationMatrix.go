package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 row-major values. It returns an
// error if the values do not describe a proper rotation.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.New("input slice for rotation matrix must have length 9")
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	if !rm.isRotation(1e-6) {
		return nil, errors.Errorf("matrix %v is not a proper rotation", m)
	}
	return rm, nil
}

// NewIdentityRotation returns the rotation matrix that signifies no rotation.
func NewIdentityRotation() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// At returns the element in the r'th row and c'th column.
func (rm *RotationMatrix) At(r, c int) float64 {
	return rm.mat[3*r+c]
}

// Row returns the r'th row of the matrix.
func (rm *RotationMatrix) Row(r int) r3.Vector {
	return r3.Vector{rm.At(r, 0), rm.At(r, 1), rm.At(r, 2)}
}

// Col returns the c'th column of the matrix.
func (rm *RotationMatrix) Col(c int) r3.Vector {
	return r3.Vector{rm.At(0, c), rm.At(1, c), rm.At(2, c)}
}

// Values returns a copy of the row-major values.
func (rm *RotationMatrix) Values() []float64 {
	out := make([]float64, 9)
	copy(out, rm.mat[:])
	return out
}

// Mul returns rm * other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for r := 0; r < 3; r++ {
		row := rm.Row(r)
		for c := 0; c < 3; c++ {
			out.mat[3*r+c] = row.Dot(other.Col(c))
		}
	}
	return out
}

// MulVec rotates the given vector.
func (rm *RotationMatrix) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{rm.Row(0).Dot(v), rm.Row(1).Dot(v), rm.Row(2).Dot(v)}
}

// Transpose returns the transpose, which for a rotation is also its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	out := &RotationMatrix{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.mat[3*c+r] = rm.mat[3*r+c]
		}
	}
	return out
}

// Quaternion returns the unit quaternion with non-negative real part describing the same rotation.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	var q quat.Number
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q = quat.Number{Real: 0.25 / s, Imag: (m[7] - m[5]) * s, Jmag: (m[2] - m[6]) * s, Kmag: (m[3] - m[1]) * s}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[0]-m[4]-m[8])
		q = quat.Number{Real: (m[7] - m[5]) / s, Imag: 0.25 * s, Jmag: (m[1] + m[3]) / s, Kmag: (m[2] + m[6]) / s}
	case m[4] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[4]-m[0]-m[8])
		q = quat.Number{Real: (m[2] - m[6]) / s, Imag: (m[1] + m[3]) / s, Jmag: 0.25 * s, Kmag: (m[5] + m[7]) / s}
	default:
		s := 2.0 * math.Sqrt(1.0+m[8]-m[0]-m[4])
		q = quat.Number{Real: (m[3] - m[1]) / s, Imag: (m[2] + m[6]) / s, Jmag: (m[5] + m[7]) / s, Kmag: 0.25 * s}
	}
	q = Normalize(q)
	if q.Real < 0 {
		q = Flip(q)
	}
	return q
}

// Log returns the rotation vector (axis scaled by angle in radians) of the rotation. The angle is
// in [0, pi].
func (rm *RotationMatrix) Log() r3.Vector {
	return QuatToR3AA(rm.Quaternion())
}

// AngleTo returns the angle in radians of the rotation taking rm to other.
func (rm *RotationMatrix) AngleTo(other *RotationMatrix) float64 {
	return other.Mul(rm.Transpose()).Log().Norm()
}

func (rm *RotationMatrix) isRotation(tol float64) bool {
	should := rm.Mul(rm.Transpose())
	ident := NewIdentityRotation()
	for i := range should.mat {
		if math.Abs(should.mat[i]-ident.mat[i]) > tol {
			return false
		}
	}
	det := rm.Row(0).Dot(rm.Row(1).Cross(rm.Row(2)))
	return math.Abs(det-1) < tol
}

func (rm *RotationMatrix) String() string {
	return fmt.Sprintf("[%.4f %.4f %.4f; %.4f %.4f %.4f; %.4f %.4f %.4f]",
		rm.mat[0], rm.mat[1], rm.mat[2], rm.mat[3], rm.mat[4], rm.mat[5], rm.mat[6], rm.mat[7], rm.mat[8])
}
