package ik

import (
	"math"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Residual layout: left position, right position, left orientation, right orientation, then one
// regularization and one smoothness residual per joint.
const poseResiduals = 12

// problem is the fixed structure of the dual-arm IK least-squares problem. Only the targets and
// the previous joint vector change between solves.
type problem struct {
	fk      ForwardKinematics
	dof     int
	neutral []float64

	sqrtPosition       float64
	sqrtOrientation    float64
	sqrtRegularization float64
	sqrtSmoothness     float64
}

func newProblem(fk ForwardKinematics, neutral []float64, w Weights) *problem {
	return &problem{
		fk:                 fk,
		dof:                len(neutral),
		neutral:            append([]float64{}, neutral...),
		sqrtPosition:       math.Sqrt(w.Position),
		sqrtOrientation:    math.Sqrt(w.Orientation),
		sqrtRegularization: math.Sqrt(w.Regularization),
		sqrtSmoothness:     math.Sqrt(w.Smoothness),
	}
}

// bind returns the objective for one solve.
func (p *problem) bind(left, right spatialmath.Pose, qPrev []float64) *objective {
	return &objective{
		problem:  p,
		left:     left,
		right:    right,
		leftInv:  left.Orientation().Transpose(),
		rightInv: right.Orientation().Transpose(),
		qPrev:    append([]float64{}, qPrev...),
	}
}

// objective is the problem with its per-solve parameters bound.
type objective struct {
	*problem
	left, right       spatialmath.Pose
	leftInv, rightInv *spatialmath.RotationMatrix
	qPrev             []float64
}

func (o *objective) Dim() int {
	return o.dof
}

func (o *objective) NumResiduals() int {
	return poseResiduals + 2*o.dof
}

// Residuals panics if q has the wrong length; the engine only hands it vectors of its own size.
func (o *objective) Residuals(q, out []float64) {
	left, right, err := o.fk.ComputeFK(q)
	if err != nil {
		panic(err)
	}
	dl := left.Point().Sub(o.left.Point())
	dr := right.Point().Sub(o.right.Point())
	el := left.Orientation().Mul(o.leftInv).Log()
	er := right.Orientation().Mul(o.rightInv).Log()

	sp, so := o.sqrtPosition, o.sqrtOrientation
	copy(out[0:12], []float64{
		sp * dl.X, sp * dl.Y, sp * dl.Z,
		sp * dr.X, sp * dr.Y, sp * dr.Z,
		so * el.X, so * el.Y, so * el.Z,
		so * er.X, so * er.Y, so * er.Z,
	})
	for i, v := range q {
		out[poseResiduals+i] = o.sqrtRegularization * (v - o.neutral[i])
		out[poseResiduals+o.dof+i] = o.sqrtSmoothness * (v - o.qPrev[i])
	}
}
