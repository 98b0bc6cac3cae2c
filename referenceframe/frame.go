// Package referenceframe parses robot structural descriptions into kinematic trees and reduces
// them to the actuated joints of interest so poses can be computed from joint vectors.
package referenceframe

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for
// distinct from other errors.
const OOBErrString = "input out of bounds"

// Joint types understood by the parser.
const (
	RevoluteJoint   = "revolute"
	ContinuousJoint = "continuous"
	PrismaticJoint  = "prismatic"
	FixedJoint      = "fixed"
)

// Limit represents the limits of motion for a joint.
type Limit struct {
	Min float64
	Max float64
}

// Contains returns whether the value lies within the limit, inclusive.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns the value restricted to the limit.
func (l Limit) Clamp(v float64) float64 {
	return math.Min(math.Max(v, l.Min), l.Max)
}

// Range returns the width of the limit.
func (l Limit) Range() float64 {
	return l.Max - l.Min
}

// LimitsToArrays splits limits into lower and upper bound slices.
func LimitsToArrays(limits []Limit) ([]float64, []float64) {
	var mins, maxes []float64
	for _, limit := range limits {
		mins = append(mins, limit.Min)
		maxes = append(maxes, limit.Max)
	}
	return mins, maxes
}

// ClampToLimits returns a copy of q with each value restricted to its limit.
func ClampToLimits(q []float64, limits []Limit) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = limits[i].Clamp(v)
	}
	return out
}

// CheckInputsInBounds returns an error naming every value of q that lies outside its limit.
func CheckInputsInBounds(q []float64, limits []Limit) error {
	if len(q) != len(limits) {
		return NewIncorrectDoFError(len(q), len(limits))
	}
	var errs error
	for i, v := range q {
		if !limits[i].Contains(v) {
			errs = multierr.Append(errs, errors.Errorf("%s: joint %d value %.6f not in [%.6f, %.6f]",
				OOBErrString, i, v, limits[i].Min, limits[i].Max))
		}
	}
	return errs
}
