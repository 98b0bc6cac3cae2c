package referenceframe

import "github.com/pkg/errors"

var (
	// ErrNoModelInformation is returned when a structural description holds nothing to parse.
	ErrNoModelInformation = errors.New("no model information")
	// ErrMissingJoint is returned when a named joint is not part of the model.
	ErrMissingJoint = errors.New("joint not found in model")
	// ErrMissingFrame is returned when a named frame is neither a joint nor a link of the model.
	ErrMissingFrame = errors.New("frame not found in model")
	// ErrJointCountMismatch is returned when the number of joints or inputs does not match what is expected.
	ErrJointCountMismatch = errors.New("joint count mismatch")
	// ErrCircularReference is returned when the kinematic tree contains a cycle.
	ErrCircularReference = errors.New("infinite loop finding path from end effector to base")
)

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match the DoF.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Wrapf(ErrJointCountMismatch, "number of inputs does not match degrees of freedom. Expected %d, got %d",
		expected, actual)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}
