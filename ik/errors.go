package ik

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage names the step of an IK call that failed.
type Stage string

// Stages of an IK call.
const (
	StageFK         = Stage("fk")
	StageMapping    = Stage("mapping")
	StageSolveSetup = Stage("solve-setup")
	StageSolve      = Stage("solve")
)

// StageError wraps an error with the stage of the IK call it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ik %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// ConfigurationError is returned at construction when the structural description or config is
// unusable, e.g. a missing frame or joint name or a joint count mismatch. It is not retryable.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "ik configuration: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func newConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Err: err}
}

// BoundsViolation is raised when a minimizer hands back a joint vector outside the joint limits.
// The engine clamps such a vector before returning it and logs the violation as an error.
type BoundsViolation struct {
	Err error
}

func (e *BoundsViolation) Error() string {
	return "ik solution outside joint limits: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *BoundsViolation) Unwrap() error {
	return e.Err
}

// IsConfigurationError returns whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
