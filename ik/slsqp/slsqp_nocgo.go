//go:build windows || no_cgo

// Package slsqp registers an nlopt SLSQP minimizer for the IK engine under the name "slsqp".
// Without cgo the name is registered but construction fails.
package slsqp

import (
	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

// Name is the name the minimizer is registered under.
const Name = "slsqp"

func init() {
	ik.RegisterMinimizer(Name, func(ik.SolverOptions, logging.Logger) (ik.Minimizer, error) {
		return nil, errors.New("nlopt is not supported on this build")
	})
}
