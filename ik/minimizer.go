package ik

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

// Objective is a nonlinear least-squares objective: the cost is the sum of squared residuals.
type Objective interface {
	// Dim is the number of decision variables.
	Dim() int
	// NumResiduals is the length of the residual vector.
	NumResiduals() int
	// Residuals writes the residuals at q into out, which has length NumResiduals.
	Residuals(q, out []float64)
}

// Solution is the outcome of one minimization. Q is the best iterate found, converged or not.
type Solution struct {
	Q          []float64
	Cost       float64
	Iterations int
	Converged  bool
}

// Minimizer minimizes an objective within box bounds, starting from seed. Every returned Q must
// lie within [lower, upper]. Running out of iterations is not an error: the best iterate is
// returned with Converged false.
type Minimizer interface {
	Minimize(obj Objective, lower, upper, seed []float64) (*Solution, error)
}

// MinimizerConstructor builds a minimizer from solver options.
type MinimizerConstructor func(opts SolverOptions, logger logging.Logger) (Minimizer, error)

var (
	minimizersMu sync.RWMutex
	minimizers   = map[string]MinimizerConstructor{}
)

// RegisterMinimizer makes a minimizer available by name. It panics on duplicate registration.
func RegisterMinimizer(name string, constructor MinimizerConstructor) {
	minimizersMu.Lock()
	defer minimizersMu.Unlock()
	if _, ok := minimizers[name]; ok {
		panic(errors.Errorf("minimizer %q already registered", name))
	}
	minimizers[name] = constructor
}

// MinimizerRegistered returns whether a minimizer of the given name is registered.
func MinimizerRegistered(name string) bool {
	minimizersMu.RLock()
	defer minimizersMu.RUnlock()
	_, ok := minimizers[name]
	return ok
}

// RegisteredMinimizers returns the sorted names of every registered minimizer.
func RegisteredMinimizers() []string {
	minimizersMu.RLock()
	defer minimizersMu.RUnlock()
	names := make([]string, 0, len(minimizers))
	for name := range minimizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewMinimizer constructs a registered minimizer.
func NewMinimizer(name string, opts SolverOptions, logger logging.Logger) (Minimizer, error) {
	minimizersMu.RLock()
	constructor, ok := minimizers[name]
	minimizersMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no minimizer registered as %q", name)
	}
	return constructor(opts, logger)
}
