package ik

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/referenceframe/urdf"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Defaults used when the corresponding config field is left empty.
const (
	DefaultPositionWeight       = 1000.0
	DefaultOrientationWeight    = 50.0
	DefaultRegularizationWeight = 0.01
	DefaultSmoothnessWeight     = 0.001

	DefaultSolver            = "lm"
	DefaultMaxIterations     = 100
	DefaultGradientTolerance = 1e-6
	DefaultStepTolerance     = 1e-8
	DefaultCostTolerance     = 1e-10

	DefaultLeftFrame  = "L_Wrist_Yaw_Joint"
	DefaultRightFrame = "R_Wrist_Yaw_Joint"
)

// DefaultCalibrationRotation maps the marker frame onto the wrist yaw frame: a quarter turn about z.
var DefaultCalibrationRotation = []float64{
	0, -1, 0,
	1, 0, 0,
	0, 0, 1,
}

// Weights scale the squared residuals of the cost. They must be strictly descending in the
// order Position, Orientation, Regularization, Smoothness.
type Weights struct {
	Position       float64 `json:"position,omitempty"`
	Orientation    float64 `json:"orientation,omitempty"`
	Regularization float64 `json:"regularization,omitempty"`
	Smoothness     float64 `json:"smoothness,omitempty"`
}

// DefaultWeights returns the default cost weights.
func DefaultWeights() Weights {
	return Weights{
		Position:       DefaultPositionWeight,
		Orientation:    DefaultOrientationWeight,
		Regularization: DefaultRegularizationWeight,
		Smoothness:     DefaultSmoothnessWeight,
	}
}

// Validate checks the weights are positive and strictly descending.
func (w Weights) Validate() error {
	if w.Smoothness <= 0 {
		return errors.Errorf("smoothness weight must be positive, got %v", w.Smoothness)
	}
	if !(w.Position > w.Orientation && w.Orientation > w.Regularization && w.Regularization > w.Smoothness) {
		return errors.Errorf("weights must be strictly descending position > orientation > regularization > smoothness, got %+v", w)
	}
	return nil
}

// SolverOptions bound the work done by one minimization.
type SolverOptions struct {
	MaxIterations     int     `json:"max_iterations,omitempty"`
	GradientTolerance float64 `json:"gradient_tolerance,omitempty"`
	StepTolerance     float64 `json:"step_tolerance,omitempty"`
	CostTolerance     float64 `json:"cost_tolerance,omitempty"`
}

// Config describes the IK subsystem.
type Config struct {
	// URDFPath points at the structural description. Empty means the embedded Mantis model.
	URDFPath    string   `json:"urdf_path,omitempty"`
	LeftJoints  []string `json:"left_joints,omitempty"`
	RightJoints []string `json:"right_joints,omitempty"`
	LeftFrame   string   `json:"left_frame,omitempty"`
	RightFrame  string   `json:"right_frame,omitempty"`

	Weights Weights `json:"weights,omitempty"`
	Solver  string  `json:"solver,omitempty"`
	SolverOptions `json:",squash"`

	// CalibrationRotation is the row-major rotation of the end-effector frame in the marker frame.
	CalibrationRotation    []float64 `json:"calibration_rotation,omitempty"`
	CalibrationTranslation []float64 `json:"calibration_translation,omitempty"`
}

// NewConfigFromAttributes decodes a config from loosely typed attributes, e.g. a parsed JSON object.
// Unknown keys are an error.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	conf := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode ik config")
	}
	return conf, nil
}

// WithDefaults returns a copy of the config with every empty field set to its default.
func (conf Config) WithDefaults() *Config {
	if len(conf.LeftJoints) == 0 {
		conf.LeftJoints = joints.ModelNames(joints.Left)
	}
	if len(conf.RightJoints) == 0 {
		conf.RightJoints = joints.ModelNames(joints.Right)
	}
	if conf.LeftFrame == "" {
		conf.LeftFrame = DefaultLeftFrame
	}
	if conf.RightFrame == "" {
		conf.RightFrame = DefaultRightFrame
	}
	if conf.Weights == (Weights{}) {
		conf.Weights = DefaultWeights()
	}
	if conf.Solver == "" {
		conf.Solver = DefaultSolver
	}
	if conf.MaxIterations == 0 {
		conf.MaxIterations = DefaultMaxIterations
	}
	if conf.GradientTolerance == 0 {
		conf.GradientTolerance = DefaultGradientTolerance
	}
	if conf.StepTolerance == 0 {
		conf.StepTolerance = DefaultStepTolerance
	}
	if conf.CostTolerance == 0 {
		conf.CostTolerance = DefaultCostTolerance
	}
	if len(conf.CalibrationRotation) == 0 {
		conf.CalibrationRotation = append([]float64{}, DefaultCalibrationRotation...)
	}
	if len(conf.CalibrationTranslation) == 0 {
		conf.CalibrationTranslation = []float64{0, 0, 0}
	}
	return &conf
}

// Validate ensures all parts of the config are valid. Empty fields are valid and take defaults.
func (conf *Config) Validate(path string) error {
	full := conf.WithDefaults()
	var errs error
	if len(full.LeftJoints) != len(full.RightJoints) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("left_joints has %d entries, right_joints has %d", len(full.LeftJoints), len(full.RightJoints))))
	}
	if err := full.Weights.Validate(); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}
	if !MinimizerRegistered(full.Solver) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("solver %q is not registered, registered solvers are %v", full.Solver, RegisteredMinimizers())))
	}
	if full.MaxIterations < 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, errors.New("max_iterations must not be negative")))
	}
	if _, err := spatialmath.NewRotationMatrix(full.CalibrationRotation); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(fmt.Sprintf("%s.calibration_rotation", path), err))
	}
	if len(full.CalibrationTranslation) != 3 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.New("calibration_translation must have 3 values")))
	}
	return errs
}

// LoadModel parses the structural description named by the config and reduces it to the two arms.
// Every failure is a ConfigurationError.
func (conf *Config) LoadModel() (*referenceframe.DualArmModel, error) {
	full := conf.WithDefaults()
	var m *referenceframe.Model
	var err error
	if full.URDFPath == "" {
		m, err = referenceframe.ParseURDF(urdf.Mantis)
	} else {
		m, err = referenceframe.ParseURDFFile(full.URDFPath)
	}
	if err != nil {
		return nil, newConfigurationError(err)
	}
	dam, err := referenceframe.NewDualArmModel(m, referenceframe.DualArmConfig{
		LeftJoints:  full.LeftJoints,
		RightJoints: full.RightJoints,
		LeftFrame:   full.LeftFrame,
		RightFrame:  full.RightFrame,
	})
	return dam, newConfigurationError(err)
}
