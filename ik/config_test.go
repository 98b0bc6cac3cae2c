package ik

import (
	"testing"

	"go.viam.com/test"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
)

func TestWeightsValidate(t *testing.T) {
	test.That(t, DefaultWeights().Validate(), test.ShouldBeNil)

	for _, w := range []Weights{
		{Position: 50, Orientation: 1000, Regularization: 0.01, Smoothness: 0.001},
		{Position: 1000, Orientation: 50, Regularization: 0.01, Smoothness: 0.01},
		{Position: 1000, Orientation: 50, Regularization: 0.01, Smoothness: 0},
		{Position: 1000, Orientation: 50, Regularization: 0.01, Smoothness: -1},
	} {
		test.That(t, w.Validate(), test.ShouldNotBeNil)
	}
}

func TestConfigDefaults(t *testing.T) {
	conf := (&Config{}).WithDefaults()
	test.That(t, conf.LeftJoints, test.ShouldResemble, joints.ModelNames(joints.Left))
	test.That(t, conf.RightJoints, test.ShouldResemble, joints.ModelNames(joints.Right))
	test.That(t, conf.LeftFrame, test.ShouldEqual, DefaultLeftFrame)
	test.That(t, conf.Weights, test.ShouldResemble, DefaultWeights())
	test.That(t, conf.Solver, test.ShouldEqual, DefaultSolver)
	test.That(t, conf.MaxIterations, test.ShouldEqual, DefaultMaxIterations)
	test.That(t, conf.CalibrationRotation, test.ShouldResemble, DefaultCalibrationRotation)
	test.That(t, conf.Validate("ik"), test.ShouldBeNil)

	// WithDefaults does not touch the receiver.
	empty := &Config{}
	empty.WithDefaults()
	test.That(t, empty.Solver, test.ShouldBeEmpty)
}

func TestConfigValidate(t *testing.T) {
	conf := &Config{
		RightJoints:            []string{"R_Shoulder_Pitch_Joint"},
		Solver:                 "simplex",
		CalibrationRotation:    []float64{2, 0, 0, 0, 1, 0, 0, 0, 1},
		CalibrationTranslation: []float64{0, 0},
		SolverOptions:          SolverOptions{MaxIterations: -1},
	}
	err := conf.Validate("ik")
	test.That(t, err, test.ShouldNotBeNil)
	for _, want := range []string{"right_joints", "simplex", "calibration_rotation", "calibration_translation", "max_iterations"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, want)
	}
}

func TestNewConfigFromAttributes(t *testing.T) {
	conf, err := NewConfigFromAttributes(map[string]interface{}{
		"left_frame":     "L_Wrist_Yaw_Joint",
		"max_iterations": 50,
		"weights": map[string]interface{}{
			"position":       100.,
			"orientation":    10.,
			"regularization": 1.,
			"smoothness":     0.1,
		},
		"calibration_translation": []interface{}{0., 0., 0.01},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.LeftFrame, test.ShouldEqual, "L_Wrist_Yaw_Joint")
	test.That(t, conf.MaxIterations, test.ShouldEqual, 50)
	test.That(t, conf.Weights.Orientation, test.ShouldEqual, 10.)
	test.That(t, conf.CalibrationTranslation, test.ShouldResemble, []float64{0, 0, 0.01})
	test.That(t, conf.Validate("ik"), test.ShouldBeNil)

	_, err = NewConfigFromAttributes(map[string]interface{}{"frobnicate": true})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frobnicate")
}

func TestLoadModel(t *testing.T) {
	m, err := (&Config{}).LoadModel()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.DoF(), test.ShouldEqual, 14)
	test.That(t, m.JointNames()[0], test.ShouldEqual, "L_Shoulder_Pitch_Joint")

	_, err = (&Config{RightFrame: "nope"}).LoadModel()
	test.That(t, IsConfigurationError(err), test.ShouldBeTrue)
}
