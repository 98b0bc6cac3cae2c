package ik

import (
	"github.com/golang/geo/r3"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// Calibrator converts poses between the marker convention callers use and the model's end-effector
// frame: T_ee = T_marker * T_calib.
type Calibrator struct {
	transform spatialmath.Pose
	inverse   spatialmath.Pose
}

// NewCalibrator returns a calibrator for the pose of the end-effector frame in the marker frame.
func NewCalibrator(transform spatialmath.Pose) *Calibrator {
	return &Calibrator{transform: transform, inverse: spatialmath.PoseInverse(transform)}
}

// NewDefaultCalibrator returns the calibrator used by the Mantis hands.
func NewDefaultCalibrator() *Calibrator {
	rm, err := spatialmath.NewRotationMatrix(DefaultCalibrationRotation)
	if err != nil {
		panic(err)
	}
	return NewCalibrator(spatialmath.NewPose(r3.Vector{}, rm))
}

// newCalibratorFromConfig expects a config that has passed Validate.
func newCalibratorFromConfig(conf *Config) (*Calibrator, error) {
	rm, err := spatialmath.NewRotationMatrix(conf.CalibrationRotation)
	if err != nil {
		return nil, err
	}
	t := conf.CalibrationTranslation
	return NewCalibrator(spatialmath.NewPose(r3.Vector{t[0], t[1], t[2]}, rm)), nil
}

// Transform returns the calibration transform.
func (c *Calibrator) Transform() spatialmath.Pose {
	return c.transform
}

// MarkerToEE converts a marker-frame pose to the end-effector pose handed to the optimizer.
func (c *Calibrator) MarkerToEE(marker spatialmath.Pose) spatialmath.Pose {
	return spatialmath.Compose(marker, c.transform)
}

// EEToMarker converts an end-effector pose to the marker convention.
func (c *Calibrator) EEToMarker(ee spatialmath.Pose) spatialmath.Pose {
	return spatialmath.Compose(ee, c.inverse)
}
