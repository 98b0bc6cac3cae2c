package mantis

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
)

// Config describes a Mantis robot.
type Config struct {
	ik.Config `json:",squash"`

	// Clamp clamps commanded joint values into the soft limits instead of rejecting them.
	Clamp bool `json:"clamp,omitempty"`
	// InitialJoints are the joint values, by serial name, the robot is assumed to start at. Joints
	// not listed start at zero clamped into their limits.
	InitialJoints map[string]float64 `json:"initial_joints,omitempty"`
}

// NewConfigFromAttributes decodes a config from loosely typed attributes. Unknown keys are an error.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	conf := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode mantis config")
	}
	return conf, nil
}

// ReadConfig reads a JSON config file. Comments and trailing commas are allowed.
func ReadConfig(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", path)
	}
	var attributes map[string]interface{}
	if err := json5.Unmarshal(data, &attributes); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	return NewConfigFromAttributes(attributes)
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	errs := conf.Config.Validate(path)
	adapter, err := joints.NewDefaultAdapter()
	if err != nil {
		return multierr.Append(errs, err)
	}
	for name, value := range conf.InitialJoints {
		j, err := adapter.Joint(name)
		if err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(fmt.Sprintf("%s.initial_joints", path), err))
			continue
		}
		if !conf.Clamp && !j.Limit.Contains(value) {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(fmt.Sprintf("%s.initial_joints", path),
				errors.Errorf("%s value %.4f outside [%.4f, %.4f]", name, value, j.Limit.Min, j.Limit.Max)))
		}
	}
	return errs
}
