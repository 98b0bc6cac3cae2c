package joints

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MappingError reports a joint name with no counterpart in the other convention.
type MappingError struct {
	Name string
	// Serial is true when Name is a serial name, false when it is a model name.
	Serial bool
}

func (e *MappingError) Error() string {
	if e.Serial {
		return fmt.Sprintf("serial joint %q has no model joint", e.Name)
	}
	return fmt.Sprintf("model joint %q has no serial joint", e.Name)
}

// Adapter converts joint vectors between the kinematic model's order and sign convention and
// the serial names used on the joint command path.
type Adapter struct {
	modelOrder []string
	bySerial   map[string]Joint
	byModel    map[string]Joint
}

// NewAdapter builds an adapter for joint vectors in modelOrder. Every name in modelOrder must have a
// row in the table.
func NewAdapter(table []Joint, modelOrder []string) (*Adapter, error) {
	a := &Adapter{
		modelOrder: append([]string{}, modelOrder...),
		bySerial:   lo.KeyBy(table, func(j Joint) string { return j.Serial }),
		byModel:    lo.KeyBy(table, func(j Joint) string { return j.Model }),
	}
	for _, name := range modelOrder {
		if _, ok := a.byModel[name]; !ok {
			return nil, &MappingError{Name: name}
		}
	}
	return a, nil
}

// NewDefaultAdapter builds an adapter on Table for joint vectors ordered left arm then right arm.
func NewDefaultAdapter() (*Adapter, error) {
	return NewAdapter(Table(), append(ModelNames(Left), ModelNames(Right)...))
}

// ToSerial renames a model-order joint vector to serial names and applies each joint's sign.
func (a *Adapter) ToSerial(q []float64) (map[string]float64, error) {
	if len(q) != len(a.modelOrder) {
		return nil, errors.Errorf("joint vector has %d values, adapter expects %d", len(q), len(a.modelOrder))
	}
	out := make(map[string]float64, len(q))
	for i, name := range a.modelOrder {
		j := a.byModel[name]
		out[j.Serial] = j.ToSerial(q[i])
	}
	return out, nil
}

// ToModel returns the model joint name for a serial joint name.
func (a *Adapter) ToModel(serial string) (string, error) {
	j, ok := a.bySerial[serial]
	if !ok {
		return "", &MappingError{Name: serial, Serial: true}
	}
	return j.Model, nil
}

// FromSerial is the inverse of ToSerial. Joints missing from serial keep their value from fallback,
// which must be in model order. Unknown serial names are a MappingError.
func (a *Adapter) FromSerial(serial map[string]float64, fallback []float64) ([]float64, error) {
	if len(fallback) != len(a.modelOrder) {
		return nil, errors.Errorf("fallback has %d values, adapter expects %d", len(fallback), len(a.modelOrder))
	}
	index := make(map[string]int, len(a.modelOrder))
	for i, name := range a.modelOrder {
		index[name] = i
	}
	q := append([]float64{}, fallback...)
	for name, value := range serial {
		model, err := a.ToModel(name)
		if err != nil {
			return nil, err
		}
		i, ok := index[model]
		if !ok {
			return nil, &MappingError{Name: model}
		}
		q[i] = a.bySerial[name].ToModel(value)
	}
	return q, nil
}

// Joint returns the table row for a serial name.
func (a *Adapter) Joint(serial string) (Joint, error) {
	j, ok := a.bySerial[serial]
	if !ok {
		return Joint{}, &MappingError{Name: serial, Serial: true}
	}
	return j, nil
}

// ModelOrder returns the model joint names in joint vector order.
func (a *Adapter) ModelOrder() []string {
	return append([]string{}, a.modelOrder...)
}

// SerialOrder returns the serial names in joint vector order.
func (a *Adapter) SerialOrder() []string {
	return lo.Map(a.modelOrder, func(name string, _ int) string { return a.byModel[name].Serial })
}
