package domain

import (
	"errors"
	"fmt"
	"math"
)

// Measurements captures the four IATA body measurements of a pet, in centimeters.
type Measurements struct {
	// LengthA is nose to base of tail.
	LengthA float64
	// ElbowB is ground to elbow.
	ElbowB float64
	// WidthC is shoulder to shoulder at the widest point.
	WidthC float64
	// HeightD is ground to top of head or ear tip.
	HeightD float64
	// IsSnubNosed flags brachycephalic breeds that need the extra safety margin.
	IsSnubNosed bool
}

var (
	// ErrIncompleteInput reports a measurement that has not been supplied yet.
	ErrIncompleteInput = errors.New("measurements incomplete")
	// ErrInvalidMeasurement reports a measurement that cannot size a crate.
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

// MeasurementError describes the first offending field of a Measurements value.
type MeasurementError struct {
	Field string
	Value float64
}

func (e *MeasurementError) Error() string {
	switch {
	case math.IsNaN(e.Value) || math.IsInf(e.Value, 0):
		return fmt.Sprintf("%s: %s must be a finite number", ErrInvalidMeasurement, e.Field)
	case e.Value == 0:
		return fmt.Sprintf("%s: %s is missing", ErrInvalidMeasurement, e.Field)
	default:
		return fmt.Sprintf("%s: %s must be greater than zero, got %g", ErrInvalidMeasurement, e.Field, e.Value)
	}
}

// Is matches ErrInvalidMeasurement for every offending value and
// ErrIncompleteInput only when the value is missing (zero).
func (e *MeasurementError) Is(target error) bool {
	if target == ErrInvalidMeasurement {
		return true
	}
	return target == ErrIncompleteInput && e.Value == 0
}

// Validate checks every dimension is a finite number strictly greater than zero.
func (m Measurements) Validate() error {
	for _, field := range m.fields() {
		if !usable(field.value) {
			return &MeasurementError{Field: field.name, Value: field.value}
		}
	}
	return nil
}

// ValidateAll reports every offending dimension keyed by field name.
func (m Measurements) ValidateAll() map[string]error {
	var problems map[string]error
	for _, field := range m.fields() {
		if usable(field.value) {
			continue
		}
		if problems == nil {
			problems = make(map[string]error)
		}
		problems[field.name] = &MeasurementError{Field: field.name, Value: field.value}
	}
	return problems
}

// Complete reports whether a crate size can be computed yet.
func (m Measurements) Complete() bool {
	return m.Validate() == nil
}

type namedValue struct {
	name  string
	value float64
}

func (m Measurements) fields() []namedValue {
	return []namedValue{
		{name: "lengthA", value: m.LengthA},
		{name: "elbowB", value: m.ElbowB},
		{name: "widthC", value: m.WidthC},
		{name: "heightD", value: m.HeightD},
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
