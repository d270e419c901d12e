// Package units converts user-facing lengths to the centimeters the crate sizer works in.
package units

import (
	"fmt"
	"strings"
)

// Unit is a linear unit accepted at the API and CLI boundary.
type Unit string

const (
	Centimeters Unit = "cm"
	Inches      Unit = "in"
)

// CentimetersPerInch is the exact international inch.
const CentimetersPerInch = 2.54

// Parse maps a textual unit, defaulting to Centimeters when empty.
func Parse(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "cm", "centimeters", "centimetres":
		return Centimeters, nil
	case "in", "inch", "inches":
		return Inches, nil
	default:
		return "", fmt.Errorf("unsupported unit %q", raw)
	}
}

// ToCentimeters converts v expressed in u to centimeters.
func ToCentimeters(v float64, u Unit) float64 {
	if u == Inches {
		return v * CentimetersPerInch
	}
	return v
}

// FromCentimeters converts v centimeters to u.
func FromCentimeters(v float64, u Unit) float64 {
	if u == Inches {
		return v / CentimetersPerInch
	}
	return v
}
