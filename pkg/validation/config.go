// Package validation provides input validation utilities.
package validation

import (
	"errors"
	"fmt"
	"math"
)

// Measurement names one numeric field of a measurement form. A nil Value
// means the field was left blank.
type Measurement struct {
	Name  string
	Value *float64
}

// ValidateMeasurements rejects values that can never be a valid length or
// ratio. Blank fields are allowed; they surface later as missing-input
// warnings rather than errors.
func ValidateMeasurements(measurements ...Measurement) error {
	var errs []error
	for _, m := range measurements {
		if m.Value == nil {
			continue
		}
		v := *m.Value
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, fmt.Errorf("%s must be a finite number", m.Name))
		case v < 0:
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %g", m.Name, v))
		}
	}
	return errors.Join(errs...)
}

// ValidateQuantity rejects a negative panel count.
func ValidateQuantity(quantity *int) error {
	if quantity != nil && *quantity < 0 {
		return fmt.Errorf("quantity cannot be negative, got %d", *quantity)
	}
	return nil
}
