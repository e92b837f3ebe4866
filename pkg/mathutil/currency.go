// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/fabric-estimator/pkg/constants"
)

// ceilEpsilon absorbs binary floating point noise such as 16.8*10 = 168.00000000000003.
const ceilEpsilon = 1e-9

// CeilToStep rounds val up to the next multiple of step.
func CeilToStep(val, step float64) float64 {
	if step <= 0 {
		return val
	}
	n := math.Ceil(val/step - ceilEpsilon)
	return math.Round(n*step*1e6) / 1e6
}

// CeilToTenth rounds val up to one decimal place.
func CeilToTenth(val float64) float64 {
	return CeilToStep(val, constants.OrderGranularity)
}

// RoundUpToMultiple rounds val up to the nearest multiple of repeat. A repeat of
// zero or less leaves val untouched.
func RoundUpToMultiple(val, repeat float64) float64 {
	if repeat > 0 {
		return math.Ceil(val/repeat-ceilEpsilon) * repeat
	}
	return val
}

// CeilDiv returns ceil(a/b) as an int, tolerating floating point noise.
func CeilDiv(a, b float64) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(a/b - ceilEpsilon))
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}
