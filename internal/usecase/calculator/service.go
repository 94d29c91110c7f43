// Package calculator holds the bedside quick calculators.
package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput signals a negative or non-finite measurement.
var ErrInvalidInput = errors.New("invalid calculator input")

// DailyFluid returns the Holliday-Segar maintenance requirement in mL/day.
func DailyFluid(weightKg float64) (float64, error) {
	if weightKg < 0 || math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return 0, fmt.Errorf("weight %v kg: %w", weightKg, ErrInvalidInput)
	}
	switch {
	case weightKg <= 10:
		return 100 * weightKg, nil
	case weightKg <= 20:
		return 1000 + 50*(weightKg-10), nil
	default:
		return 1500 + 20*(weightKg-20), nil
	}
}

// MinSystolicBP returns the lower limit of systolic pressure in mmHg for an age in years.
func MinSystolicBP(ageYears int) (int, error) {
	if ageYears < 0 {
		return 0, fmt.Errorf("age %d years: %w", ageYears, ErrInvalidInput)
	}
	if ageYears <= 10 {
		return 70 + 2*ageYears, nil
	}
	return 90, nil
}

// FormatFluid renders a fluid requirement the way the assistant shows it.
func FormatFluid(mlPerDay float64) string {
	return fmt.Sprintf("Estimated daily fluid requirement: %.0f mL/day", mlPerDay)
}

// FormatBP renders a minimum systolic pressure the way the assistant shows it.
func FormatBP(mmHg int) string {
	return fmt.Sprintf("Estimated minimum systolic BP: %d mmHg", mmHg)
}
