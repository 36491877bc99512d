// Package tdee estimates total daily energy expenditure with the revised
// Harris-Benedict equations.
package tdee

import (
	"math"
)

const (
	// CalorieOffset is the kcal distance of the deficit and surplus targets
	// from maintenance.
	CalorieOffset = 500

	// SafeMinimumCalories is the intake below which a deficit target is flagged.
	SafeMinimumCalories = 1200

	WarningDeficitBelowSafeMinimum = "deficit_below_safe_minimum"

	// maxEnergyCalories bounds BMR*multiplier so the rounded result and the
	// offsets fit in an int on every platform.
	maxEnergyCalories = math.MaxInt32 - CalorieOffset - 1
)

var activityLevels = []ActivityLevel{
	{Name: "sedentary", Multiplier: 1.2, Label: "Sedentary (little to no exercise)"},
	{Name: "light", Multiplier: 1.375, Label: "Lightly active (light exercise 1-3 days/week)"},
	{Name: "moderate", Multiplier: 1.55, Label: "Moderately active (moderate exercise 3-5 days/week)"},
	{Name: "active", Multiplier: 1.725, Label: "Very active (hard exercise 6-7 days/week)"},
	{Name: "very_active", Multiplier: 1.9, Label: "Extra active (very hard exercise & physical job or 2x training)"},
}

// ActivityLevels returns a copy of the supported activity options.
func ActivityLevels() []ActivityLevel {
	out := make([]ActivityLevel, len(activityLevels))
	copy(out, activityLevels)
	return out
}

// IsValidMultiplier reports whether m is one of the enumerated multipliers.
func IsValidMultiplier(m float64) bool {
	for _, l := range activityLevels {
		if l.Multiplier == m {
			return true
		}
	}
	return false
}

func multiplierByName(name string) (float64, bool) {
	for _, l := range activityLevels {
		if l.Name == name {
			return l.Multiplier, true
		}
	}
	return 0, false
}

// BMR returns the basal metabolic rate in kcal/day without validating p.
func BMR(p BiometricProfile) float64 {
	age := float64(p.AgeYears)
	if p.Sex == SexMale {
		return 88.362 + 13.397*p.WeightKg + 4.799*p.HeightCm - 5.677*age
	}
	return 447.593 + 9.247*p.WeightKg + 3.098*p.HeightCm - 4.330*age
}

// Validate checks the profile against the engine's domain.
func Validate(p BiometricProfile) error {
	switch p.Sex {
	case SexMale, SexFemale:
	default:
		return &InvalidInputError{Field: "sex", Reason: "must be male or female"}
	}
	if p.AgeYears <= 0 {
		return &InvalidInputError{Field: "age", Reason: "must be a positive integer"}
	}
	if !isPositiveFinite(p.WeightKg) {
		return &InvalidInputError{Field: "weight", Reason: "must be a positive number"}
	}
	if !isPositiveFinite(p.HeightCm) {
		return &InvalidInputError{Field: "height", Reason: "must be a positive number"}
	}
	if !IsValidMultiplier(p.ActivityMultiplier) {
		return &InvalidInputError{Field: "activityLevel", Reason: "must be one of 1.2, 1.375, 1.55, 1.725, 1.9"}
	}
	return nil
}

// Compute returns maintenance, deficit and surplus calories for p.
// The deficit target is not floored; see Warnings.
func Compute(p BiometricProfile) (EnergyEstimate, error) {
	if err := Validate(p); err != nil {
		return EnergyEstimate{}, err
	}

	energy := BMR(p) * p.ActivityMultiplier
	if math.IsNaN(energy) || math.Abs(energy) > maxEnergyCalories {
		return EnergyEstimate{}, &InvalidInputError{Field: "profile", Reason: "inputs produce an out-of-range energy estimate"}
	}

	maintenance := roundHalfUp(energy)
	return EnergyEstimate{
		MaintenanceCalories: maintenance,
		DeficitCalories:     maintenance - CalorieOffset,
		SurplusCalories:     maintenance + CalorieOffset,
	}, nil
}

// Warnings lists advisory flags for an estimate.
func Warnings(e EnergyEstimate) []string {
	warnings := []string{}
	if e.DeficitCalories < SafeMinimumCalories {
		warnings = append(warnings, WarningDeficitBelowSafeMinimum)
	}
	return warnings
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
