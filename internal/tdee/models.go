package tdee

import (
	"encoding/json"
	"fmt"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// BiometricProfile is the validated input of Compute.
type BiometricProfile struct {
	Sex                Sex
	AgeYears           int
	WeightKg           float64
	HeightCm           float64
	ActivityMultiplier float64
}

// EnergyEstimate holds daily calorie targets in kcal.
type EnergyEstimate struct {
	MaintenanceCalories int `json:"maintenanceCalories"`
	DeficitCalories     int `json:"deficitCalories"`
	SurplusCalories     int `json:"surplusCalories"`
}

// ActivityLevel is one entry of the closed activity option list.
type ActivityLevel struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	Label      string  `json:"label"`
}

// ProfileRequest is the wire form of a TDEE calculation. Numeric fields accept
// JSON numbers or numeric strings since HTML forms post everything as text.
type ProfileRequest struct {
	Sex           string          `json:"sex"`
	Gender        string          `json:"gender,omitempty"`
	Age           json.RawMessage `json:"age"`
	Weight        json.RawMessage `json:"weight"`
	Height        json.RawMessage `json:"height"`
	ActivityLevel json.RawMessage `json:"activityLevel"`
}

// EstimateResponse is the HTTP view of an estimate.
type EstimateResponse struct {
	EnergyEstimate
	BMR                float64  `json:"bmr"`
	ActivityMultiplier float64  `json:"activityMultiplier"`
	Warnings           []string `json:"warnings"`
}

// InvalidInputError reports a biometric field that cannot be used.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
