package tdee

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseProfile converts a wire request into a BiometricProfile. It rejects
// values that are not numbers but leaves range checks to Compute.
func ParseProfile(req ProfileRequest) (BiometricProfile, error) {
	sex := req.Sex
	if sex == "" {
		sex = req.Gender
	}

	age, err := parseNumber("age", req.Age)
	if err != nil {
		return BiometricProfile{}, err
	}
	weight, err := parseNumber("weight", req.Weight)
	if err != nil {
		return BiometricProfile{}, err
	}
	height, err := parseNumber("height", req.Height)
	if err != nil {
		return BiometricProfile{}, err
	}
	multiplier, err := parseActivity(req.ActivityLevel)
	if err != nil {
		return BiometricProfile{}, err
	}

	if !isPositiveFinite(age) {
		return BiometricProfile{}, &InvalidInputError{Field: "age", Reason: "must be a positive integer"}
	}

	return BiometricProfile{
		Sex:                Sex(strings.ToLower(strings.TrimSpace(sex))),
		AgeYears:           int(math.Trunc(age)),
		WeightKg:           weight,
		HeightCm:           height,
		ActivityMultiplier: multiplier,
	}, nil
}

func parseNumber(field string, raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, &InvalidInputError{Field: field, Reason: "is required"}
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, &InvalidInputError{Field: field, Reason: "must be a number"}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &InvalidInputError{Field: field, Reason: "must be a number"}
	}
	return n, nil
}

// parseActivity accepts a multiplier (number or numeric string) or a level
// name such as "moderate".
func parseActivity(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &s); err == nil {
		if m, ok := multiplierByName(strings.ToLower(strings.TrimSpace(s))); ok {
			return m, nil
		}
	}

	m, err := parseNumber("activityLevel", raw)
	if err != nil {
		return 0, err
	}
	if !IsValidMultiplier(m) {
		return 0, &InvalidInputError{Field: "activityLevel", Reason: "must be one of 1.2, 1.375, 1.55, 1.725, 1.9"}
	}
	return m, nil
}
