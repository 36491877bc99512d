package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Resolve turns completion text into the PlanResponse variant chosen by mode.
func Resolve(mode Mode, kind Kind, raw string) (PlanResponse, error) {
	switch mode {
	case ModeRaw:
		if strings.TrimSpace(raw) == "" {
			return nil, &MalformedPlanError{Kind: kind, Reason: "empty completion"}
		}
		return Raw{Text: raw}, nil
	case ModeStructured:
		plan, err := ParsePlanResponse(kind, raw)
		if err != nil {
			return nil, err
		}
		return Structured{Plan: plan}, nil
	default:
		return nil, fmt.Errorf("unknown response mode %q", mode)
	}
}

// ParsePlanResponse decodes raw as a JSON object and checks it against the
// expected shape for kind. Numbers are kept as json.Number.
func ParsePlanResponse(kind Kind, raw string) (GeneratedPlan, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, &MalformedPlanError{Kind: kind, Reason: "empty completion"}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedPlanError{Kind: kind, Reason: "not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedPlanError{Kind: kind, Reason: "trailing data after JSON value"}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedPlanError{Kind: kind, Reason: "top-level value is not an object"}
	}

	var err error
	switch kind {
	case KindWorkout:
		err = checkWorkout(obj)
	case KindMeal:
		err = checkMeal(obj)
	default:
		return nil, fmt.Errorf("unknown plan kind %q", kind)
	}
	if err != nil {
		return nil, &MalformedPlanError{Kind: kind, Reason: err.Error()}
	}
	return GeneratedPlan(obj), nil
}

// stripCodeFence removes a surrounding ```json ... ``` block, which chat
// models add even when asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return ""
	}
	s = strings.TrimSpace(s[nl+1:])
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func checkWorkout(obj map[string]any) error {
	main, ok := obj["mainWorkout"]
	if !ok {
		return errors.New(`missing required key "mainWorkout"`)
	}
	rows, ok := main.([]any)
	if !ok {
		return errors.New(`"mainWorkout" must be an array`)
	}
	for i, row := range rows {
		exercise, ok := row.(map[string]any)
		if !ok {
			return fmt.Errorf(`"mainWorkout[%d]" must be an object`, i)
		}
		if name, ok := exercise["name"].(string); !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf(`"mainWorkout[%d].name" must be a non-empty string`, i)
		}
	}

	for _, key := range []string{"warmup", "cooldown"} {
		if v, present := obj[key]; present {
			phase, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%q must be an object", key)
			}
			if ex, present := phase["exercises"]; present {
				if _, ok := ex.([]any); !ok {
					return fmt.Errorf("%q must be an array", key+".exercises")
				}
			}
		}
	}

	for _, key := range []string{"focusAreas", "hydrationTips", "recommendations"} {
		if v, present := obj[key]; present {
			if _, ok := v.([]any); !ok {
				return fmt.Errorf("%q must be an array", key)
			}
		}
	}
	return nil
}

func checkMeal(obj map[string]any) error {
	if len(obj) == 0 {
		return errors.New("no meal types in plan")
	}
	for mealType, v := range obj {
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%q must be an array of meal components", mealType)
		}
		for i, item := range items {
			component, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf(`"%s[%d]" must be an object`, mealType, i)
			}
			if name, ok := component["Name"].(string); !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf(`"%s[%d].Name" must be a non-empty string`, mealType, i)
			}
			if _, ok := component["Calories"].(json.Number); !ok {
				return fmt.Errorf(`"%s[%d].Calories" must be a number`, mealType, i)
			}
			if d, present := component["Description"]; present {
				if _, ok := d.(string); !ok {
					return fmt.Errorf(`"%s[%d].Description" must be a string`, mealType, i)
				}
			}
		}
	}
	return nil
}

// Encode serializes a plan as compact JSON.
func Encode(p GeneratedPlan) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(p)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
