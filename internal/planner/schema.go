package planner

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{DoNotReference: true}

// Schema returns the JSON schema of the plan shape expected for kind.
func Schema(kind Kind) (*jsonschema.Schema, error) {
	switch kind {
	case KindWorkout:
		return reflector.Reflect(&WorkoutPlan{}), nil
	case KindMeal:
		return reflector.Reflect(MealPlan{}), nil
	default:
		return nil, fmt.Errorf("unknown plan kind %q", kind)
	}
}

// SchemaJSON is Schema serialized for a completion request.
func SchemaJSON(kind Kind) (json.RawMessage, error) {
	s, err := Schema(kind)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
