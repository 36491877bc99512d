package planner

import "fmt"

// Kind names a plan family.
type Kind string

const (
	KindWorkout Kind = "workout"
	KindMeal    Kind = "meal"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindWorkout, KindMeal:
		return Kind(s), true
	default:
		return "", false
	}
}

// Mode decides how a completion is turned into a PlanResponse.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeRaw        Mode = "raw"
)

// WorkoutPreferences is the workout form. Text fields are passed to the
// prompt verbatim.
type WorkoutPreferences struct {
	FitnessLevel    string   `json:"fitnessLevel"`
	FitnessGoal     string   `json:"fitnessGoal"`
	WorkoutType     string   `json:"workoutType"`
	FocusAreas      []string `json:"selectedFocusAreas"`
	Location        string   `json:"workoutLocation"`
	Equipment       []string `json:"selectedEquipment"`
	DurationMinutes int      `json:"workoutDuration"`
	TimePreference  string   `json:"workoutPreference"`
	Intensity       string   `json:"intensity"`
	RestPreference  string   `json:"restPreference"`
}

// MealPreferences is the meal planner form.
type MealPreferences struct {
	Name          string   `json:"name"`
	CalorieTarget int      `json:"calories"`
	DietGoal      string   `json:"dietGoal"`
	DietType      string   `json:"dietType"`
	MealTypes     []string `json:"mealTypes"`
	Cuisines      []string `json:"cuisines"`
	LikedFoods    string   `json:"likedFoods"`
	DislikedFoods string   `json:"dislikedFoods"`
	Allergies     []string `json:"allergies"`
}

// GeneratedPlan is a parsed completion. It is kept untyped so every field the
// model returned survives a round trip.
type GeneratedPlan map[string]any

// PlanResponse is either Structured or Raw.
type PlanResponse interface {
	Mode() Mode
	isPlanResponse()
}

// Structured carries a parsed plan.
type Structured struct {
	Plan GeneratedPlan
}

func (Structured) Mode() Mode      { return ModeStructured }
func (Structured) isPlanResponse() {}

// Raw carries completion text that is shown as-is.
type Raw struct {
	Text string
}

func (Raw) Mode() Mode      { return ModeRaw }
func (Raw) isPlanResponse() {}

// Body returns the JSON value clients receive for r.
func Body(r PlanResponse) any {
	switch v := r.(type) {
	case Structured:
		return v.Plan
	case Raw:
		return v.Text
	default:
		return nil
	}
}

// WorkoutPlan documents the expected workout shape. It drives the JSON
// schema; parsed plans stay GeneratedPlan.
type WorkoutPlan struct {
	Type            string          `json:"type"`
	Level           string          `json:"level"`
	Goal            string          `json:"goal"`
	Duration        int             `json:"duration"`
	Intensity       string          `json:"intensity"`
	Preference      string          `json:"preference"`
	FocusAreas      []string        `json:"focusAreas"`
	Warmup          WorkoutPhase    `json:"warmup"`
	MainWorkout     []WorkoutSetRow `json:"mainWorkout"`
	Cooldown        WorkoutPhase    `json:"cooldown"`
	HydrationTips   []string        `json:"hydrationTips"`
	Recommendations []string        `json:"recommendations"`
}

type WorkoutPhase struct {
	Duration  int      `json:"duration"`
	Exercises []string `json:"exercises"`
}

type WorkoutSetRow struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps int    `json:"reps"`
	Rest string `json:"rest"`
}

// MealPlan maps a meal type such as "Breakfast" to its components.
type MealPlan map[string][]MealItem

type MealItem struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Calories    int    `json:"Calories"`
}

// InvalidInputError reports a preference field that cannot be used.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MalformedPlanError reports a completion that does not have the expected
// shape.
type MalformedPlanError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *MalformedPlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s plan: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s plan: %s", e.Kind, e.Reason)
}

func (e *MalformedPlanError) Unwrap() error { return e.Err }
