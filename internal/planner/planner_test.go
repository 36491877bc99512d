package planner

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkoutPrefs() WorkoutPreferences {
	return WorkoutPreferences{
		FitnessLevel:    "intermediate",
		FitnessGoal:     "muscle gain",
		WorkoutType:     "strength",
		FocusAreas:      []string{"chest", "back"},
		Location:        "gym",
		Equipment:       []string{"dumbbells", "barbell"},
		DurationMinutes: 45,
		TimePreference:  "morning",
		Intensity:       "high",
		RestPreference:  "short",
	}
}

func sampleMealPrefs() MealPreferences {
	return MealPreferences{
		Name:          "Sam",
		CalorieTarget: 2200,
		DietGoal:      "maintain",
		DietType:      "vegetarian",
		MealTypes:     []string{"Breakfast", "Lunch", "Dinner"},
		Cuisines:      []string{"Italian", "Indian"},
		LikedFoods:    "lentils, paneer",
		DislikedFoods: "mushrooms",
		Allergies:     []string{"peanuts"},
	}
}

func TestBuildWorkoutPrompt_EmbedsFields(t *testing.T) {
	prompt := BuildWorkoutPrompt(sampleWorkoutPrefs())

	for _, want := range []string{
		"Fitness Level: intermediate",
		"Fitness Goal: muscle gain",
		"Workout Type: strength",
		"Focus Areas: chest, back",
		"Location: gym",
		"Available Equipment: dumbbells, barbell",
		"Duration: 45 minutes",
		"Time Preference: morning",
		"Intensity: high",
		"Rest Preference: short",
		`"mainWorkout": [`,
		"Return the response as a JSON object with the following structure:",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestBuildWorkoutPrompt_Deterministic(t *testing.T) {
	p := sampleWorkoutPrefs()
	assert.Equal(t, BuildWorkoutPrompt(p), BuildWorkoutPrompt(p))
}

func TestBuildWorkoutPrompt_NoEscaping(t *testing.T) {
	p := sampleWorkoutPrefs()
	p.FitnessGoal = `lose "fat" <fast> & safely`

	assert.Contains(t, BuildWorkoutPrompt(p), `Fitness Goal: lose "fat" <fast> & safely`)
}

func TestBuildMealPrompt_EmbedsFields(t *testing.T) {
	prompt := BuildMealPrompt(sampleMealPrefs())

	for _, want := range []string{
		"Generate a detailed meal plan for Sam",
		"- Total daily calories: 2200",
		"- Diet goal: maintain",
		"- Diet type: vegetarian",
		"- Meal types: Breakfast, Lunch, Dinner",
		"- Preferred cuisines: Italian, Indian",
		"- Liked foods: lentils, paneer",
		"- Disliked foods: mushrooms",
		"- Allergies: peanuts",
		"including 3 meals",
		"calories for all meals equals 2200.",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.Equal(t, prompt, BuildMealPrompt(sampleMealPrefs()))
}

func TestBuildMealPrompt_EmptyLists(t *testing.T) {
	p := sampleMealPrefs()
	p.Allergies = nil
	p.Cuisines = []string{}

	prompt := BuildMealPrompt(p)
	assert.Contains(t, prompt, "- Allergies: \n")
	assert.Contains(t, prompt, "- Preferred cuisines: \n")
}

func TestValidatePreferences(t *testing.T) {
	w := sampleWorkoutPrefs()
	require.NoError(t, ValidateWorkout(w))
	w.DurationMinutes = 0
	var inputErr *InvalidInputError
	require.ErrorAs(t, ValidateWorkout(w), &inputErr)
	assert.Equal(t, "workoutDuration", inputErr.Field)

	m := sampleMealPrefs()
	require.NoError(t, ValidateMeal(m))
	m.MealTypes = nil
	require.ErrorAs(t, ValidateMeal(m), &inputErr)
	assert.Equal(t, "mealTypes", inputErr.Field)
	m = sampleMealPrefs()
	m.CalorieTarget = -1
	require.ErrorAs(t, ValidateMeal(m), &inputErr)
	assert.Equal(t, "calories", inputErr.Field)
}

const workoutJSON = `{
  "type": "strength",
  "level": "intermediate",
  "goal": "muscle gain",
  "duration": 45,
  "intensity": "high",
  "preference": "morning",
  "focusAreas": ["chest", "back"],
  "warmup": {"duration": 5, "exercises": ["jumping jacks"]},
  "mainWorkout": [{"name": "Bench Press", "sets": 4, "reps": 8, "rest": "90s"}],
  "cooldown": {"duration": 5, "exercises": ["stretching"]},
  "hydrationTips": ["drink water"],
  "recommendations": ["sleep well"],
  "extraNote": {"nested": [1, 2.50, 3]}
}`

func TestParsePlanResponse_Workout(t *testing.T) {
	plan, err := ParsePlanResponse(KindWorkout, workoutJSON)
	require.NoError(t, err)

	main := plan["mainWorkout"].([]any)
	require.Len(t, main, 1)
	assert.Equal(t, "Bench Press", main[0].(map[string]any)["name"])
}

func TestParsePlanResponse_RoundTrip(t *testing.T) {
	plan, err := ParsePlanResponse(KindWorkout, workoutJSON)
	require.NoError(t, err)

	encoded, err := Encode(plan)
	require.NoError(t, err)

	assert.JSONEq(t, workoutJSON, string(encoded))
	assert.Contains(t, string(encoded), "2.50")
}

func TestParsePlanResponse_StripsCodeFence(t *testing.T) {
	fenced := "```json\n" + workoutJSON + "\n```"

	plan, err := ParsePlanResponse(KindWorkout, fenced)
	require.NoError(t, err)
	assert.Equal(t, "strength", plan["type"])
}

func TestParsePlanResponse_Malformed(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		raw  string
	}{
		{"not json", KindWorkout, "Here is your workout plan: do pushups"},
		{"empty", KindWorkout, "   "},
		{"array top level", KindWorkout, `[{"name":"x"}]`},
		{"missing mainWorkout", KindWorkout, `{"type":"cardio","warmup":{"duration":5,"exercises":[]}}`},
		{"mainWorkout wrong shape", KindWorkout, `{"mainWorkout":{"name":"squat"}}`},
		{"exercise without name", KindWorkout, `{"mainWorkout":[{"sets":3}]}`},
		{"warmup wrong shape", KindWorkout, `{"mainWorkout":[],"warmup":["jog"]}`},
		{"trailing data", KindWorkout, `{"mainWorkout":[]} and more`},
		{"meal empty object", KindMeal, `{}`},
		{"meal value not array", KindMeal, `{"Breakfast":{"Name":"Oats","Calories":300}}`},
		{"meal calories as text", KindMeal, `{"Breakfast":[{"Name":"Oats","Description":"oats","Calories":"300 kcal"}]}`},
		{"meal missing name", KindMeal, `{"Lunch":[{"Description":"salad","Calories":300}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePlanResponse(tc.kind, tc.raw)

			var malformed *MalformedPlanError
			require.True(t, errors.As(err, &malformed), "expected MalformedPlanError, got %v", err)
			assert.Equal(t, tc.kind, malformed.Kind)
		})
	}
}

func TestParsePlanResponse_Meal(t *testing.T) {
	raw := `{"Breakfast":[{"Name":"Oats","Description":"rolled oats","Calories":350}],"Dinner":[{"Name":"Dal","Calories":600}]}`

	plan, err := ParsePlanResponse(KindMeal, raw)
	require.NoError(t, err)
	assert.Len(t, plan, 2)
	assert.Equal(t, json.Number("350"), plan["Breakfast"].([]any)[0].(map[string]any)["Calories"])
}

func TestResolve(t *testing.T) {
	raw := "```json\n{\"Breakfast\":[{\"Name\":\"Oats\",\"Calories\":350}]}\n```"

	structured, err := Resolve(ModeStructured, KindMeal, raw)
	require.NoError(t, err)
	assert.Equal(t, ModeStructured, structured.Mode())
	assert.IsType(t, Structured{}, structured)

	rawResp, err := Resolve(ModeRaw, KindMeal, raw)
	require.NoError(t, err)
	assert.Equal(t, Raw{Text: raw}, rawResp)
	assert.Equal(t, raw, Body(rawResp))

	_, err = Resolve(ModeRaw, KindMeal, "")
	var malformed *MalformedPlanError
	assert.ErrorAs(t, err, &malformed)

	_, err = Resolve(ModeStructured, KindMeal, "not json")
	assert.ErrorAs(t, err, &malformed)
}

func TestSchema(t *testing.T) {
	workout, err := SchemaJSON(KindWorkout)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(workout, &doc))
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "mainWorkout")
	assert.Contains(t, doc["required"], "mainWorkout")

	meal, err := SchemaJSON(KindMeal)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(meal), `"Calories"`))

	_, err = Schema(Kind("yoga"))
	assert.Error(t, err)
}
