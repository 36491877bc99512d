// Package planner turns user preferences into completion prompts and turns
// completions back into plans.
package planner

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": func(items []string) string { return strings.Join(items, ", ") }}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// BuildWorkoutPrompt renders the workout prompt. Values are embedded without
// escaping.
func BuildWorkoutPrompt(p WorkoutPreferences) string {
	return render("workout.tmpl", p)
}

// BuildMealPrompt renders the meal prompt.
func BuildMealPrompt(p MealPreferences) string {
	return render("meal.tmpl", p)
}

func render(name string, data any) string {
	var b strings.Builder
	// Templates are parsed at init and only reference fields that exist, so
	// execution into a strings.Builder cannot fail.
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		panic("planner: render " + name + ": " + err.Error())
	}
	return b.String()
}

// ValidateWorkout checks the few workout fields with a numeric domain.
func ValidateWorkout(p WorkoutPreferences) error {
	if p.DurationMinutes <= 0 {
		return &InvalidInputError{Field: "workoutDuration", Reason: "must be a positive number of minutes"}
	}
	return nil
}

// ValidateMeal checks the meal fields with a numeric or cardinality domain.
func ValidateMeal(p MealPreferences) error {
	if p.CalorieTarget <= 0 {
		return &InvalidInputError{Field: "calories", Reason: "must be a positive number"}
	}
	if len(p.MealTypes) == 0 {
		return &InvalidInputError{Field: "mealTypes", Reason: "at least one meal type is required"}
	}
	return nil
}
