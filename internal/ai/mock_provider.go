package ai

import (
	"context"
	"fmt"
)

// MockProvider answers with fixed plans so the API runs without an API key.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, &UpstreamServiceError{Provider: "mock", Err: err}
	}

	var text string
	switch req.Purpose {
	case "workout":
		text = mockWorkoutPlan
	case "meal":
		text = mockMealPlan
	default:
		text = fmt.Sprintf("Mock completion for %d message(s).", len(req.Messages))
	}

	return Completion{Text: text, Model: "mock", FinishReason: "stop"}, nil
}

const mockWorkoutPlan = `{
  "type": "Full body",
  "level": "Beginner",
  "goal": "General fitness",
  "duration": 30,
  "intensity": "Moderate",
  "preference": "Morning",
  "focusAreas": ["Legs", "Core"],
  "warmup": {"duration": 5, "exercises": ["Jumping jacks", "Arm circles", "Leg swings"]},
  "mainWorkout": [
    {"name": "Bodyweight squats", "sets": 3, "reps": 12, "rest": "60 seconds"},
    {"name": "Push-ups", "sets": 3, "reps": 10, "rest": "60 seconds"},
    {"name": "Plank", "sets": 3, "reps": 1, "rest": "45 seconds"}
  ],
  "cooldown": {"duration": 5, "exercises": ["Hamstring stretch", "Child's pose"]},
  "hydrationTips": ["Drink 500 ml of water an hour before training", "Sip water between sets"],
  "recommendations": ["Focus on form over speed", "Add reps when sets feel easy"]
}`

const mockMealPlan = `{
  "Breakfast": [
    {"Name": "Greek yogurt bowl", "Description": "200g Greek yogurt with oats, berries and honey", "Calories": 420},
    {"Name": "Black coffee", "Description": "1 cup, unsweetened", "Calories": 5}
  ],
  "Lunch": [
    {"Name": "Chicken quinoa salad", "Description": "Grilled chicken, quinoa, cucumber, tomato, olive oil dressing", "Calories": 650}
  ],
  "Dinner": [
    {"Name": "Salmon with vegetables", "Description": "Baked salmon fillet with roasted broccoli and sweet potato", "Calories": 700},
    {"Name": "Herbal tea", "Description": "1 cup chamomile tea", "Calories": 0}
  ]
}`
