// Package generation asks the completion provider for workout and meal plans.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/ai"
	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/observability"
	"github.com/fdg312/fitplan/internal/planner"
)

// EndpointOptions controls one generation endpoint.
type EndpointOptions struct {
	Mode        planner.Mode
	MaxTokens   int
	Temperature *float64
}

type Options struct {
	Workout EndpointOptions
	Meal    EndpointOptions
	// StructuredOutputs attaches the plan JSON schema to structured requests.
	StructuredOutputs bool
}

// RecordFunc receives one observation per generation attempt.
type RecordFunc func(kind, mode, outcome string, elapsed time.Duration)

// OptionsFromConfig maps the per-endpoint environment settings.
func OptionsFromConfig(cfg *config.Config) Options {
	endpoint := func(g config.GenerationConfig) EndpointOptions {
		return EndpointOptions{Mode: planner.Mode(g.ResponseMode), MaxTokens: g.MaxTokens, Temperature: g.Temperature}
	}
	return Options{
		Workout:           endpoint(cfg.Workout),
		Meal:              endpoint(cfg.Meal),
		StructuredOutputs: cfg.AIStructuredOutputs,
	}
}

type Service struct {
	provider ai.Provider
	opts     Options
	record   RecordFunc
	logger   zerolog.Logger
}

func NewService(provider ai.Provider, opts Options, record RecordFunc, logger zerolog.Logger) *Service {
	if record == nil {
		record = observability.RecordGeneration
	}
	return &Service{
		provider: provider,
		opts:     opts,
		record:   record,
		logger:   logger.With().Str("component", "generation").Logger(),
	}
}

// GenerateWorkout validates prefs and returns a plan in the workout mode.
func (s *Service) GenerateWorkout(ctx context.Context, prefs planner.WorkoutPreferences) (planner.PlanResponse, error) {
	if err := planner.ValidateWorkout(prefs); err != nil {
		return nil, err
	}
	return s.generate(ctx, planner.KindWorkout, s.opts.Workout, planner.BuildWorkoutPrompt(prefs))
}

// GenerateMeal validates prefs and returns a plan in the meal mode.
func (s *Service) GenerateMeal(ctx context.Context, prefs planner.MealPreferences) (planner.PlanResponse, error) {
	if err := planner.ValidateMeal(prefs); err != nil {
		return nil, err
	}
	return s.generate(ctx, planner.KindMeal, s.opts.Meal, planner.BuildMealPrompt(prefs))
}

func (s *Service) generate(ctx context.Context, kind planner.Kind, opts EndpointOptions, prompt string) (planner.PlanResponse, error) {
	start := time.Now()
	mode := opts.Mode
	if mode == "" {
		mode = planner.ModeStructured
	}

	req := ai.UserPrompt(string(kind), prompt)
	req.MaxTokens = opts.MaxTokens
	req.Temperature = opts.Temperature
	if mode == planner.ModeStructured && s.opts.StructuredOutputs {
		schema, err := planner.SchemaJSON(kind)
		if err != nil {
			return nil, fmt.Errorf("plan schema for %s: %w", kind, err)
		}
		req.Schema = &ai.ResponseSchema{Name: string(kind) + "_plan", Schema: schema}
	}

	completion, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.record(string(kind), string(mode), "upstream_error", time.Since(start))
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("completion failed")
		return nil, err
	}

	resp, err := planner.Resolve(mode, kind, completion.Text)
	if err != nil {
		outcome := "error"
		var malformed *planner.MalformedPlanError
		if errors.As(err, &malformed) {
			outcome = "malformed"
		}
		s.record(string(kind), string(mode), outcome, time.Since(start))
		s.logger.Warn().Err(err).
			Str("kind", string(kind)).
			Str("finish_reason", completion.FinishReason).
			Int("completion_chars", len(completion.Text)).
			Msg("completion rejected")
		return nil, err
	}

	elapsed := time.Since(start)
	s.record(string(kind), string(mode), "ok", elapsed)
	s.logger.Info().
		Str("kind", string(kind)).
		Str("mode", string(mode)).
		Str("model", completion.Model).
		Int("total_tokens", completion.TotalTokens).
		Dur("elapsed", elapsed).
		Msg("plan generated")
	return resp, nil
}
