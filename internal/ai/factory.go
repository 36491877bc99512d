package ai

import (
	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/config"
)

// NewProvider picks the provider named by cfg.AIMode.
func NewProvider(cfg *config.Config, logger zerolog.Logger) Provider {
	switch cfg.AIMode {
	case config.AIModeOpenAI:
		logger.Info().Str("model", cfg.OpenAIModel).Str("base_url", nonEmptyOr(cfg.OpenAIBaseURL, "default")).Msg("ai: using openai provider")
		return NewOpenAIProvider(OpenAIOptions{
			APIKey:         cfg.OpenAIAPIKey,
			Model:          cfg.OpenAIModel,
			BaseURL:        cfg.OpenAIBaseURL,
			TimeoutSeconds: cfg.AITimeoutSeconds,
		})
	default:
		logger.Info().Msg("ai: using mock provider")
		return NewMockProvider()
	}
}

func nonEmptyOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
