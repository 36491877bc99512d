package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/dbmigrate"
	"github.com/fdg312/fitplan/internal/httpserver"
	"github.com/fdg312/fitplan/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logStartupBanner(logger, cfg)

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			logger.Fatal().Err(err).Msg("startup migrations")
		}

		logger.Info().Str("using", target.Source).Msg("startup migrations: up")
		if err := dbmigrate.Run(ctx, "up", target.URL); err != nil {
			logger.Fatal().Err(err).Msg("startup migrations failed")
		}
		logger.Info().Msg("startup migrations: completed")
	}

	validateProductionConfig(logger, cfg)

	server, err := httpserver.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("server init failed")
	}
	defer server.Close()

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("server exited")
}

// logStartupBanner logs the resolved configuration once. Secrets are only
// reported as set or not set.
func logStartupBanner(logger zerolog.Logger, cfg *config.Config) {
	logger.Info().
		Str("env", cfg.Env).
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("fitplan api starting")

	logger.Info().
		Str("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)).
		Str("pooled", setOrNot(cfg.DatabaseURLPooled)).
		Str("direct", setOrNot(cfg.DatabaseURLDirect)).
		Bool("migrations_on_startup", cfg.RunMigrationsOnStartup).
		Msg("config: database")

	logger.Info().
		Str("auth_mode", cfg.AuthMode).
		Bool("auth_required", cfg.AuthRequired).
		Str("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")).
		Int("jwt_ttl_minutes", cfg.JWTTTLMinutes).
		Str("app_url", cfg.AppURL).
		Msg("config: auth")

	blobEvent := logger.Info().Str("blob_mode", cfg.Blob.Mode).Int("upload_max_mb", cfg.UploadMaxMB).Str("upload_mime", cfg.UploadAllowedMime)
	if cfg.Blob.Mode != config.BlobModeLocal {
		blobEvent = blobEvent.Str("s3", cfg.Blob.S3.DiagnosticsSummary())
	}
	blobEvent.Msg("config: blob")

	aiEvent := logger.Info().
		Str("ai_mode", cfg.AIMode).
		Int("timeout_seconds", cfg.AITimeoutSeconds).
		Bool("structured_outputs", cfg.AIStructuredOutputs).
		Str("workout_mode", cfg.Workout.ResponseMode).
		Str("meal_mode", cfg.Meal.ResponseMode)
	if cfg.AIMode == config.AIModeOpenAI {
		aiEvent = aiEvent.Str("openai_model", cfg.OpenAIModel).Str("openai_api_key", setOrNot(cfg.OpenAIAPIKey))
	}
	aiEvent.Msg("config: ai")
}

// validateProductionConfig performs fatal checks that only matter outside local.
func validateProductionConfig(logger zerolog.Logger, cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			logger.Fatal().Strs("missing", missing).Msg("blob: BLOB_MODE=s3 but S3 config is incomplete")
		}
	}

	if isProd && cfg.AuthMode != config.AuthModeNone && cfg.JWTSecret == "change_me" {
		logger.Fatal().Str("env", cfg.Env).Msg("auth: JWT_SECRET must not be 'change_me'")
	}

	if isProd && cfg.DatabaseURL == "" {
		logger.Fatal().Str("env", cfg.Env).Msg("db: no DATABASE_URL configured")
	}
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return "not set"
	case v == insecureDefault:
		return "set (insecure default)"
	default:
		return "set (custom)"
	}
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
