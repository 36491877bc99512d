package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appcfg "github.com/fdg312/fitplan/internal/config"
)

// NewBlobStore builds a blob store using mode local|s3|auto. It returns the
// store and the effective mode.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger zerolog.Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logger.Info().Str("mode", "local").Msg("blob: mode=local (forced)")
		return NewMemoryStore(), appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			logger.WithLevel(parseLevel(level)).Str("code", code).Str("s3", cfg.S3.DiagnosticsSummary()).Msg("blob.s3: " + msg)
			logger.Info().Str("mode", "local").Msg("blob: mode=local (auto, S3 not configured)")
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}

		logger.Info().Str("code", "s3_ready").Str("s3", cfg.S3.DiagnosticsSummary()).Msg("blob.s3: ready")
		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			logger.Warn().Err(err).Msg("blob.s3: init failed, fallback=local")
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}

		logger.Info().Str("mode", "s3").Msg("blob: mode=s3 (auto, configured)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			logger.Error().Str("code", "s3_config_incomplete").Strs("missing", missing).Str("s3", cfg.S3.DiagnosticsSummary()).Msg("blob.s3: config incomplete")
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}

		logger.Info().Str("mode", "s3").Str("s3", cfg.S3.DiagnosticsSummary()).Msg("blob: mode=s3 (forced)")
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
