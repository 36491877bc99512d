package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/dbmigrate"
	"github.com/fdg312/fitplan/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: go run ./cmd/migrate [up|status|down]")
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		log.Fatal().Str("command", command).Msg("unsupported command (allowed: up, status, down)")
	}

	cfg := config.Load()
	logger := logging.Setup(cfg.Env, cfg.LogLevel)

	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: no database url")
	}
	if target.Warning != "" {
		logger.Warn().Str("using", target.Source).Msg(target.Warning)
	}
	logger.Info().Str("command", command).Str("using", target.Source).Msg("migrate")

	if err := dbmigrate.Run(context.Background(), command, target.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}

	logger.Info().Str("command", command).Msg("migrate: completed")
}
