package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/qorix-chat/internal/app"
	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logFile, err := logging.Setup(cfg.Logging)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup logging: %v", err))
	}
	defer logFile.Close()

	log.Info().Str("driver", cfg.Storage.Driver).Bool("down", *down).Msg("running migrations")

	if err := app.Migrate(cfg, *down); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
}
