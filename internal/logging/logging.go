// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/qorix-chat/internal/config"
)

// Setup points the global logger at stderr (console or JSON) and, when a file
// is configured, at a time-rotated log file as well.
// The returned closer releases the log file.
func Setup(cfg config.LoggingConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var console io.Writer = os.Stderr
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if cfg.File == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	rotated, err := rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithMaxAge(cfg.MaxAge),
		rotatelogs.WithRotationTime(cfg.RotationTime),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rotated)).With().Timestamp().Logger()
	return rotated, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
