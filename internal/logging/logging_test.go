package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/logging"
)

func TestSetup_Level(t *testing.T) {
	closer, err := logging.Setup(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	closer, err = logging.Setup(config.LoggingConfig{Level: "nonsense"})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "qorix.log")
	closer, err := logging.Setup(config.LoggingConfig{
		Level:        "info",
		Format:       "json",
		File:         file,
		MaxAge:       time.Hour,
		RotationTime: time.Hour,
	})
	require.NoError(t, err)

	log.Info().Str("component", "test").Msg("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
