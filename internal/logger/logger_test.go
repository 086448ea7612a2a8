package logger

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLoggerSilentBeforeInitialize(t *testing.T) {
	require.Equal(t, io.Discard, output)

	componentLogger := GetForComponent("engine")
	componentLogger.Debug().Msg("not written anywhere")
	assert.Equal(t, io.Discard, output)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestComponentLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.log")
	fileWriter, err := FileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { Initialize("info") })

	// Created before Initialize, as package-level component loggers are.
	componentLogger := GetForComponent("catalog")
	Initialize("info", fileWriter)

	componentLogger.Info().Msg("catalog loaded")
	componentLogger.Debug().Msg("below level")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "catalog loaded")
	assert.Contains(t, string(content), `"component":"catalog"`)
	assert.NotContains(t, string(content), "below level")
}
