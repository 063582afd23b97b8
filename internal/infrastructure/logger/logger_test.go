package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigPresets(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "stdout", dev.Output)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "stdout", prod.Output)
	assert.NotEmpty(t, prod.TimeFormat)
}

func TestNew_WritesStructuredJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     logPath,
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
	require.NoError(t, err)

	logger.Info("ledger reconciliation finished")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "ledger reconciliation finished", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_LevelFilters(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(&Config{
		Level:      "error",
		Format:     "json",
		Output:     logPath,
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
	require.NoError(t, err)

	logger.Info("suppressed")
	logger.Error("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed")
	assert.Contains(t, string(data), "kept")
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			logger, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for level, want := range cases {
		assert.Equal(t, want, parseLevel(level), "level %q", level)
	}
}

func TestNewSink_UnwritablePathFallsBackToStdout(t *testing.T) {
	sink := newSink(filepath.Join(t.TempDir(), "missing", "nested", "app.log"))
	assert.NotNil(t, sink)
}

func TestSync(t *testing.T) {
	logger, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	})
	require.NoError(t, err)

	// stderr sync can fail on some platforms, only check it runs
	_ = Sync(logger)
}
