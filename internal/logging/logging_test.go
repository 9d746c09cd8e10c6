package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceLevelName(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"trace", LevelTrace, "TRACE"},
		{"fatal", LevelFatal, "FATAL"},
		{"standard info", slog.LevelInfo, "INFO"},
		{"standard error", slog.LevelError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := replaceLevelName(nil, slog.Any(slog.LevelKey, tt.level))
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}

	t.Run("other attributes pass through", func(t *testing.T) {
		attr := replaceLevelName(nil, slog.String("service", "csvimport"))
		assert.Equal(t, "csvimport", attr.Value.String())
	})
}

func TestInit(t *testing.T) {
	Init()

	assert.NotNil(t, Structured())
	assert.NotNil(t, HumanReadable())

	logger := ForService("datastore")
	require.NotNil(t, logger)
}

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "csvimport.log")

	logger, closeFn, err := NewFileLogger(logPath, "csvimport", LevelTrace)
	require.NoError(t, err)

	logger.Info("dataset parsed", "rows", 42)
	logger.Log(t.Context(), LevelTrace, "row accepted")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "dataset parsed", first["msg"])
	assert.Equal(t, "csvimport", first["service"])
	assert.InDelta(t, 42, first["rows"], 0.1)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "TRACE", second["level"])
}

func TestNewFileLoggerLevelFilter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "web.log")

	logger, closeFn, err := NewFileLogger(logPath, "webserver", slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("filtered out")
	logger.Warn("kept")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "filtered out")
	assert.Contains(t, string(data), "kept")
}
