// Package logging provides the application's structured logging setup:
// a JSON logger for machine consumption, a text logger for humans, and
// per-service file loggers with lumberjack rotation.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
)

// Custom levels extending the standard slog range.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// replaceLevelName renames the custom levels in handler output so TRACE
// and FATAL appear instead of DEBUG-4 and ERROR+4.
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		label, ok := levelNames[level]
		if !ok {
			label = level.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

func newJSONHandler(w *os.File, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	})
}

// Init configures the global loggers: JSON to stdout for structured
// consumers and text to stderr for humans. The structured logger
// becomes the slog default.
func Init() {
	structuredLogger = slog.New(newJSONHandler(os.Stdout, slog.LevelDebug))
	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceLevelName,
	}))
	slog.SetDefault(structuredLogger)
}

// SetLevel rebuilds both global loggers with the given minimum level.
func SetLevel(level slog.Level) {
	structuredLogger = slog.New(newJSONHandler(os.Stdout, level))
	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	}))
	slog.SetDefault(structuredLogger)
}

// Structured returns the global structured (JSON) logger, or nil before
// Init has been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the global human-readable (text) logger, or nil
// before Init has been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService returns a child of the structured logger carrying a
// 'service' attribute, or nil before Init has been called.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return nil
	}
	return structuredLogger.With("service", serviceName)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs at the custom fatal level and exits the process.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Trace logs at the custom trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// NewFileLogger returns a JSON logger writing to filePath through a
// lumberjack writer, a close function for the writer, and an error if
// the log directory cannot be created. Rotation behavior follows the
// main log settings when configuration is loaded; otherwise size-based
// defaults apply. All records carry a 'service' attribute.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	applyRotation(logWriter)

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}

// applyRotation overrides the lumberjack defaults from the main log
// configuration. Settings may be nil early in startup or in tests.
func applyRotation(w *lumberjack.Logger) {
	settings := conf.GetSettings()
	if settings == nil {
		return
	}
	logConf := settings.Main.Log

	if sizeMB := int(logConf.MaxSize / (1024 * 1024)); sizeMB > 0 {
		w.MaxSize = sizeMB
	}
	switch logConf.Rotation {
	case conf.RotationDaily:
		w.MaxAge = 1
		w.MaxBackups = 30
	case conf.RotationWeekly:
		w.MaxAge = 7
		w.MaxBackups = 4
	case conf.RotationSize:
		// Size-based rotation uses MaxSize as applied above.
	default:
		slog.Warn("Unknown log rotation type in config, using size-based defaults", "configuredType", logConf.Rotation)
	}
}
