// Package logging sets up structured logging for the status service: console and
// weekly rotating file output, package-level helpers and request logging middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/giygas/nginx-status/config"
)

// LoggingService owns the process logger and its file output
type LoggingService struct {
	Logger         *slog.Logger
	rotatingLogger *RotatingLogger
}

var DefaultLoggingService *LoggingService

// parseLogLevel converts a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel returns the console level for env. An explicit level
// overrides the environment default, except in tests where the console stays
// quiet unless verbose is set.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if level != "" {
		return parseLogLevel(level)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level of the file output, which keeps everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// InitLogger initializes the global logger instance
func InitLogger(logDir string, env config.Environment, level string, retentionWeeks int, maxFileSize int64) {
	verbose := testing.Testing() && testing.Verbose()

	logger, rotating := SetupLogger(logDir,
		GetConsoleLogLevel(env, level, verbose),
		GetFileLogLevel(),
		retentionWeeks,
		maxFileSize,
	)

	DefaultLoggingService = &LoggingService{
		Logger:         logger,
		rotatingLogger: rotating,
	}
	slog.SetDefault(logger)
}

// Close releases the file output of the global logger
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotatingLogger == nil {
		return nil
	}
	return DefaultLoggingService.rotatingLogger.Close()
}

// ResetForTest installs a fresh global logger writing to logDir and closes it
// when the test ends
func ResetForTest(tb testing.TB, logDir string, env config.Environment, level string, retentionWeeks int, maxFileSize int64) {
	tb.Helper()

	_ = Close()
	InitLogger(logDir, env, level, retentionWeeks, maxFileSize)

	service := DefaultLoggingService
	tb.Cleanup(func() {
		if service.rotatingLogger != nil {
			_ = service.rotatingLogger.Close()
		}
	})
}

// Package-level functions for direct access

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelInfo).Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelError).Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelWarn).Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelInfo).Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
