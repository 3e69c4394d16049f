package logger

import (
	"context"
	"log/slog"
	"strings"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *slog.Logger
	zapBackend   *zap.Logger
)

// Init builds the zap backend for the given level and installs it as the default slog logger.
// Development mode switches zap to its console encoder.
func Init(levelStr string, development bool) *zap.Logger {
	slogLevel, zapLevel := parseLevel(levelStr)

	var zcfg zap.Config
	if development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zl, err := zcfg.Build()
	if err != nil {
		// zap only fails here on broken sink configuration
		zl = zap.NewExample()
	}
	zapBackend = zl

	handler := slogzap.Option{Level: slogLevel, Logger: zl}.NewZapHandler()
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	return zl
}

// Sync flushes the zap backend.
func Sync() {
	if zapBackend != nil {
		_ = zapBackend.Sync()
	}
}

func parseLevel(levelStr string) (slog.Level, zapcore.Level) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, zapcore.DebugLevel
	case "", "INFO":
		return slog.LevelInfo, zapcore.InfoLevel
	case "WARN", "WARNING":
		return slog.LevelWarn, zapcore.WarnLevel
	case "ERROR":
		return slog.LevelError, zapcore.ErrorLevel
	default:
		slog.Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
		return slog.LevelInfo, zapcore.InfoLevel
	}
}

func ensureInitialized() {
	if globalLogger == nil {
		Init("INFO", false)
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelDebug) {
		globalLogger.Debug(msg, args...)
	}
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
}
