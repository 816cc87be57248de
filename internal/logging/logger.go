// Package logging provides structured logging for mailframe, backed by
// log/slog with component-scoped child loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a thin wrapper over slog that carries the originating
// component name on every record.
type Logger struct {
	logger *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "text"
	Output io.Writer
}

// DefaultConfig returns the development defaults: human-readable text at
// info level on stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "text", Output: os.Stderr}
}

// New creates a logger from config; nil gets DefaultConfig.
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}
	var handler slog.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a child logger tagged with the component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{logger: l.logger.With("component", component)}
}

// With returns a child logger with extra key/value fields attached.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{logger: l.logger.With(fields...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

// Warn logs at warn level with an optional error.
func (l *Logger) Warn(msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	l.logger.Warn(msg, fields...)
}

// Error logs at error level with an optional error.
func (l *Logger) Error(msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	l.logger.Error(msg, fields...)
}
