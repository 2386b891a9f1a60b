// Package logging provides structured logging for portsweep on top of
// log/slog. Output format, level, and destination come from configuration;
// helpers attach the fields every scan log line should carry.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	logDirPerm  = 0750
	logFilePerm = 0600
)

// LogLevel represents the available log levels.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogFormat represents the available log formats.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Config holds logging configuration.
type Config struct {
	Level     LogLevel  `yaml:"level" json:"level"`
	Format    LogFormat `yaml:"format" json:"format"`
	Output    string    `yaml:"output" json:"output"`
	AddSource bool      `yaml:"add_source" json:"add_source"`
}

// DefaultConfig returns a default logging configuration. Logs go to stderr so
// scan output on stdout stays machine-readable.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: "stderr",
	}
}

var slogLevels = map[LogLevel]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Logger wraps slog.Logger with scan-oriented field helpers.
type Logger struct {
	*slog.Logger
	config Config
}

// New creates a logger from the given configuration. An unknown level falls
// back to info rather than failing the whole startup.
func New(cfg Config) (*Logger, error) {
	level, ok := slogLevels[cfg.Level]
	if !ok {
		level = slog.LevelInfo
	}

	writer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{Logger: slog.New(handler), config: cfg}, nil
}

// openOutput maps an output name to a writer. Anything that is not a known
// stream name is treated as a file path and opened for append.
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), logDirPerm); err != nil {
		return nil, err
	}
	return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
}

// NewDefault creates a logger with default configuration.
func NewDefault() *Logger {
	logger, _ := New(DefaultConfig())
	return logger
}

// WithFields returns a logger carrying additional structured fields.
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{Logger: l.With(fields...), config: l.config}
}

// WithComponent tags log lines with the emitting component.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// WithScanID tags log lines with a scan run identifier.
func (l *Logger) WithScanID(scanID string) *Logger {
	return l.WithFields("scan_id", scanID)
}

// WithHost tags log lines with the scanned host.
func (l *Logger) WithHost(host string) *Logger {
	return l.WithFields("host", host)
}

// WithError tags log lines with an error value.
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields("error", err)
}

// InfoScan logs scan progress for a host.
func (l *Logger) InfoScan(msg, host string, fields ...any) {
	l.Info(msg, append([]any{"host", host}, fields...)...)
}

// ErrorScan logs a scan failure for a host.
func (l *Logger) ErrorScan(msg, host string, err error, fields ...any) {
	l.Error(msg, append([]any{"host", host, "error", err}, fields...)...)
}

// Package-level default logger, replaced once configuration is loaded.
var defaultLogger = NewDefault()

// SetDefault replaces the default logger instance.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default logger instance.
func Default() *Logger {
	return defaultLogger
}

// Debug logs at debug level using the default logger.
func Debug(msg string, fields ...any) {
	defaultLogger.Debug(msg, fields...)
}

// Info logs at info level using the default logger.
func Info(msg string, fields ...any) {
	defaultLogger.Info(msg, fields...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, fields ...any) {
	defaultLogger.Warn(msg, fields...)
}

// Error logs at error level using the default logger.
func Error(msg string, fields ...any) {
	defaultLogger.Error(msg, fields...)
}

// InfoScan logs scan progress using the default logger.
func InfoScan(msg, host string, fields ...any) {
	defaultLogger.InfoScan(msg, host, fields...)
}

// ErrorScan logs a scan failure using the default logger.
func ErrorScan(msg, host string, err error, fields ...any) {
	defaultLogger.ErrorScan(msg, host, err, fields...)
}
