// Package logging builds the zap logger shared by the ingestion stages.
// Every entry goes to the console and to a log file with the same layout:
//
//	timestamp - logger_name - LEVEL - message
//
// Structured fields, when present, follow the message.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"smsingest/pkg/config"
)

// TimeLayout matches the classic "asctime" rendering.
const TimeLayout = "2006-01-02 15:04:05,000"

// New builds a logger writing to stderr and to cfg.Dir/cfg.File.
// The returned cleanup flushes and closes the file sink; call it once on exit.
func New(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	var console zapcore.WriteSyncer
	if cfg.Console {
		console = zapcore.Lock(os.Stderr)
	}
	return build(cfg, console)
}

func build(cfg config.LoggingConfig, console zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	atom := zap.NewAtomicLevelAt(level)
	enc := zapcore.NewConsoleEncoder(EncoderConfig(cfg.Name))

	var cores []zapcore.Core
	if console != nil {
		cores = append(cores, zapcore.NewCore(enc, console, atom))
	}

	var file *os.File
	if cfg.File != "" {
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		file, err = os.OpenFile(filepath.Join(dir, cfg.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(file), atom))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, cleanup, nil
}

// EncoderConfig returns the console encoder layout used by both sinks.
// The logger name is emitted ahead of the level so lines read
// "time - name - LEVEL - message".
func EncoderConfig(name string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " - ",
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			if name != "" {
				enc.AppendString(name)
			}
			enc.AppendString(l.CapitalString())
		},
	}
}
