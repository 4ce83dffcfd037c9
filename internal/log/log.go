// Package log is the process-wide structured logger.
//
// Calls take a message followed by alternating key/value pairs:
//
//	log.Info("device mounted", "device", "sda1", "path", "/mnt/sda1")
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
	Level(zerolog.InfoLevel).
	With().Timestamp().Logger()

// Setup configures the global logger. With no writers, logs go to stderr in
// human readable form. Verbose enables debug messages.
func Setup(verbose bool, writers ...io.Writer) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Console returns a human readable writer on stderr, for use with Setup
// alongside a file writer.
func Console() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
}

// File returns a size-rotated log file writer.
func File(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
	}
}

// Debug logs at debug level, shown only when verbose.
func Debug(msg string, args ...any) {
	logger.Debug().Fields(args).Msg(msg)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	logger.Info().Fields(args).Msg(msg)
}

// Warn logs a problem the panel carries on from.
func Warn(msg string, args ...any) {
	logger.Warn().Fields(args).Msg(msg)
}

// Error logs a failed operation.
func Error(msg string, args ...any) {
	logger.Error().Fields(args).Msg(msg)
}
