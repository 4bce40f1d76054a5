package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

func New(logLevel string, json bool) *slog.Logger {
	return slog.New(consoleHandler(os.Stdout, parseLevel(logLevel), json))
}

// NewWithFile logs to stdout and, when logFile is set, also appends JSON
// records to that file. The returned func closes the file.
func NewWithFile(logLevel string, json bool, logFile string) (*slog.Logger, func() error) {
	if logFile == "" {
		return New(logLevel, json), func() error { return nil }
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := New(logLevel, json)
		logger.Error("open log file, using stdout only", "err", err, "file", logFile)
		return logger, func() error { return nil }
	}

	return NewWithWriters(os.Stdout, f, logLevel, json), f.Close
}

// NewWithWriters fans records out to console (text or JSON) and file (always JSON).
func NewWithWriters(console, file io.Writer, logLevel string, json bool) *slog.Logger {
	level := parseLevel(logLevel)
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler(console, level, json), fileHandler))
}

func consoleHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, AddSource: true}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(s)
	switch s {
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
