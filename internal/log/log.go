// Package log is a thin wrapper around log/slog that gives the rest of
// the server a stable, package-level logging API.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Options controls how the process-wide logger is initialized.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// Init configures the process-wide logger. It may be called again to
// change level or format, e.g. when --verbose is passed.
func Init(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	mu.Lock()
	logger = slog.New(handler)
	mu.Unlock()
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a message at debug level with key/value attributes.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs a message at info level with key/value attributes.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs a message at warn level with key/value attributes.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs a message at error level with key/value attributes.
func Error(msg string, args ...any) { current().Error(msg, args...) }
