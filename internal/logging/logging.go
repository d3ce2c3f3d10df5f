// Package logging configures the process-wide structured logger used by
// the goblk CLI and its example backends.
package logging

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	logger   atomic.Pointer[slog.Logger]
	levelVar = new(slog.LevelVar)
)

func init() {
	levelVar.Set(slog.LevelInfo)
	logger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})))
}

// Get returns the current process-wide logger.
func Get() *slog.Logger {
	return logger.Load()
}

// Configure reconfigures the process-wide logger's output format and
// level. format is "text" or "json"; level is one of
// "debug"/"info"/"warn"/"error".
func Configure(format, level string) {
	switch level {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger.Store(slog.New(handler))
}
