package logging

import (
	"fmt"
	"log/slog"
	"os"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Setup installs the process-wide JSON logger. Config validation rejects
// unknown level names before this runs; anything else falls back to info.
func Setup(level string) {
	lvl, ok := levels[level]
	if !ok {
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	slog.SetDefault(slog.New(handler).With("service", "disaster-response"))
}

// Fatalf logs through the configured handler before exiting, so startup
// failures land in the same stream as everything else.
func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
