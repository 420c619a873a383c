package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/filegate/config"
)

// setupLogging installs the process-wide slog logger and routes the standard
// log package through it. Unknown levels fall back to info.
func setupLogging(cfg config.LogConfig) {
	logger := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(normalizeLevel(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  level <= slog.LevelDebug,
		TimeFormat: "15:04:05.000",
	}))
}

func normalizeLevel(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return "warn"
	}
	return s
}
