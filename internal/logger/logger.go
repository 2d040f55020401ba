package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/polkiloo/foodbridge/internal/config"
)

const serviceName = "foodbridge"

// New creates a JSON logger on stdout at the configured level.
func New(cfg *config.Config) *slog.Logger {
	return newJSON(os.Stdout, cfg.LogLevel)
}

// Discard returns a logger that drops every record. Used by tests and tools.
func Discard() *slog.Logger {
	return newJSON(io.Discard, slog.LevelInfo)
}

func newJSON(w io.Writer, level slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", serviceName))
}
