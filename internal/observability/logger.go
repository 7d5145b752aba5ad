package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Trace and span ids are
// appended to every record when a span is active, so log lines can be
// joined with traces.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
