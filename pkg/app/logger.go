package app

import (
	"io"
	"log/slog"

	"storeroom/pkg/sl"
)

// setupLogger picks a colored handler for local runs and JSON everywhere else.
func setupLogger(env string, out io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		opts := sl.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		return slog.New(opts.NewPrettyHandler(out))
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
