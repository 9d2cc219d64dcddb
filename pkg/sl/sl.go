// Package sl holds slog helpers shared by every component.
package sl

import "log/slog"

// Err wraps an error as a log attribute.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
