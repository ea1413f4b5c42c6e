package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output so log shippers do not need a
// parser config.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
