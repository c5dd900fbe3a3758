package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib *log.Logger that forwards every line to base at info level,
// tagged with the component. It adapts slog to libraries that expect a Printf logger.
func New(component string, base *slog.Logger) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), slog.LevelInfo)
}
