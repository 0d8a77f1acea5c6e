package render

import (
	"log/slog"

	"InkBoard/internal/logx"
)

var logRef logx.Ref

// SetLogger sets the logger for the render package. nil silences it.
func SetLogger(l *slog.Logger) { logRef.Set(l) }

func logger() *slog.Logger { return logRef.Get() }
