package engine

import (
	"log/slog"

	"InkBoard/internal/logx"
)

var logRef logx.Ref

// SetLogger sets the logger used by the engine. The engine is silent until
// this is called; nil silences it again.
func SetLogger(l *slog.Logger) { logRef.Set(l) }

func logger() *slog.Logger { return logRef.Get() }
