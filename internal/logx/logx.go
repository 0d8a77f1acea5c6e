// Package logx holds the swappable loggers of the library packages. A Ref
// discards everything until a logger is set.
package logx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nop = slog.New(nopHandler{})

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return nop }

// Ref is a logger that can be replaced while other goroutines log through
// it. The zero value is silent.
type Ref struct {
	p atomic.Pointer[slog.Logger]
}

// Set replaces the logger; nil silences it.
func (r *Ref) Set(l *slog.Logger) { r.p.Store(l) }

func (r *Ref) Get() *slog.Logger {
	if l := r.p.Load(); l != nil {
		return l
	}
	return nop
}
