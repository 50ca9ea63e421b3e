// Package simlog wraps log/slog with a handler that emits "[E] …"/"[I] …"/
// "[D] …" line prefixes instead of slog's default key=value format.
package simlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// New returns a *slog.Logger writing prefixed lines to w.
func New(w io.Writer) *slog.Logger {
	return slog.New(newHandler(w))
}

type handler struct {
	w    io.Writer
	args []slog.Attr
}

func newHandler(w io.Writer) *handler { return &handler{w: w} }

func (h *handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	prefix := "[D]"
	switch {
	case r.Level >= slog.LevelError:
		prefix = "[E]"
	case r.Level >= slog.LevelWarn:
		prefix = "[E]" // the original tool has no separate warn prefix; warnings are errors-that-don't-abort
	case r.Level >= slog.LevelInfo:
		prefix = "[I]"
	}

	line := fmt.Sprintf("%s %s", prefix, r.Message)
	for _, a := range h.args {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{w: h.w, args: append(append([]slog.Attr(nil), h.args...), attrs...)}
}

func (h *handler) WithGroup(string) slog.Handler { return h }
