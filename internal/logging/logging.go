// Package logging builds the service's diagnostic sink: a tinted
// console trace fanned out to an append-only text log file.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New creates the service logger. The returned closer owns the log
// file handle; callers close it on shutdown. When logFile is empty only
// the console handler is installed.
func New(logFile string, debug bool) (*slog.Logger, *os.File, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})

	if logFile == "" {
		return slog.New(console), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(fanout{console, file}), f, nil
}

// fanout dispatches each record to every wrapped handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
