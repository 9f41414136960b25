// Package log builds the slog.Logger used by every command.
//
// Without a log file, records below error go to stdout and errors go to
// stderr, so a build system can surface failures separately from progress.
// With a log file, the console gets everything on stderr and the file gets a
// full copy.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below Debug and prints every compiler invocation detail.
const LevelTrace slog.Level = -8

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
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

// below passes only records under max to h.
type below struct {
	max slog.Level
	h   slog.Handler
}

func (b below) Enabled(ctx context.Context, level slog.Level) bool {
	return level < b.max && b.h.Enabled(ctx, level)
}

func (b below) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= b.max {
		return nil
	}
	return b.h.Handle(ctx, r)
}

func (b below) WithAttrs(attrs []slog.Attr) slog.Handler {
	return below{max: b.max, h: b.h.WithAttrs(attrs)}
}

func (b below) WithGroup(name string) slog.Handler {
	return below{max: b.max, h: b.h.WithGroup(name)}
}

// SetupLogger builds the process logger. The returned closers must be closed
// on exit.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	if logFile == "" {
		return New(ParseLevel(logLevel), os.Stdout, os.Stderr, nil), nil, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(ParseLevel(logLevel), nil, os.Stderr, f), []io.Closer{f}, nil
}

// New wires the handlers onto explicit writers. When stdout is nil the
// console output goes entirely to stderr.
func New(level slog.Level, stdout, stderr, file io.Writer) *slog.Logger {
	var hs fanout
	if stdout != nil {
		hs = append(hs,
			below{max: slog.LevelError, h: slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level})},
			slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: max(level, slog.LevelError)}),
		)
	} else {
		hs = append(hs, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
	if file != nil {
		hs = append(hs, slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(hs)
}
