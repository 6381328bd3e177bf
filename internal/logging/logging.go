package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
)

// Format selects the log output format.
type Format string

const (
	// FormatText is colorized, human-oriented console output.
	FormatText Format = "text"
	// FormatJSON is line-delimited JSON for machine consumption.
	FormatJSON Format = "json"
)

// Config describes a logger to build.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Format chooses text or JSON output.
	Format Format
	// Output receives the log stream; nil means os.Stderr.
	Output io.Writer
}

// New builds a logger from cfg. Unknown formats fall back to text.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = NewHandler(out, opts)
	}
	return slog.New(h)
}

// Default returns the logger used before flags are parsed: Info level,
// text format, stderr.
func Default() *slog.Logger {
	return New(Config{Level: slog.LevelInfo, Format: FormatText})
}

// NewDiscard returns a logger that drops everything, for quiet mode.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromVerbosity maps -v flag counts to slog levels.
// 0 is Info, 1 is Debug, 2 and above enable trace-level detail.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelInfo
	case v == 1:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

type contextKey struct{}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the default logger when
// none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// testWriter feeds log lines into testing.T so they show up with -v or on
// failure.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	msg := string(p)
	// t.Log appends its own newline.
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.t.Log(msg)
	return len(p), nil
}

// ForTest returns a Debug-level text logger whose output goes through
// t.Log.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  slog.LevelDebug,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
}
