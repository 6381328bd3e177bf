package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Handler is a slog.Handler for console output. When the writer is a color
// capable terminal the level, timestamp, and attribute keys are colorized;
// otherwise plain text is emitted.
type Handler struct {
	opts    slog.HandlerOptions
	out     io.Writer
	mu      *sync.Mutex
	attrs   []slog.Attr
	prefix  string
	palette *palette
}

// palette holds the color set. A nil palette means colors are disabled.
type palette struct {
	stamp *color.Color
	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
	key   *color.Color
}

// NewHandler creates a console handler writing to out. Colors are enabled
// only when out is a TTY that accepts ANSI sequences.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}

	if SupportsColor(out) {
		h.palette = &palette{
			stamp: color.New(color.FgHiBlack),
			debug: color.New(color.FgMagenta),
			info:  color.New(color.FgGreen),
			warn:  color.New(color.FgYellow),
			err:   color.New(color.FgRed, color.Bold),
			key:   color.New(color.FgCyan),
		}
	}

	return h
}

// Enabled reports whether records at the given level are emitted.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats the record into a single line and writes it in one call,
// so console and file fan-out never interleave partial lines.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		stamp := r.Time.Format(time.Kitchen)
		if h.palette != nil {
			stamp = h.palette.stamp.Sprint(stamp)
		}
		b.WriteString(stamp)
		b.WriteByte(' ')
	}

	fmt.Fprintf(&b, "%-5s ", h.levelLabel(r.Level))
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) levelLabel(level slog.Level) string {
	label := level.String()
	if h.palette == nil {
		return label
	}
	switch {
	case level >= slog.LevelError:
		return h.palette.err.Sprint(label)
	case level >= slog.LevelWarn:
		return h.palette.warn.Sprint(label)
	case level >= slog.LevelInfo:
		return h.palette.info.Sprint(label)
	default:
		return h.palette.debug.Sprint(label)
	}
}

func (h *Handler) writeAttr(b *strings.Builder, a slog.Attr) {
	key := h.prefix + a.Key
	if h.palette != nil {
		key = h.palette.key.Sprint(key)
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Any())
}

// WithAttrs returns a handler that also emits the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	clone.attrs = append(clone.attrs, attrs...)
	return &clone
}

// WithGroup returns a handler that prefixes subsequent attribute keys
// with the group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
