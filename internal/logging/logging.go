// Package logging sets up the process slog logger and carries request
// scoped attributes through context.Context so every record logged with a
// *Context method picks them up.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type ctxKey struct{}

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New builds a logger writing to stdout.
func New(format, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, format, level)
}

func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	switch strings.ToLower(format) {
	case FormatText:
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(NewContextHandler(h))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a context carrying attrs in addition to the ones already
// stored in ctx.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	prev := Attrs(ctx)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return attrs
}

// ContextHandler appends the attributes stored by With to each record.
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Attrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// Event logs a business event for downstream analysis.
func Event(ctx context.Context, name string, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.String("event_type", "business_event"),
		slog.String("event_name", name),
	}, attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, "business event: "+name, all...)
}

// Performance logs how long operation took.
func Performance(ctx context.Context, operation string, took time.Duration, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.String("event_type", "performance"),
		slog.String("operation", operation),
		slog.Int64("duration_ms", took.Milliseconds()),
	}, attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, "performance: "+operation, all...)
}

// Error logs err together with the attributes describing where it came
// from.
func Error(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.String("event_type", "error"),
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}, attrs...)
	slog.LogAttrs(ctx, slog.LevelError, msg, all...)
}
