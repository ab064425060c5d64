package logging

import (
	"context"
	"log/slog"
	"strings"

	context_ "github.com/mkrupp/wtwr/internal/infra/context"
)

// RedactedValue replaces the value of every sensitive attribute.
const RedactedValue = "[REDACTED]"

//nolint:gochecknoglobals
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"password":      {},
	"password_hash": {},
	"passwordhash":  {},
	"secret":        {},
	"token":         {},
}

// IsSensitiveKey reports whether attributes with this key are redacted.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]

	return ok
}

// ContextHandler wraps another slog.Handler. It adds the trace ID from the
// context to every record and redacts credential-bearing attributes.
type ContextHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler creates a new ContextHandler wrapping the given handler.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{h: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))

		return true
	})

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		out.AddAttrs(slog.Group("trace",
			slog.String("id", traceID),
		))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redact(a)
	}

	return NewContextHandler(h.h.WithAttrs(redacted))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ContextHandler) WithGroup(name string) Handler {
	return NewContextHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func redact(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}

	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	attrs := make([]any, len(group))

	for i, ga := range group {
		attrs[i] = redact(ga)
	}

	return slog.Group(a.Key, attrs...)
}
