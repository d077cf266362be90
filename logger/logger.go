// Package logger decorates slog with request- and sync-scoped attributes
// carried through the context, so deep call sites log their source without
// threading it as an argument.
package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const attrKey contextKey = "attrKey"

// ContextHandler wraps a base [slog.Handler] and merges any attributes
// stashed in the context into each record before handing it down.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps handler so context attributes reach its records.
func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{Handler: handler}
}

// Handle implements [slog.Handler].
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		return h.Handler.Handle(ctx, record)
	}

	record.AddAttrs(attrs...)

	return h.Handler.Handle(ctx, record)
}

// Ctx returns a context carrying the given attributes on top of any it
// already holds. Every log call made with the resulting context picks them
// up; the sync flows use this to tag records with their source.
func Ctx(ctx context.Context, toAppend ...slog.Attr) context.Context {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		attrs = []slog.Attr{}
	}

	attrs = append(attrs, toAppend...)
	return context.WithValue(ctx, attrKey, attrs)
}
