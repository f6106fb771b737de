// Package ctxlogger carries slog attributes through a context so that deep
// call sites log the request's room and user ids without threading them
// explicitly.
package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// ContextHandler wraps another slog.Handler and appends the attributes
// stashed in the record's context.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context whose log records will carry attr in addition
// to whatever the parent context already carries.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	var attrs []slog.Attr
	if existing, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		attrs = append(attrs, existing...)
	}
	attrs = append(attrs, attr)

	return context.WithValue(parent, ctxKey{}, attrs)
}
