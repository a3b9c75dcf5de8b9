package alog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// AddAttrs returns a copy of ctx carrying the attrs.
// Every record logged with that context gets the attrs added.
func AddAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := FromContext(ctx)

	all := make([]slog.Attr, 0, len(existing)+len(attrs))
	all = append(all, existing...)
	all = append(all, attrs...)

	return context.WithValue(ctx, ctxKey{}, all)
}

// FromContext returns the attrs added with AddAttrs.
func FromContext(ctx context.Context) ([]slog.Attr, bool) {
	attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr)

	return attrs, ok
}
