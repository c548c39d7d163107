package logx

import (
	"context"
	"log/slog"
)

// slogHandler routes slog records into the logger named name of whatever
// repository the selector resolves for the record's context.
type slogHandler struct {
	name   string
	bound  []Field
	prefix string
}

// NewSlogHandler returns a slog.Handler backed by the selector. Installing it
// with slog.SetDefault makes slog.InfoContext(ctx, ...) follow the same
// repository resolution as GetContext(ctx, name).
func NewSlogHandler(name string) slog.Handler {
	return &slogHandler{name: name}
}

func (h *slogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return GetContext(ctx, h.name).Enabled(Level(level))
}

func (h *slogHandler) Handle(ctx context.Context, rec slog.Record) error {
	fields := make([]Field, 0, len(h.bound)+rec.NumAttrs())
	fields = append(fields, h.bound...)
	rec.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	GetContext(ctx, h.name).Log(Level(rec.Level), rec.Message, fields...)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.bound = copyFields(nil, h.bound)
	for _, a := range attrs {
		child.bound = appendAttr(child.bound, h.prefix, a)
	}
	return &child
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.prefix = h.prefix + name + "."
	return &child
}

func appendAttr(dst []Field, prefix string, a slog.Attr) []Field {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := prefix + a.Key
	switch v.Kind() {
	case slog.KindString:
		return append(dst, Str(key, v.String()))
	case slog.KindInt64:
		return append(dst, Int64(key, v.Int64()))
	case slog.KindUint64:
		return append(dst, Uint64(key, v.Uint64()))
	case slog.KindFloat64:
		return append(dst, Float64(key, v.Float64()))
	case slog.KindBool:
		return append(dst, Bool(key, v.Bool()))
	case slog.KindDuration:
		return append(dst, Dur(key, v.Duration()))
	case slog.KindTime:
		return append(dst, Time(key, v.Time()))
	case slog.KindGroup:
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = key + "."
		}
		for _, ga := range v.Group() {
			dst = appendAttr(dst, groupPrefix, ga)
		}
		return dst
	default:
		if err, ok := v.Any().(error); ok {
			return append(dst, Err(key, err))
		}
		return append(dst, Any(key, v.Any()))
	}
}
