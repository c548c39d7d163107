package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/trickstertwo/xscope/logx"
)

// Appender writes logx entries to a Go slog.Logger. It builds slog.Attrs
// directly for low overhead and uses LogAttrs.
type Appender struct {
	name  string
	l     *slog.Logger
	lv    *slog.LevelVar // optional, enables SetMinLevel
	tsKey string
}

func toSlog(l logx.Level) slog.Level {
	return slog.Level(l)
}

// New creates an appender for l (slog.Default() when nil).
func New(name string, l *slog.Logger) *Appender {
	return NewWithLevelVar(name, l, nil)
}

// NewWithLevelVar wires a slog.LevelVar so SetMinLevel can adjust the handler.
func NewWithLevelVar(name string, l *slog.Logger, lv *slog.LevelVar) *Appender {
	if l == nil {
		l = slog.Default()
	}
	return &Appender{name: name, l: l, lv: lv, tsKey: "ts"}
}

func (a *Appender) Name() string { return a.name }

func (a *Appender) Append(e logx.Entry) {
	ctx := context.Background()
	lvl := toSlog(e.Level)
	if !a.l.Enabled(ctx, lvl) {
		return
	}
	attrs := make([]slog.Attr, 0, len(e.Fields)+2)

	// Single authoritative timestamp provided by the entry
	attrs = append(attrs,
		slog.String(a.tsKey, e.At.UTC().Format(time.RFC3339Nano)),
		slog.String("logger", e.Logger),
	)
	for i := range e.Fields {
		attrs = append(attrs, toAttr(e.Fields[i]))
	}

	// Use LogAttrs for minimal allocations
	a.l.LogAttrs(ctx, lvl, e.Message, attrs...)
}

// SetMinLevel updates the handler's LevelVar when one was supplied.
func (a *Appender) SetMinLevel(l logx.Level) {
	if a.lv == nil {
		return
	}
	a.lv.Set(toSlog(l))
}

func toAttr(f logx.Field) slog.Attr {
	switch f.Kind {
	case logx.KindString:
		return slog.String(f.K, f.Str)
	case logx.KindInt64:
		return slog.Int64(f.K, f.Int64)
	case logx.KindUint64:
		return slog.Uint64(f.K, f.Uint64)
	case logx.KindFloat64:
		return slog.Float64(f.K, f.Float64)
	case logx.KindBool:
		return slog.Bool(f.K, f.Bool)
	case logx.KindDuration:
		return slog.Duration(f.K, f.Dur)
	case logx.KindTime:
		return slog.Time(f.K, f.Time)
	case logx.KindError:
		return slog.Any(f.K, f.Err)
	case logx.KindBytes:
		return slog.Any(f.K, f.Bytes)
	case logx.KindAny:
		return slog.Any(f.K, f.Any)
	default:
		return slog.Any(f.K, nil)
	}
}
