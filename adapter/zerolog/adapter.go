package zerolog

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xscope/logx"
)

// Appender writes logx entries through rs/zerolog with low overhead.
//
// Optimizations:
//   - Static fields are pre-bound once onto a child zerolog.Logger.
//   - Fast pre-check against the appender threshold avoids allocating a
//     zerolog.Event when the level is disabled.
//   - Uses Logger.WithLevel(...) to avoid a level switch at call sites.
type Appender struct {
	name  string
	l     zerolog.Logger
	level atomic.Int32 // zerolog.Level threshold
}

// New creates an appender over l; l's own level is the initial threshold.
func New(name string, l zerolog.Logger) *Appender {
	a := &Appender{name: name, l: l}
	a.level.Store(int32(l.GetLevel()))
	return a
}

// NewWithFields binds static fields once onto a child zerolog.Logger.
func NewWithFields(name string, l zerolog.Logger, fs []logx.Field) *Appender {
	if len(fs) > 0 {
		ctx := l.With()
		for i := range fs {
			ctx = appendCtxField(ctx, &fs[i])
		}
		l = ctx.Logger()
	}
	return New(name, l)
}

func (a *Appender) Name() string { return a.name }

// Append emits a single entry with the entry's timestamp as "ts".
func (a *Appender) Append(e logx.Entry) {
	zlvl := mapLevel(e.Level)

	// Fast path: drop early if below the threshold (no Event allocation).
	if zlvl < zerolog.Level(a.level.Load()) {
		return
	}

	ev := a.l.WithLevel(zlvl)

	// Ensure RFC3339Nano precision regardless of zerolog.TimeFieldFormat defaults.
	ev.Str("ts", e.At.UTC().Format(time.RFC3339Nano))
	ev.Str("logger", e.Logger)

	for i := range e.Fields {
		appendEventField(ev, &e.Fields[i])
	}

	ev.Msg(e.Message)
}

// SetMinLevel sets the appender threshold.
func (a *Appender) SetMinLevel(l logx.Level) {
	a.level.Store(int32(mapLevel(l)))
}

// mapLevel converts logx.Level to zerolog.Level. Anything above ERROR stays
// at ERROR so zerolog never exits or panics.
func mapLevel(l logx.Level) zerolog.Level {
	switch {
	case l <= logx.LevelTrace:
		return zerolog.TraceLevel
	case l <= logx.LevelDebug:
		return zerolog.DebugLevel
	case l <= logx.LevelInfo:
		return zerolog.InfoLevel
	case l <= logx.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// appendEventField writes a logx.Field to a zerolog.Event.
func appendEventField(e *zerolog.Event, f *logx.Field) {
	switch f.Kind {
	case logx.KindString:
		e.Str(f.K, f.Str)
	case logx.KindInt64:
		e.Int64(f.K, f.Int64)
	case logx.KindUint64:
		e.Uint64(f.K, f.Uint64)
	case logx.KindFloat64:
		e.Float64(f.K, f.Float64)
	case logx.KindBool:
		e.Bool(f.K, f.Bool)
	case logx.KindDuration:
		e.Dur(f.K, f.Dur)
	case logx.KindTime:
		e.Time(f.K, f.Time)
	case logx.KindError:
		if f.Err != nil {
			if f.K == "" || f.K == "error" {
				e.Err(f.Err)
			} else {
				e.AnErr(f.K, f.Err)
			}
		}
	case logx.KindBytes:
		e.Bytes(f.K, f.Bytes)
	case logx.KindAny:
		e.Interface(f.K, f.Any)
	default:
		// Keep a placeholder to preserve shape
		e.Interface(f.K, nil)
	}
}

// appendCtxField binds a field to zerolog.Context (used by NewWithFields).
func appendCtxField(ctx zerolog.Context, f *logx.Field) zerolog.Context {
	switch f.Kind {
	case logx.KindString:
		return ctx.Str(f.K, f.Str)
	case logx.KindInt64:
		return ctx.Int64(f.K, f.Int64)
	case logx.KindUint64:
		return ctx.Uint64(f.K, f.Uint64)
	case logx.KindFloat64:
		return ctx.Float64(f.K, f.Float64)
	case logx.KindBool:
		return ctx.Bool(f.K, f.Bool)
	case logx.KindDuration:
		return ctx.Dur(f.K, f.Dur)
	case logx.KindTime:
		return ctx.Time(f.K, f.Time)
	case logx.KindError:
		// Context supports Err(err) for default key; no named-error variant.
		if f.Err == nil {
			return ctx
		}
		if f.K == "" || f.K == "error" {
			return ctx.Err(f.Err)
		}
		return ctx.Str(f.K, f.Err.Error())
	case logx.KindBytes:
		return ctx.Bytes(f.K, f.Bytes)
	case logx.KindAny:
		return ctx.Interface(f.K, f.Any)
	default:
		return ctx.Interface(f.K, nil)
	}
}
