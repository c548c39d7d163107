package zap

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xscope/logx"
)

// Appender writes logx entries through go.uber.org/zap with low overhead.
//
// Optimizations:
//   - Uses Logger.Check(level, msg) to avoid building fields when disabled.
//   - Guarantees RFC3339Nano "ts" precision by writing it as a string field.
//
// Optional behavior:
//   - SetMinLevel leverages zap.AtomicLevel when provided at construction time.
//     Without one, SetMinLevel is a no-op and only logger levels filter.
type Appender struct {
	name      string
	l         *zap.Logger
	al        *zap.AtomicLevel // optional, enables SetMinLevel
	tsKey     string           // timestamp field key; default "ts"
	loggerKey string           // logger name field key; default "logger"
}

// New creates an appender for the provided zap logger.
func New(name string, l *zap.Logger) *Appender {
	return NewWithAtomicLevel(name, l, nil)
}

// NewWithAtomicLevel wires a zap.AtomicLevel so SetMinLevel can adjust the
// backend's filter.
func NewWithAtomicLevel(name string, l *zap.Logger, al *zap.AtomicLevel) *Appender {
	return NewWithTimestampKey(name, l, al, "ts")
}

// NewWithTimestampKey overrides the timestamp field key (default "ts").
func NewWithTimestampKey(name string, l *zap.Logger, al *zap.AtomicLevel, tsKey string) *Appender {
	if l == nil {
		l = zap.NewNop()
	}
	if tsKey == "" {
		tsKey = "ts"
	}
	return &Appender{name: name, l: l, al: al, tsKey: tsKey, loggerKey: "logger"}
}

func (a *Appender) Name() string { return a.name }

// Append emits a single entry using the entry's authoritative timestamp.
func (a *Appender) Append(e logx.Entry) {
	ce := a.l.Check(toZapLevel(e.Level), e.Message)
	if ce == nil {
		return
	}

	zfs := make([]zap.Field, 0, 2+len(e.Fields))
	zfs = append(zfs,
		zap.String(a.tsKey, e.At.UTC().Format(time.RFC3339Nano)),
		zap.String(a.loggerKey, e.Logger),
	)
	for i := range e.Fields {
		zfs = append(zfs, toZapField(&e.Fields[i]))
	}
	ce.Write(zfs...)
}

// SetMinLevel updates the backend filter when an AtomicLevel was supplied.
func (a *Appender) SetMinLevel(l logx.Level) {
	if a.al == nil {
		return
	}
	a.al.SetLevel(toZapLevel(l))
}

// Sync flushes buffered zap output.
func (a *Appender) Sync() error { return a.l.Sync() }

func toZapLevel(l logx.Level) zapcore.Level {
	switch {
	case l <= logx.LevelTrace:
		return zapcore.DebugLevel // zap has no trace; map to debug
	case l <= logx.LevelDebug:
		return zapcore.DebugLevel
	case l <= logx.LevelInfo:
		return zapcore.InfoLevel
	case l <= logx.LevelWarn:
		return zapcore.WarnLevel
	default:
		// Avoid Fatal/DPanic to prevent exits in library code.
		return zapcore.ErrorLevel
	}
}

func toZapField(f *logx.Field) zap.Field {
	switch f.Kind {
	case logx.KindString:
		return zap.String(f.K, f.Str)
	case logx.KindInt64:
		return zap.Int64(f.K, f.Int64)
	case logx.KindUint64:
		return zap.Uint64(f.K, f.Uint64)
	case logx.KindFloat64:
		return zap.Float64(f.K, f.Float64)
	case logx.KindBool:
		return zap.Bool(f.K, f.Bool)
	case logx.KindDuration:
		return zap.Duration(f.K, f.Dur) // encoder decides string vs numeric
	case logx.KindTime:
		return zap.Time(f.K, f.Time)
	case logx.KindError:
		if f.Err == nil {
			return zap.Skip()
		}
		if f.K == "" || f.K == "error" {
			return zap.Error(f.Err)
		}
		return zap.NamedError(f.K, f.Err)
	case logx.KindBytes:
		return zap.ByteString(f.K, f.Bytes)
	case logx.KindAny:
		return zap.Any(f.K, f.Any)
	default:
		return zap.Skip()
	}
}
