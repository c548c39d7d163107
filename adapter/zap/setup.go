package zap

import (
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xscope/logx"
)

// Config is an explicit, code-first configuration for a zap appender.
type Config struct {
	Name               string
	Writer             io.Writer // default: os.Stdout
	MinLevel           logx.Level
	Console            bool                  // pretty console-like output via zapcore.NewConsoleEncoder
	EncoderConfig      zapcore.EncoderConfig // if zero, a sensible default is used
	Caller             bool                  // include caller in logs
	CallerSkip         int                   // frames to skip when resolving caller
	TimestampFieldName string                // default "ts" (the entry's authoritative timestamp)
}

// NewAppender builds a zap-backed appender from Config.
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	if cfg.TimestampFieldName == "" {
		cfg.TimestampFieldName = "ts"
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 4
	}

	// Encoder config defaults: do not let zap inject its own time (entries carry "ts")
	encCfg := cfg.EncoderConfig
	if encCfg.TimeKey == "" && encCfg.LevelKey == "" && encCfg.MessageKey == "" && encCfg.EncodeTime == nil {
		encCfg = zapcore.EncoderConfig{
			TimeKey:        "",
			LevelKey:       "level",
			MessageKey:     "message",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder, // used for zap.Time fields
			EncodeDuration: zapcore.StringDurationEncoder,
			CallerKey:      "caller",
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	} else {
		encCfg.TimeKey = ""
	}

	var enc zapcore.Encoder
	if cfg.Console {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	al := zap.NewAtomicLevelAt(toZapLevel(cfg.MinLevel))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), al)

	opts := []zap.Option{
		zap.AddStacktrace(zapcore.FatalLevel + 1), // effectively off for normal levels
	}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(cfg.CallerSkip))
	}

	return NewWithTimestampKey(cfg.Name, zap.New(core, opts...), &al, cfg.TimestampFieldName)
}

// FromSpec is the configuration factory registered as appender type "zap".
// format "console" selects the console encoder; option "caller" enables caller
// info and "timestamp_key" renames the "ts" field.
func FromSpec(spec logx.AppenderSpec, w io.Writer) (logx.Appender, error) {
	cfg := Config{Name: spec.Name, Writer: w, MinLevel: logx.LevelAll}
	switch spec.Format {
	case "", "json":
	case "console", "text":
		cfg.Console = true
	default:
		return nil, &formatError{format: spec.Format}
	}
	if v, ok := spec.Options["caller"]; ok {
		caller, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		cfg.Caller = caller
	}
	if v := spec.Options["timestamp_key"]; v != "" {
		cfg.TimestampFieldName = v
	}
	return NewAppender(cfg), nil
}

type formatError struct{ format string }

func (e *formatError) Error() string { return "zap: unknown format " + strconv.Quote(e.format) }
