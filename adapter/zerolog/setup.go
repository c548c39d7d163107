package zerolog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xscope/logx"
)

// Config is an explicit, code-first configuration for a zerolog appender.
type Config struct {
	Name              string
	Writer            io.Writer // default: os.Stdout
	MinLevel          logx.Level
	Console           bool         // pretty console output instead of JSON
	ConsoleTimeFormat string       // only used if Console==true; default time.RFC3339Nano
	Caller            bool         // include caller in logs
	CallerSkip        int          // frames to skip when resolving caller; default 5
	Fields            []logx.Field // bound onto every line
}

// NewAppender builds a zerolog-backed appender from Config.
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 5
	}

	var zl zerolog.Logger
	if cfg.Console {
		// Align the console's leading timestamp column with our "ts" key.
		zerolog.TimestampFieldName = "ts"
		cw := zerolog.ConsoleWriter{Out: w}
		if cfg.ConsoleTimeFormat == "" {
			cw.TimeFormat = time.RFC3339Nano
		} else {
			cw.TimeFormat = cfg.ConsoleTimeFormat
		}
		// If caller isn't enabled, hide the caller column to avoid "<nil>".
		if !cfg.Caller {
			cw.PartsExclude = append(cw.PartsExclude, zerolog.CallerFieldName)
		}
		zl = zerolog.New(cw)
	} else {
		zl = zerolog.New(w)
	}

	if cfg.Caller {
		zerolog.CallerSkipFrameCount = cfg.CallerSkip
		zl = zl.With().Caller().Logger()
	}

	a := NewWithFields(cfg.Name, zl, cfg.Fields)
	a.SetMinLevel(cfg.MinLevel)
	return a
}
