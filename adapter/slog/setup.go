package slog

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/trickstertwo/xscope/logx"
)

// Format selects the slog handler format.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatText
)

// Config is an explicit, code-first configuration for a slog appender.
type Config struct {
	Name           string
	Writer         io.Writer            // default: os.Stdout
	MinLevel       logx.Level           // handler threshold, adjustable via SetMinLevel
	Format         Format               // JSON (default) or Text
	HandlerOptions *slog.HandlerOptions // optional; Level is managed through a LevelVar
}

// NewAppender builds a slog-backed appender. The handler's own time attribute
// is dropped; lines carry the entry timestamp as "ts".
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	opts := slog.HandlerOptions{}
	if cfg.HandlerOptions != nil {
		opts = *cfg.HandlerOptions
	}

	var lv slog.LevelVar
	lv.Set(toSlog(cfg.MinLevel))
	opts.Level = &lv

	replace := opts.ReplaceAttr
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		if replace != nil {
			return replace(groups, a)
		}
		return a
	}

	var h slog.Handler
	if cfg.Format == FormatText {
		h = slog.NewTextHandler(w, &opts)
	} else {
		h = slog.NewJSONHandler(w, &opts)
	}
	return NewWithLevelVar(cfg.Name, slog.New(h), &lv)
}

// FromSpec is the configuration factory registered as appender type "slog".
// Option "source: true" adds the handler's source attribute.
func FromSpec(spec logx.AppenderSpec, w io.Writer) (logx.Appender, error) {
	cfg := Config{Name: spec.Name, Writer: w, MinLevel: logx.LevelAll}
	switch spec.Format {
	case "", "json":
		cfg.Format = FormatJSON
	case "text":
		cfg.Format = FormatText
	default:
		return nil, fmt.Errorf("slog: unknown format %q", spec.Format)
	}
	if spec.Options["source"] == "true" {
		cfg.HandlerOptions = &slog.HandlerOptions{AddSource: true}
	}
	return NewAppender(cfg), nil
}

func init() {
	logx.RegisterAppenderType("slog", FromSpec)
}
