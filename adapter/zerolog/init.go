package zerolog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/trickstertwo/xscope/logx"
)

// init registers appender type "zerolog".
//
// Options:
//
//	caller: true|false       include caller (also LOGX_ZEROLOG_CALLER=1)
//	caller_skip: <int>       frames to skip (default 5)
//	time_format: <layout>    console time layout (default RFC3339Nano)
//	field.<key>: <value>     static string field bound to every line
func init() {
	logx.RegisterAppenderType("zerolog", FromSpec)
}

// FromSpec is the configuration factory for appender type "zerolog".
func FromSpec(spec logx.AppenderSpec, w io.Writer) (logx.Appender, error) {
	cfg := Config{
		Name:              spec.Name,
		Writer:            w,
		MinLevel:          logx.LevelAll,
		ConsoleTimeFormat: spec.Options["time_format"],
		Caller:            os.Getenv("LOGX_ZEROLOG_CALLER") == "1",
		CallerSkip:        parseInt(spec.Options["caller_skip"], 5),
	}
	switch spec.Format {
	case "", "json":
	case "console", "text":
		cfg.Console = true
	default:
		return nil, fmt.Errorf("zerolog: unknown format %q", spec.Format)
	}
	if v, ok := spec.Options["caller"]; ok {
		caller, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("zerolog: option caller: %w", err)
		}
		cfg.Caller = caller
	}
	for k, v := range spec.Options {
		if key, ok := strings.CutPrefix(k, "field."); ok && key != "" {
			cfg.Fields = append(cfg.Fields, logx.Str(key, v))
		}
	}
	return NewAppender(cfg), nil
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
