package logx

import (
	"fmt"
	"math"
	"strings"
)

// Level mirrors slog numeric semantics and extends with Trace (-8).
// LevelAll and LevelOff bound the range for thresholds only; entries are never
// emitted at either.
type Level int

const (
	LevelAll   Level = math.MinInt32
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
	LevelOff   Level = math.MaxInt32
)

func (l Level) String() string {
	switch l {
	case LevelAll:
		return "ALL"
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel accepts the names produced by String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return LevelAll, nil
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "off":
		return LevelOff, nil
	default:
		return 0, fmt.Errorf("logx: unknown level %q", s)
	}
}
