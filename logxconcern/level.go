package logxconcern

import (
	"fmt"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
)

// ToNativeLevel maps a facade level to its logx level. Levels outside the
// closed facade set are programming errors and panic.
func ToNativeLevel(l xscope.Level) logx.Level {
	switch l {
	case xscope.LevelTrace:
		return logx.LevelTrace
	case xscope.LevelDebug:
		return logx.LevelDebug
	case xscope.LevelInfo:
		return logx.LevelInfo
	case xscope.LevelWarn:
		return logx.LevelWarn
	case xscope.LevelError:
		return logx.LevelError
	default:
		panic(fmt.Sprintf("logxconcern: unmapped level %v", l))
	}
}

// FromNativeLevel maps a logx level back to the facade level it came from.
func FromNativeLevel(l logx.Level) (xscope.Level, bool) {
	switch l {
	case logx.LevelTrace:
		return xscope.LevelTrace, true
	case logx.LevelDebug:
		return xscope.LevelDebug, true
	case logx.LevelInfo:
		return xscope.LevelInfo, true
	case logx.LevelWarn:
		return xscope.LevelWarn, true
	case logx.LevelError:
		return xscope.LevelError, true
	default:
		return 0, false
	}
}
