package xscope

import (
	"fmt"
	"reflect"

	"github.com/trickstertwo/xscope/logx"
)

// RootLoggerName is the name every LoggerFactory maps to its root logger.
const RootLoggerName = logx.RootLoggerName

// LoggerFactory hands out named loggers. *logx.Repository implements it.
type LoggerFactory interface {
	Logger(name string) *logx.Logger
}

// Concern is the logging capability resolved per unit of work.
type Concern interface {
	// LoggerFactory returns the factory loggers are drawn from.
	LoggerFactory() LoggerFactory
	// SetLogLevel sets the level of l, or fails with an *UnsupportedError.
	SetLogLevel(l *logx.Logger, level Level) error
}

// LoggerOf returns the logger of c named after v's type. v may be a value, a
// pointer or a reflect.Type. A nil v panics with an error wrapping
// ErrInvalidContext.
func LoggerOf(c Concern, v any) *logx.Logger {
	if v == nil {
		panic(fmt.Errorf("%w: nil", ErrInvalidContext))
	}
	return c.LoggerFactory().Logger(TypeName(v))
}

// RootLogger returns the root logger of c.
func RootLogger(c Concern) *logx.Logger {
	return c.LoggerFactory().Logger(RootLoggerName)
}

// SetLevel sets the root level of c.
func SetLevel(c Concern, level Level) error {
	return c.SetLogLevel(RootLogger(c), level)
}

// TypeName returns the fully-qualified name of v's type: "import/path.Type"
// for named types, with pointers dereferenced. Unnamed types use their Go
// syntax, for example "[]string".
func TypeName(v any) string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
