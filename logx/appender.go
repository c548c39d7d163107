package logx

import (
	"time"
)

// Entry is a single emitted log record as seen by appenders and observers.
// Fields holds bound fields followed by event fields; appenders must not
// retain the slice past Append.
type Entry struct {
	At      time.Time
	Level   Level
	Logger  string
	Message string
	Fields  []Field
}

// Appender is the output Strategy attached to loggers (zap, zerolog, slog,
// console, in-memory list). Append receives the single authoritative
// timestamp in Entry.At.
type Appender interface {
	Name() string
	Append(e Entry)
}

// LevelSetter is an optional interface appenders implement to apply a
// threshold of their own on top of the logger level.
type LevelSetter interface {
	SetMinLevel(Level)
}

// Observer is notified for each entry emitted by any logger of a Repository.
// Implementations MUST be concurrency-safe.
type Observer interface {
	OnLog(repository string, e Entry)
}

// ObserverFunc adapter.
type ObserverFunc func(repository string, e Entry)

func (f ObserverFunc) OnLog(repository string, e Entry) { f(repository, e) }
