package logx

import (
	"fmt"
	"sync"
	"time"
)

// ErrorFieldKey is the field key Event.Err uses.
const ErrorFieldKey = "error"

// Event collects the fields of one entry for a Logger of some Repository:
//
//	repo.Logger("billing/invoice").Info().Str("id", id).Dur("took", d).Msg("sent")
//
// The level is checked against the logger's effective level when the Event is
// created. For a disabled level the Event is nil; every method accepts a nil
// receiver, so field arguments are still evaluated but nothing is recorded.
// An Event must not be used after Msg or Msgf.
type Event struct {
	l      *Logger
	level  Level
	fields []Field
}

var eventPool = sync.Pool{
	New: func() any { return &Event{fields: make([]Field, 0, 8)} },
}

func getEvent(l *Logger, level Level) *Event {
	if !l.Enabled(level) {
		return nil
	}
	ev := eventPool.Get().(*Event)
	ev.l = l
	ev.level = level
	ev.fields = ev.fields[:0]
	return ev
}

func (e *Event) release() {
	// Oversized field slices are not pooled.
	if cap(e.fields) > 128 {
		e.fields = make([]Field, 0, 8)
	}
	e.l = nil
	e.level = 0
	eventPool.Put(e)
}

func (e *Event) add(f Field) *Event {
	if e != nil {
		e.fields = append(e.fields, f)
	}
	return e
}

// Enabled reports whether the Event will be recorded.
func (e *Event) Enabled() bool { return e != nil }

// Fields appends prebuilt fields.
func (e *Event) Fields(fs ...Field) *Event {
	if e != nil {
		e.fields = append(e.fields, fs...)
	}
	return e
}

func (e *Event) Str(k, v string) *Event               { return e.add(Str(k, v)) }
func (e *Event) Int(k string, v int) *Event           { return e.add(Int64(k, int64(v))) }
func (e *Event) Int64(k string, v int64) *Event       { return e.add(Int64(k, v)) }
func (e *Event) Uint64(k string, v uint64) *Event     { return e.add(Uint64(k, v)) }
func (e *Event) Float64(k string, v float64) *Event   { return e.add(Float64(k, v)) }
func (e *Event) Bool(k string, v bool) *Event         { return e.add(Bool(k, v)) }
func (e *Event) Dur(k string, v time.Duration) *Event { return e.add(Dur(k, v)) }
func (e *Event) Time(k string, v time.Time) *Event    { return e.add(Time(k, v)) }
func (e *Event) Bytes(k string, v []byte) *Event      { return e.add(Bytes(k, v)) }
func (e *Event) Any(k string, v any) *Event           { return e.add(Any(k, v)) }

// Err records err under ErrorFieldKey; a nil err adds nothing.
func (e *Event) Err(err error) *Event {
	if err == nil {
		return e
	}
	return e.add(Err(ErrorFieldKey, err))
}

// Msg sends the entry to the logger's appenders, walking up the hierarchy
// while loggers are additive, then to the repository's observers.
func (e *Event) Msg(msg string) {
	if e == nil {
		return
	}
	e.l.emit(e.level, msg, e.fields)
	e.release()
}

// Msgf is Msg with a fmt.Sprintf message. Disabled events skip formatting.
func (e *Event) Msgf(format string, args ...any) {
	if e == nil {
		return
	}
	e.l.emit(e.level, fmt.Sprintf(format, args...), e.fields)
	e.release()
}
