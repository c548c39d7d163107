package logx

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// RootLoggerName names the root of every Repository's logger hierarchy.
const RootLoggerName = "ROOT"

const levelUnset = math.MinInt64

// node is the registry entry shared by every handle of one logger name.
type node struct {
	name   string
	repo   *Repository
	parent *node

	level    atomic.Int64 // levelUnset = inherit from parent
	additive atomic.Bool

	// Appenders: lock-free reads via atomic.Value; synchronized updates via mu.
	// Stored value is []Appender and MUST be treated as immutable by readers.
	appenders atomic.Value
	mu        sync.Mutex
}

func newNode(repo *Repository, name string, parent *node) *node {
	n := &node{name: name, repo: repo, parent: parent}
	n.level.Store(levelUnset)
	n.additive.Store(true)
	n.appenders.Store(([]Appender)(nil))
	return n
}

func (n *node) snapshot() []Appender {
	v := n.appenders.Load()
	if v == nil {
		return nil
	}
	return v.([]Appender)
}

func (n *node) effectiveLevel() Level {
	for cur := n; cur != nil; cur = cur.parent {
		if lv := cur.level.Load(); lv != levelUnset {
			return Level(lv)
		}
	}
	return LevelDebug
}

// Logger is a named handle into a Repository. Handles returned by
// Repository.Logger for the same name are identical; With derives handles
// that share level and appenders but carry extra bound fields.
type Logger struct {
	n      *node
	fields []Field
}

// Name returns the logger name (RootLoggerName for the root).
func (l *Logger) Name() string { return l.n.name }

// Repository returns the repository this logger belongs to.
func (l *Logger) Repository() *Repository { return l.n.repo }

// SetLevel sets the minimum level this logger and its unset descendants emit.
func (l *Logger) SetLevel(level Level) { l.n.level.Store(int64(level)) }

// ClearLevel makes the logger inherit its level again. The root cannot
// inherit and falls back to LevelDebug.
func (l *Logger) ClearLevel() {
	if l.n.parent == nil {
		l.n.level.Store(int64(LevelDebug))
		return
	}
	l.n.level.Store(levelUnset)
}

// Level returns the explicitly assigned level, if any.
func (l *Logger) Level() (Level, bool) {
	lv := l.n.level.Load()
	if lv == levelUnset {
		return 0, false
	}
	return Level(lv), true
}

// EffectiveLevel returns the assigned level or the nearest ancestor's.
func (l *Logger) EffectiveLevel() Level { return l.n.effectiveLevel() }

// Enabled reports whether logs at 'level' would be emitted by this logger.
// Use to avoid building fields in hot paths when disabled.
func (l *Logger) Enabled(level Level) bool {
	if level <= LevelAll || level >= LevelOff {
		return false
	}
	return level >= l.n.effectiveLevel()
}

// SetAdditive controls whether entries also flow to ancestor appenders.
func (l *Logger) SetAdditive(v bool) { l.n.additive.Store(v) }

func (l *Logger) Additive() bool { return l.n.additive.Load() }

// AddAppender attaches a to this logger. Attaching the same appender twice is a no-op.
func (l *Logger) AddAppender(a Appender) {
	if a == nil {
		return
	}
	n := l.n
	n.mu.Lock()
	defer n.mu.Unlock()
	cur := n.snapshot()
	for _, existing := range cur {
		if existing == a {
			return
		}
	}
	next := make([]Appender, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, a)
	n.appenders.Store(next)
}

// DetachAppender removes the appender named name and reports whether it was attached.
func (l *Logger) DetachAppender(name string) bool {
	n := l.n
	n.mu.Lock()
	defer n.mu.Unlock()
	cur := n.snapshot()
	for i, a := range cur {
		if a.Name() != name {
			continue
		}
		next := make([]Appender, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		n.appenders.Store(next)
		return true
	}
	return false
}

func (l *Logger) detachAll() []Appender {
	n := l.n
	n.mu.Lock()
	defer n.mu.Unlock()
	cur := n.snapshot()
	n.appenders.Store(([]Appender)(nil))
	return cur
}

// Appenders returns the appenders attached directly to this logger.
func (l *Logger) Appenders() []Appender {
	cur := l.n.snapshot()
	out := make([]Appender, len(cur))
	copy(out, cur)
	return out
}

// With returns a child logger with bound fields.
func (l *Logger) With(fs ...Field) *Logger {
	return &Logger{
		n:      l.n,
		fields: append(copyFields(nil, l.fields), fs...),
	}
}

// Level entry points returning fluent builders.

func (l *Logger) Trace() *Event { return getEvent(l, LevelTrace) }
func (l *Logger) Debug() *Event { return getEvent(l, LevelDebug) }
func (l *Logger) Info() *Event  { return getEvent(l, LevelInfo) }
func (l *Logger) Warn() *Event  { return getEvent(l, LevelWarn) }
func (l *Logger) Error() *Event { return getEvent(l, LevelError) }

// Log emits msg at level with the given fields.
func (l *Logger) Log(level Level, msg string, fs ...Field) {
	l.emit(level, msg, fs)
}

// Logf formats msg with fmt.Sprintf semantics; formatting is skipped when disabled.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.emit(level, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) emit(level Level, msg string, evFields []Field) {
	if !l.Enabled(level) {
		return
	}
	repo := l.n.repo
	// Single authoritative timestamp for appenders and observers.
	at := repo.now()

	fields := evFields
	if len(l.fields) > 0 {
		fields = make([]Field, 0, len(l.fields)+len(evFields))
		fields = append(fields, l.fields...)
		fields = append(fields, evFields...)
	}

	e := Entry{
		At:      at,
		Level:   level,
		Logger:  l.n.name,
		Message: msg,
		Fields:  fields,
	}

	for n := l.n; n != nil; n = n.parent {
		for _, a := range n.snapshot() {
			a.Append(e)
		}
		if !n.additive.Load() {
			break
		}
	}
	repo.notify(e)
}
