package logx

import (
	"sync"
	"sync/atomic"
)

// ListAppender keeps every entry it receives in memory. It is meant for tests
// and diagnostics; the stored entries own their field slices.
type ListAppender struct {
	name     string
	minLevel atomic.Int64

	mu      sync.Mutex
	entries []Entry
}

func NewListAppender(name string) *ListAppender {
	a := &ListAppender{name: name}
	a.minLevel.Store(int64(LevelAll))
	return a
}

func (a *ListAppender) Name() string { return a.name }

func (a *ListAppender) SetMinLevel(l Level) { a.minLevel.Store(int64(l)) }

func (a *ListAppender) Append(e Entry) {
	if e.Level < Level(a.minLevel.Load()) {
		return
	}
	e.Fields = copyFields(nil, e.Fields)
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
}

// Entries returns a copy of the recorded entries in arrival order.
func (a *ListAppender) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Messages returns the recorded messages in arrival order.
func (a *ListAppender) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Message
	}
	return out
}

func (a *ListAppender) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Clear drops the recorded entries.
func (a *ListAppender) Clear() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}

// DiscardAppender drops everything. Useful as a configured sink that keeps a
// logger's appender list non-empty, and for benchmarks.
type DiscardAppender struct{ name string }

func NewDiscardAppender(name string) DiscardAppender { return DiscardAppender{name: name} }

func (a DiscardAppender) Name() string { return a.name }
func (DiscardAppender) Append(Entry)   {}
