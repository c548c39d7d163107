package logx

import (
	"errors"
	"testing"
	"time"

	"github.com/trickstertwo/xclock"
)

func newTestRepo(t *testing.T) (*Repository, *ListAppender) {
	t.Helper()
	r := NewRepository("test")
	list := NewListAppender("list")
	if err := r.RegisterAppender(list); err != nil {
		t.Fatalf("register appender: %v", err)
	}
	r.Root().AddAppender(list)
	return r, list
}

func TestLoggerHierarchy_NamesAndParents(t *testing.T) {
	t.Parallel()

	r := NewRepository("h")
	l := r.Logger("example.com/app/db.Pool")
	if l.Name() != "example.com/app/db.Pool" {
		t.Fatalf("name mismatch: %q", l.Name())
	}
	if r.Logger("example.com/app/db.Pool") != l {
		t.Fatalf("expected identical handle for the same name")
	}
	for _, ancestor := range []string{"example", "example.com", "example.com/app", "example.com/app/db"} {
		if !r.Exists(ancestor) {
			t.Fatalf("missing ancestor %q", ancestor)
		}
	}
	if r.Logger("") != r.Root() || r.Logger(RootLoggerName) != r.Root() {
		t.Fatalf("empty and ROOT must resolve to the root logger")
	}
	names := r.LoggerNames()
	if names[0] != RootLoggerName {
		t.Fatalf("root must be listed first: %v", names)
	}
}

func TestLevelInheritance(t *testing.T) {
	t.Parallel()

	r, list := newTestRepo(t)
	r.Root().SetLevel(LevelWarn)
	parent := r.Logger("svc")
	child := r.Logger("svc.worker")

	child.Info().Msg("dropped")
	if list.Len() != 0 {
		t.Fatalf("expected inherited WARN to drop INFO, got %v", list.Messages())
	}

	parent.SetLevel(LevelDebug)
	if got := child.EffectiveLevel(); got != LevelDebug {
		t.Fatalf("effective level: got %v want DEBUG", got)
	}
	child.Debug().Msg("kept")
	if got := list.Messages(); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("unexpected messages: %v", got)
	}

	if _, ok := child.Level(); ok {
		t.Fatalf("child has no explicit level")
	}
	parent.ClearLevel()
	if got := child.EffectiveLevel(); got != LevelWarn {
		t.Fatalf("after clear: got %v want WARN", got)
	}
}

func TestAdditivity(t *testing.T) {
	t.Parallel()

	r, rootList := newTestRepo(t)
	own := NewListAppender("own")
	l := r.Logger("audit")
	l.AddAppender(own)
	l.AddAppender(own) // no duplicate

	l.Info().Msg("both")
	l.SetAdditive(false)
	l.Info().Msg("own only")

	if got := own.Messages(); len(got) != 2 {
		t.Fatalf("own appender: %v", got)
	}
	if got := rootList.Messages(); len(got) != 1 || got[0] != "both" {
		t.Fatalf("root appender: %v", got)
	}

	if !l.DetachAppender("own") {
		t.Fatalf("expected detach to report true")
	}
	if l.DetachAppender("own") {
		t.Fatalf("second detach must report false")
	}
}

func TestEnabled_AllAndOffNeverEmit(t *testing.T) {
	t.Parallel()

	r, list := newTestRepo(t)
	r.Root().SetLevel(LevelAll)
	r.Root().Log(LevelOff, "never")
	r.Root().Log(LevelAll, "never")
	if list.Len() != 0 {
		t.Fatalf("ALL/OFF are thresholds, not emit levels: %v", list.Messages())
	}
	r.Root().SetLevel(LevelOff)
	if r.Root().Enabled(LevelError) {
		t.Fatalf("OFF must disable ERROR")
	}
}

func TestGlobalClockAndFields(t *testing.T) {
	// Freeze time for determinism
	old := xclock.Default()
	defer xclock.SetDefault(old)
	ft := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	xclock.SetDefault(xclock.NewFrozen(ft))

	r, list := newTestRepo(t)
	r.Logger("state").Info().Str("from", "old").Dur("to", time.Second).Int("count", 2).Msg("state changed")

	entries := list.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != LevelInfo {
		t.Fatalf("level mismatch: got %v", entry.Level)
	}
	if entry.Message != "state changed" || entry.Logger != "state" {
		t.Fatalf("entry mismatch: %+v", entry)
	}
	if !entry.At.Equal(ft) {
		t.Fatalf("timestamp mismatch: got %s want %s", entry.At, ft)
	}
	assertHasStr(t, entry.Fields, "from", "old")
	assertHasDur(t, entry.Fields, "to", time.Second)
	assertHasInt64(t, entry.Fields, "count", 2)
}

func TestWithAndObserverMerge(t *testing.T) {
	t.Parallel()

	ft := time.Date(2030, 2, 2, 3, 4, 5, 0, time.UTC)
	var got []Entry
	var repoName string
	obs := ObserverFunc(func(repository string, e Entry) {
		repoName = repository
		got = append(got, e)
	})

	r := NewBuilder().
		WithName("obs").
		WithRootLevel(LevelInfo).
		WithClock(xclock.NewFrozen(ft)).
		AddObserver(obs).
		Build()

	child := r.Logger("http").With(Field{K: "request_id", Kind: KindString, Str: "r-1"})
	child.Info().Str("path", "/api").Int("status", 200).Msg("done")
	child.Debug().Msg("filtered")

	if len(got) != 1 {
		t.Fatalf("expected 1 observer entry, got %d", len(got))
	}
	if repoName != "obs" {
		t.Fatalf("observer repository: %q", repoName)
	}
	e := got[0]
	if !e.At.Equal(ft) {
		t.Fatalf("observer ts mismatch: got %s want %s", e.At, ft)
	}
	if e.Message != "done" || e.Level != LevelInfo {
		t.Fatalf("observer basic fields mismatch: %+v", e)
	}
	assertHasStr(t, e.Fields, "request_id", "r-1")
	assertHasStr(t, e.Fields, "path", "/api")
	assertHasInt64(t, e.Fields, "status", 200)
}

func TestReset(t *testing.T) {
	t.Parallel()

	r, list := newTestRepo(t)
	l := r.Logger("a.b")
	l.SetLevel(LevelError)
	l.SetAdditive(false)

	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(r.Root().Appenders()) != 0 || len(r.AppenderNames()) != 0 {
		t.Fatalf("appenders survived reset")
	}
	if _, ok := l.Level(); ok || !l.Additive() {
		t.Fatalf("logger state survived reset")
	}
	if lv, _ := r.Root().Level(); lv != LevelDebug {
		t.Fatalf("root level after reset: %v", lv)
	}
	if r.Logger("a.b") != l {
		t.Fatalf("logger identity must survive reset")
	}
	l.Info().Msg("after")
	if list.Len() != 0 {
		t.Fatalf("detached appender still receives entries")
	}
}

func TestRegisterAppender_Duplicate(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	if err := r.RegisterAppender(NewDiscardAppender("list")); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestLogf(t *testing.T) {
	t.Parallel()

	r, list := newTestRepo(t)
	r.Root().Logf(LevelWarn, "%d items", 3)
	r.Logger("x").Warn().Msgf("%s!", "hi")
	got := list.Messages()
	if len(got) != 2 || got[0] != "3 items" || got[1] != "hi!" {
		t.Fatalf("unexpected messages: %v", got)
	}
}

type countingStringer struct{ n *int }

func (c countingStringer) String() string { *c.n++; return "formatted" }

func TestDisabledEventIsNilAndInert(t *testing.T) {
	t.Parallel()

	r, list := newTestRepo(t)
	r.Logger("quiet").SetLevel(LevelError)

	ev := r.Logger("quiet").Info()
	if ev != nil || ev.Enabled() {
		t.Fatalf("disabled event = %v, want nil", ev)
	}
	calls := 0
	ev.Str("k", "v").Int("n", 1).Err(errors.New("boom")).Fields(Str("a", "b")).Msgf("%v", countingStringer{&calls})
	ev.Msg("dropped")
	if calls != 0 {
		t.Fatalf("disabled Msgf formatted its arguments %d times", calls)
	}

	r.Logger("quiet").Error().Err(errors.New("boom")).Msg("kept")
	entries := list.Entries()
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Fatalf("entries = %+v", entries)
	}
	if f, ok := Lookup(entries[0].Fields, ErrorFieldKey); !ok || f.Err == nil {
		t.Fatalf("error field missing: %+v", entries[0].Fields)
	}
}

func assertHasStr(t *testing.T, fs []Field, k, v string) {
	t.Helper()
	for _, f := range fs {
		if f.K == k && f.Kind == KindString && f.Str == v {
			return
		}
	}
	t.Fatalf("missing string field %q=%q in %+v", k, v, fs)
}

func assertHasInt64(t *testing.T, fs []Field, k string, v int64) {
	t.Helper()
	for _, f := range fs {
		if f.K == k && f.Kind == KindInt64 && f.Int64 == v {
			return
		}
	}
	t.Fatalf("missing int64 field %q=%d in %+v", k, v, fs)
}

func assertHasDur(t *testing.T, fs []Field, k string, v time.Duration) {
	t.Helper()
	for _, f := range fs {
		if f.K == k && f.Kind == KindDuration && f.Dur == v {
			return
		}
	}
	t.Fatalf("missing duration field %q=%s in %+v", k, v, fs)
}
