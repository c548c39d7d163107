package logx

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type repoSelector struct{ def *Repository }

type repoKey struct{}

func (s *repoSelector) Repository(ctx context.Context) *Repository {
	if r, ok := ctx.Value(repoKey{}).(*Repository); ok {
		return r
	}
	return s.def
}
func (s *repoSelector) DefaultRepository() *Repository      { return s.def }
func (s *repoSelector) DetachRepository(string) *Repository { return nil }
func (s *repoSelector) RepositoryNames() []string           { return nil }
func (s *repoSelector) RepositoryByName(string) *Repository { return nil }

func TestSlogHandler_FollowsSelector(t *testing.T) {
	resetSelector(t)
	useListConfig(t)

	RegisterSelector("ctx-test", func(def *Repository) RepositorySelector {
		return &repoSelector{def: def}
	})
	SetPreferredSelector("ctx-test", true)

	scoped, scopedList := newTestRepo(t)
	logger := slog.New(NewSlogHandler("slog.bridge")).
		With("svc", "api").
		WithGroup("req")

	ctx := context.WithValue(context.Background(), repoKey{}, scoped)
	logger.InfoContext(ctx, "scoped", "id", 7, slog.Group("user", "name", "ann"), "err", errors.New("x"))
	logger.InfoContext(context.Background(), "unscoped")

	entries := scopedList.Entries()
	if len(entries) != 1 || entries[0].Message != "scoped" || entries[0].Logger != "slog.bridge" {
		t.Fatalf("scoped entries: %+v", entries)
	}
	fs := entries[0].Fields
	assertHasStr(t, fs, "svc", "api")
	assertHasInt64(t, fs, "req.id", 7)
	assertHasStr(t, fs, "req.user.name", "ann")
	if f, ok := Lookup(fs, "req.err"); !ok || f.Kind != KindError {
		t.Fatalf("error attr: %+v", f)
	}

	def := listAppender(t, Factory(), "first")
	if got := def.Messages(); len(got) != 1 || got[0] != "unscoped" {
		t.Fatalf("unscoped messages: %v", got)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	resetSelector(t)
	useListConfig(t)
	t.Setenv(EnvContextSelector, "")

	h := NewSlogHandler("lvl")
	// root level from firstDoc is info
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug must be disabled")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatalf("warn must be enabled")
	}
}
