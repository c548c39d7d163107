package xscope

import (
	"context"

	"github.com/trickstertwo/xscope/logx"
	"github.com/trickstertwo/xscope/scope"
)

// FindDefaultConcern returns the process default Concern, if one is registered.
func FindDefaultConcern() (Concern, bool) {
	return scope.FindDefault[Concern]()
}

// SetDefaultConcern installs c as the process default and returns the Concern
// it replaced. Concurrent calls are last-write-wins; every caller receives
// the value its own write displaced. A nil c panics.
func SetDefaultConcern(c Concern) (prev Concern, replaced bool) {
	return scope.RegisterDefault(c)
}

// SetDefaultConcernIfAbsent installs c only when no default is registered and
// returns the default in effect afterwards.
func SetDefaultConcernIfAbsent(c Concern) (actual Concern, registered bool) {
	return scope.RegisterDefaultIfAbsent(c)
}

// ClearDefaultConcern removes the process default and returns it.
func ClearDefaultConcern() (prev Concern, ok bool) {
	return scope.UnregisterDefault[Concern]()
}

// ConcernFrom resolves the Concern for ctx: the innermost one bound to ctx,
// else the process default, else Default. A nil ctx resolves like
// context.Background().
func ConcernFrom(ctx context.Context) Concern {
	if c, ok := scope.Find[Concern](ctx); ok {
		return c
	}
	return Default{}
}

// Logger returns the logger named after v's type from the Concern for ctx.
func Logger(ctx context.Context, v any) *logx.Logger {
	return LoggerOf(ConcernFrom(ctx), v)
}

// Named returns the logger called name from the Concern for ctx.
func Named(ctx context.Context, name string) *logx.Logger {
	return ConcernFrom(ctx).LoggerFactory().Logger(name)
}

// WithConcern returns a context in which c is the innermost Concern.
func WithConcern(ctx context.Context, c Concern) context.Context {
	return scope.With(ctx, scope.Bind(c))
}

// Run executes fn with c active for its dynamic extent.
func Run(ctx context.Context, c Concern, fn func(context.Context) error) error {
	return scope.Run(ctx, fn, scope.Bind(c))
}

// Go runs fn on a new goroutine with c active; Join the task to wait.
func Go(ctx context.Context, c Concern, fn func(context.Context) error) *scope.Task {
	return scope.Go(ctx, fn, scope.Bind(c))
}
