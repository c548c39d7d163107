package scope

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type greeter interface{ Greet() string }

type named string

func (n named) Greet() string { return string(n) }

type counter struct{ n int }

func TestFindScoped_InnermostWins(t *testing.T) {
	ctx := With(context.Background(), Bind[greeter](named("outer")))
	inner := With(ctx, Bind[greeter](named("inner")))

	g, ok := FindScoped[greeter](inner)
	require.True(t, ok)
	require.Equal(t, "inner", g.Greet())

	g, ok = FindScoped[greeter](ctx)
	require.True(t, ok)
	require.Equal(t, "outer", g.Greet())

	require.Equal(t, []greeter{named("inner"), named("outer")}, Stack[greeter](inner))
}

func TestFindScoped_KeyedByStaticType(t *testing.T) {
	ctx := With(context.Background(), Bind(named("concrete")))

	_, ok := FindScoped[greeter](ctx)
	require.False(t, ok, "a binding of named must not satisfy greeter")

	n, ok := FindScoped[named](ctx)
	require.True(t, ok)
	require.Equal(t, named("concrete"), n)
}

func TestFind_FallsBackToDefault(t *testing.T) {
	t.Cleanup(func() { UnregisterDefault[*counter]() })

	_, ok := Find[*counter](context.Background())
	require.False(t, ok)

	def := &counter{n: 1}
	RegisterDefault(def)
	got, ok := Find[*counter](context.Background())
	require.True(t, ok)
	require.Same(t, def, got)

	scoped := &counter{n: 2}
	got, ok = Find[*counter](With(context.Background(), Bind(scoped)))
	require.True(t, ok)
	require.Same(t, scoped, got)
}

func TestRegisterDefault_ReturnsPrevious(t *testing.T) {
	t.Cleanup(func() { UnregisterDefault[*counter]() })

	a, b := &counter{n: 1}, &counter{n: 2}
	prev, replaced := RegisterDefault(a)
	require.False(t, replaced)
	require.Nil(t, prev)

	prev, replaced = RegisterDefault(b)
	require.True(t, replaced)
	require.Same(t, a, prev)

	got, ok := FindDefault[*counter]()
	require.True(t, ok)
	require.Same(t, b, got)

	actual, registered := RegisterDefaultIfAbsent(&counter{n: 3})
	require.False(t, registered)
	require.Same(t, b, actual)

	prev, ok = UnregisterDefault[*counter]()
	require.True(t, ok)
	require.Same(t, b, prev)

	actual, registered = RegisterDefaultIfAbsent(a)
	require.True(t, registered)
	require.Same(t, a, actual)
}

func TestRegisterDefault_ConcurrentSwapsLoseNothing(t *testing.T) {
	t.Cleanup(func() { UnregisterDefault[*counter]() })

	const writers = 64
	values := make([]*counter, writers)
	displaced := make([]*counter, writers)
	var wg sync.WaitGroup
	for i := range values {
		values[i] = &counter{n: i}
	}
	for i := range values {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			displaced[i], _ = RegisterDefault(values[i])
		}(i)
	}
	wg.Wait()

	final, ok := FindDefault[*counter]()
	require.True(t, ok)

	// Every value is either the final default or displaced by exactly one writer.
	seen := map[*counter]int{}
	for _, d := range displaced {
		if d != nil {
			seen[d]++
		}
	}
	for _, v := range values {
		if v == final {
			require.Zero(t, seen[v])
			continue
		}
		require.Equal(t, 1, seen[v], "value %d displaced %d times", v.n, seen[v])
	}
}

func TestBind_NilPanics(t *testing.T) {
	require.Panics(t, func() { Bind[greeter](nil) })
	require.Panics(t, func() { Bind[*counter](nil) })
	require.Panics(t, func() { RegisterDefault[*counter](nil) })
	require.Panics(t, func() { With(context.Background(), Binding{}) })
}

func TestRun_BindingsEndWithUnit(t *testing.T) {
	ctx := With(context.Background(), Bind[greeter](named("outer")))
	boom := errors.New("boom")

	err := Run(ctx, func(ctx context.Context) error {
		g, _ := FindScoped[greeter](ctx)
		require.Equal(t, "inner", g.Greet())
		return Run(ctx, func(ctx context.Context) error {
			g, _ := FindScoped[greeter](ctx)
			require.Equal(t, "innermost", g.Greet())
			return boom
		}, Bind[greeter](named("innermost")))
	}, Bind[greeter](named("inner")))
	require.ErrorIs(t, err, boom)

	g, _ := FindScoped[greeter](ctx)
	require.Equal(t, "outer", g.Greet())

	require.Panics(t, func() {
		_ = Run(ctx, func(context.Context) error { panic("unit failed") }, Bind[greeter](named("x")))
	})
	g, _ = FindScoped[greeter](ctx)
	require.Equal(t, "outer", g.Greet())
}

func TestGo_ScopeCrossesGoroutinesAndJoins(t *testing.T) {
	ctx := With(context.Background(), Bind[greeter](named("parent")))

	var mu sync.Mutex
	var seen []string
	record := func(ctx context.Context) error {
		g, ok := FindScoped[greeter](ctx)
		if !ok {
			return errors.New("scope lost across goroutine")
		}
		mu.Lock()
		seen = append(seen, g.Greet())
		mu.Unlock()
		return nil
	}

	task := Go(ctx, record, Bind[greeter](named("child")))
	task.Go(record)
	require.NoError(t, task.Join())
	require.ElementsMatch(t, []string{"child", "child"}, seen)

	boom := errors.New("boom")
	failing := Go(ctx, func(context.Context) error { return boom })
	require.ErrorIs(t, failing.Join(), boom)
}
