// Package scope carries typed values through a dynamic execution scope.
//
// A scope is a context.Context: With pushes bindings onto the context's stack
// for one capability type, lookups see the innermost binding, and a binding
// disappears when the unit of work holding the derived context returns.
// Each capability type also has one process-wide default slot.
package scope

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Binding is a capability value keyed by its static type C.
type Binding struct {
	key   reflect.Type
	value any
}

// Bind pairs c with its capability type C. Binding a nil value panics.
func Bind[C any](c C) Binding {
	key := reflect.TypeFor[C]()
	mustNotBeNil(key, c)
	return Binding{key: key, value: c}
}

// Type returns the capability type the binding is keyed by.
func (b Binding) Type() reflect.Type { return b.key }

// Value returns the bound value.
func (b Binding) Value() any { return b.value }

type ctxKey struct{ t reflect.Type }

// frame is one entry of a per-type scope stack; next points outward.
type frame struct {
	value any
	next  *frame
}

// With returns a context in which each binding is the innermost value of its
// type. Bindings later in the list shadow earlier ones of the same type.
// A nil ctx is treated as context.Background().
func With(ctx context.Context, bindings ...Binding) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, b := range bindings {
		if b.key == nil {
			panic("scope: zero Binding; use Bind")
		}
		k := ctxKey{b.key}
		outer, _ := ctx.Value(k).(*frame)
		ctx = context.WithValue(ctx, k, &frame{value: b.value, next: outer})
	}
	return ctx
}

func top(ctx context.Context, key reflect.Type) *frame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(ctxKey{key}).(*frame)
	return f
}

// FindScoped returns the innermost binding of C in ctx.
func FindScoped[C any](ctx context.Context) (C, bool) {
	if f := top(ctx, reflect.TypeFor[C]()); f != nil {
		return f.value.(C), true
	}
	var zero C
	return zero, false
}

// Find returns the innermost binding of C in ctx, else the registered default.
func Find[C any](ctx context.Context) (C, bool) {
	if c, ok := FindScoped[C](ctx); ok {
		return c, true
	}
	return FindDefault[C]()
}

// Stack returns every active binding of C in ctx, innermost first.
func Stack[C any](ctx context.Context) []C {
	var out []C
	for f := top(ctx, reflect.TypeFor[C]()); f != nil; f = f.next {
		out = append(out, f.value.(C))
	}
	return out
}

// defaults maps a capability type to its process-wide default value.
var defaults sync.Map

// RegisterDefault installs c as the process default for C and returns the
// value it replaced. Concurrent registrations are last-write-wins and each
// caller receives exactly the value its write displaced.
func RegisterDefault[C any](c C) (prev C, replaced bool) {
	key := reflect.TypeFor[C]()
	mustNotBeNil(key, c)
	old, loaded := defaults.Swap(key, c)
	if loaded {
		return old.(C), true
	}
	return prev, false
}

// RegisterDefaultIfAbsent installs c only when C has no default yet. It
// returns the default in effect afterwards and whether c was installed.
func RegisterDefaultIfAbsent[C any](c C) (actual C, registered bool) {
	key := reflect.TypeFor[C]()
	mustNotBeNil(key, c)
	v, loaded := defaults.LoadOrStore(key, c)
	return v.(C), !loaded
}

// FindDefault returns the process default for C.
func FindDefault[C any]() (C, bool) {
	if v, ok := defaults.Load(reflect.TypeFor[C]()); ok {
		return v.(C), true
	}
	var zero C
	return zero, false
}

// UnregisterDefault removes and returns the process default for C.
func UnregisterDefault[C any]() (prev C, ok bool) {
	if v, loaded := defaults.LoadAndDelete(reflect.TypeFor[C]()); loaded {
		return v.(C), true
	}
	return prev, false
}

// Run executes fn with bindings active for its dynamic extent. The bindings
// are gone once fn returns, fails or panics, because only fn sees the derived
// context.
func Run(ctx context.Context, fn func(context.Context) error, bindings ...Binding) error {
	return fn(With(ctx, bindings...))
}

// Task is a unit of work running on other goroutines under one scope.
type Task struct {
	g   *errgroup.Group
	ctx context.Context
}

// Go runs fn on a new goroutine with bindings active. The goroutine sees the
// same scope as the caller plus bindings; Join waits for it.
func Go(ctx context.Context, fn func(context.Context) error, bindings ...Binding) *Task {
	g, gctx := errgroup.WithContext(With(ctx, bindings...))
	t := &Task{g: g, ctx: gctx}
	t.Go(fn)
	return t
}

// Go adds another goroutine to the task under the task's scope.
func (t *Task) Go(fn func(context.Context) error) {
	t.g.Go(func() error { return fn(t.ctx) })
}

// Join waits for every goroutine of the task and returns the first error.
func (t *Task) Join() error { return t.g.Wait() }

func mustNotBeNil(key reflect.Type, v any) {
	if v == nil {
		panic(fmt.Sprintf("scope: nil %v", key))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			panic(fmt.Sprintf("scope: nil %v", key))
		}
	}
}
