package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
)

const (
	// DefaultSelectorName names the built-in selector that always answers
	// with the default repository.
	DefaultSelectorName = "default"
	// DefaultRepositoryName names the repository created at commit time.
	DefaultRepositoryName = "default"
	// EnvContextSelector selects the selector when no preference was recorded.
	EnvContextSelector = "LOGX_CONTEXT_SELECTOR"
)

// RepositorySelector decides which Repository is current for a context. The
// process has exactly one, committed by the first call to Selector.
type RepositorySelector interface {
	Repository(ctx context.Context) *Repository
	DefaultRepository() *Repository
	DetachRepository(name string) *Repository
	RepositoryNames() []string
	RepositoryByName(name string) *Repository
}

// SelectorFactory builds a selector around the auto-configured default repository.
type SelectorFactory func(defaultRepo *Repository) RepositorySelector

var selectorFactories = struct {
	mu sync.RWMutex
	m  map[string]SelectorFactory
}{m: map[string]SelectorFactory{
	DefaultSelectorName: func(def *Repository) RepositorySelector { return &defaultSelector{repo: def} },
}}

// RegisterSelector makes a selector available under name. Packages providing
// selectors call it from init().
func RegisterSelector(name string, f SelectorFactory) {
	if name == "" || f == nil {
		panic("logx: RegisterSelector requires a name and a factory")
	}
	selectorFactories.mu.Lock()
	selectorFactories.m[name] = f
	selectorFactories.mu.Unlock()
}

// Selectors lists the registered selector names, sorted.
func Selectors() []string {
	selectorFactories.mu.RLock()
	defer selectorFactories.mu.RUnlock()
	out := make([]string, 0, len(selectorFactories.m))
	for k := range selectorFactories.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookupSelector(name string) (SelectorFactory, bool) {
	selectorFactories.mu.RLock()
	defer selectorFactories.mu.RUnlock()
	f, ok := selectorFactories.m[name]
	return f, ok
}

type committedSelector struct {
	name string
	sel  RepositorySelector
}

// selectorBinder is the one-way commit point: mu orders preference writes
// against the commit, once runs the commit, and cur publishes the result.
type selectorBinder struct {
	mu        sync.Mutex
	preferred string
	committed bool

	once sync.Once
	cur  atomic.Pointer[committedSelector]
}

var binder = &selectorBinder{}

// reportWriter receives problems found while committing the selector, before
// any repository is usable for logging them.
var reportWriter io.Writer = os.Stderr

func report(format string, args ...any) {
	fmt.Fprintf(reportWriter, "logx: "+format+"\n", args...)
}

// SetPreferredSelector records the selector Selector will commit to. It has no
// effect once the selector is committed. Without force, a different
// preference recorded earlier is kept. It reports whether name is now the
// preference.
func SetPreferredSelector(name string, force bool) bool {
	b := binder
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.committed {
		return false
	}
	if b.preferred != "" && b.preferred != name && !force {
		return false
	}
	b.preferred = name
	return true
}

// PreferredSelector returns the recorded preference, if any.
func PreferredSelector() string {
	b := binder
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.preferred
}

// Selector returns the process-wide selector, committing it on first use.
// The commit picks the preferred selector, else the one named by
// LOGX_CONTEXT_SELECTOR, else the default selector, and auto-configures the
// default repository. It is never re-run.
func Selector() RepositorySelector {
	b := binder
	b.once.Do(b.commit)
	return b.cur.Load().sel
}

func (b *selectorBinder) commit() {
	b.mu.Lock()
	b.committed = true
	name := b.preferred
	b.mu.Unlock()
	if name == "" {
		name = os.Getenv(EnvContextSelector)
	}
	if name == "" {
		name = DefaultSelectorName
	}

	def := NewRepository(DefaultRepositoryName)
	if err := def.AutoConfigure(); err != nil {
		report("auto-configuration of the default repository failed: %v", err)
	}

	f, ok := lookupSelector(name)
	if !ok {
		report("unknown context selector %q, using %q", name, DefaultSelectorName)
		name = DefaultSelectorName
		f, _ = lookupSelector(name)
	}
	b.cur.Store(&committedSelector{name: name, sel: f(def)})
}

// Committed reports whether Selector has already run its commit.
func Committed() bool {
	b := binder
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

// SelectorName returns the name of the committed selector, or "" before commit.
func SelectorName() string {
	if c := binder.cur.Load(); c != nil {
		return c.name
	}
	return ""
}

type defaultSelector struct {
	repo *Repository
}

func (s *defaultSelector) Repository(context.Context) *Repository { return s.repo }
func (s *defaultSelector) DefaultRepository() *Repository         { return s.repo }

// DetachRepository never detaches the default repository.
func (s *defaultSelector) DetachRepository(string) *Repository { return nil }

func (s *defaultSelector) RepositoryNames() []string { return []string{s.repo.Name()} }

func (s *defaultSelector) RepositoryByName(name string) *Repository {
	if name == s.repo.Name() {
		return s.repo
	}
	return nil
}
