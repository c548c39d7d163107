package logx

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
)

// Repository is an isolated logging universe: its own logger hierarchy,
// levels, appenders and observers, independent from every other Repository
// in the process.
type Repository struct {
	name  string
	clock xclock.Clock // optional; nil means xclock.Now()

	mu        sync.RWMutex
	root      *Logger
	loggers   map[string]*Logger
	appenders map[string]Appender
	closers   []io.Closer
	sources   []string

	// Observers: lock-free reads via atomic.Value; synchronized updates via obsMu.
	observers atomic.Value // holds []Observer
	obsMu     sync.Mutex
}

// Config for constructing a Repository.
type Config struct {
	Name      string
	RootLevel Level
	Observers []Observer
	Clock     xclock.Clock // optional; defaults to xclock.Default() at emit time
}

// Builder separates construction from representation.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{RootLevel: LevelDebug}}
}

func (b *Builder) WithName(name string) *Builder {
	b.cfg.Name = name
	return b
}

func (b *Builder) WithRootLevel(l Level) *Builder {
	b.cfg.RootLevel = l
	return b
}

func (b *Builder) WithClock(c xclock.Clock) *Builder {
	b.cfg.Clock = c
	return b
}

func (b *Builder) AddObserver(o Observer) *Builder {
	b.cfg.Observers = append(b.cfg.Observers, o)
	return b
}

// Build constructs the Repository.
func (b *Builder) Build() *Repository {
	return newRepository(b.cfg)
}

// NewRepository creates an unconfigured repository: root at LevelDebug and no
// appenders, so nothing is written until it is configured.
func NewRepository(name string) *Repository {
	return NewBuilder().WithName(name).Build()
}

func newRepository(cfg Config) *Repository {
	r := &Repository{
		name:      cfg.Name,
		clock:     cfg.Clock,
		loggers:   make(map[string]*Logger),
		appenders: make(map[string]Appender),
	}
	root := &Logger{n: newNode(r, RootLoggerName, nil)}
	root.SetLevel(cfg.RootLevel)
	r.root = root
	r.loggers[RootLoggerName] = root

	if len(cfg.Observers) > 0 {
		obs := make([]Observer, len(cfg.Observers))
		copy(obs, cfg.Observers)
		r.observers.Store(obs)
	} else {
		r.observers.Store(([]Observer)(nil))
	}
	return r
}

// Name returns the repository name given at construction.
func (r *Repository) Name() string { return r.name }

// Root returns the root logger.
func (r *Repository) Root() *Logger { return r.root }

// Logger returns the logger named name, creating it and any missing ancestors.
// Segments are separated by '/' and '.', so Go import paths and type names
// nest naturally: "example.com/app/db.Pool" is a child of "example.com/app/db".
// An empty name or RootLoggerName returns the root.
func (r *Repository) Logger(name string) *Logger {
	if name == "" || name == RootLoggerName {
		return r.root
	}
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	parent := r.root.n
	for i := 0; i <= len(name); i++ {
		if i < len(name) && name[i] != '/' && name[i] != '.' {
			continue
		}
		prefix := name[:i]
		if prefix == "" {
			continue
		}
		cur, ok := r.loggers[prefix]
		if !ok {
			cur = &Logger{n: newNode(r, prefix, parent)}
			r.loggers[prefix] = cur
		}
		parent = cur.n
	}
	return r.loggers[name]
}

// Exists reports whether a logger named name has been created.
func (r *Repository) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loggers[name]
	return ok
}

// LoggerNames returns the names of all created loggers, root first, then sorted.
func (r *Repository) LoggerNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		if name != RootLoggerName {
			names = append(names, name)
		}
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return append([]string{RootLoggerName}, names...)
}

// ErrDuplicateAppender is returned when an appender name is already registered.
var ErrDuplicateAppender = errors.New("logx: duplicate appender name")

// RegisterAppender makes a addressable by name for configuration references.
// It does not attach a to any logger.
func (r *Repository) RegisterAppender(a Appender) error {
	if a == nil {
		return errors.New("logx: nil appender")
	}
	name := a.Name()
	if strings.TrimSpace(name) == "" {
		return errors.New("logx: appender has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appenders[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAppender, name)
	}
	r.appenders[name] = a
	return nil
}

// registerAll registers every appender of as, or none of them.
func (r *Repository) registerAll(as []Appender) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range as {
		if _, ok := r.appenders[a.Name()]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateAppender, a.Name())
		}
	}
	for _, a := range as {
		r.appenders[a.Name()] = a
	}
	return nil
}

// Appender returns the registered appender named name.
func (r *Repository) Appender(name string) (Appender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appenders[name]
	return a, ok
}

// AppenderNames returns the registered appender names, sorted.
func (r *Repository) AppenderNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.appenders))
	for name := range r.appenders {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Repository) addSource(source string) {
	r.mu.Lock()
	r.sources = append(r.sources, source)
	r.mu.Unlock()
}

// Sources lists the configuration sources applied since the last Reset.
func (r *Repository) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.sources))
	copy(out, r.sources)
	return out
}

func (r *Repository) trackCloser(c io.Closer) {
	r.mu.Lock()
	r.closers = append(r.closers, c)
	r.mu.Unlock()
}

// Reset returns the repository to its unconfigured state: every appender is
// detached and closed, every level cleared (root back to LevelDebug),
// additivity restored, and files opened by configuration closed. Loggers keep
// their identity, so handles obtained before Reset stay valid.
func (r *Repository) Reset() error {
	r.mu.Lock()
	loggers := make([]*Logger, 0, len(r.loggers))
	for _, l := range r.loggers {
		loggers = append(loggers, l)
	}
	registered := r.appenders
	r.appenders = make(map[string]Appender)
	closers := r.closers
	r.closers = nil
	r.sources = nil
	r.mu.Unlock()

	seen := make(map[Appender]struct{})
	var errs []error
	closeOnce := func(a Appender) {
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close appender %q: %w", a.Name(), err))
			}
		}
	}

	for _, l := range loggers {
		for _, a := range l.detachAll() {
			closeOnce(a)
		}
		l.ClearLevel()
		l.SetAdditive(true)
	}
	for _, a := range registered {
		closeOnce(a)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AddObserver registers o for every entry emitted through this repository.
func (r *Repository) AddObserver(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	cur := r.snapshotObservers()
	next := make([]Observer, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, o)
	r.observers.Store(next)
}

func (r *Repository) snapshotObservers() []Observer {
	v := r.observers.Load()
	if v == nil {
		return nil
	}
	return v.([]Observer)
}

func (r *Repository) notify(e Entry) {
	obs := r.snapshotObservers()
	for _, o := range obs {
		o.OnLog(r.name, e)
	}
}

func (r *Repository) now() time.Time {
	if r.clock != nil {
		return r.clock.Now()
	}
	return xclock.Now()
}
