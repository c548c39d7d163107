package logx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Environment variables and well-known file names consulted by AutoConfigure.
const (
	EnvConfigFile     = "LOGX_CONFIG_FILE"
	TestConfigFile    = "logx-test.yaml"
	DefaultConfigFile = "logx.yaml"

	// BasicAppenderName names the console appender installed by BasicConfigure.
	BasicAppenderName = "console"
)

// ConfigError reports a configuration source the repository rejected.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logx: configure %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Document is the YAML (or JSON) configuration layout.
//
//	appenders:
//	  - name: app
//	    type: console
//	    writer: stdout
//	    format: json
//	root:
//	  level: info
//	  appenders: [app]
//	loggers:
//	  - name: github.com/acme/billing
//	    level: debug
type Document struct {
	Appenders []AppenderSpec `yaml:"appenders"`
	Root      *LoggerSpec    `yaml:"root"`
	Loggers   []LoggerSpec   `yaml:"loggers"`
}

// AppenderSpec declares one named appender.
type AppenderSpec struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"`
	Writer  string            `yaml:"writer"`
	Format  string            `yaml:"format"`
	Level   string            `yaml:"level"`
	Options map[string]string `yaml:"options"`
}

// LoggerSpec assigns a level, additivity and appender references to a logger.
type LoggerSpec struct {
	Name      string   `yaml:"name"`
	Level     string   `yaml:"level"`
	Additive  *bool    `yaml:"additive"`
	Appenders []string `yaml:"appenders"`
}

// AppenderFactory builds an appender from its spec. w is the resolved writer
// (stdout when the spec names none). Built-in list and discard appenders take
// no writer: their writer setting is ignored and no file is opened.
type AppenderFactory func(spec AppenderSpec, w io.Writer) (Appender, error)

var appenderTypes = struct {
	mu sync.RWMutex
	m  map[string]AppenderFactory

	// writerless types ignore their writer; none is opened for them.
	writerless map[string]bool
}{
	m: map[string]AppenderFactory{
		"console": newConsoleFromSpec,
		"list":    func(spec AppenderSpec, _ io.Writer) (Appender, error) { return NewListAppender(spec.Name), nil },
		"discard": func(spec AppenderSpec, _ io.Writer) (Appender, error) { return NewDiscardAppender(spec.Name), nil },
	},
	writerless: map[string]bool{"list": true, "discard": true},
}

// RegisterAppenderType makes typ usable in configuration documents. Adapter
// packages call it from init(). Registering an existing type replaces it.
func RegisterAppenderType(typ string, f AppenderFactory) {
	if typ == "" || f == nil {
		panic("logx: RegisterAppenderType requires a type name and a factory")
	}
	appenderTypes.mu.Lock()
	appenderTypes.m[typ] = f
	delete(appenderTypes.writerless, typ)
	appenderTypes.mu.Unlock()
}

// AppenderTypes lists the registered appender types, sorted.
func AppenderTypes() []string {
	appenderTypes.mu.RLock()
	defer appenderTypes.mu.RUnlock()
	out := make([]string, 0, len(appenderTypes.m))
	for k := range appenderTypes.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// usesWriter reports whether building spec needs its writer opened. An async
// appender uses the writer of the type it wraps.
func usesWriter(spec AppenderSpec) bool {
	typ := spec.Type
	if typ == "async" {
		typ = spec.Options["inner"]
	}
	if typ == "" {
		typ = "console"
	}
	appenderTypes.mu.RLock()
	defer appenderTypes.mu.RUnlock()
	return !appenderTypes.writerless[typ]
}

func lookupAppenderType(typ string) (AppenderFactory, bool) {
	appenderTypes.mu.RLock()
	defer appenderTypes.mu.RUnlock()
	f, ok := appenderTypes.m[typ]
	return f, ok
}

func newConsoleFromSpec(spec AppenderSpec, w io.Writer) (Appender, error) {
	format, err := ParseFormat(spec.Format)
	if err != nil {
		return nil, err
	}
	return NewConsoleAppender(spec.Name, w, format), nil
}

// ConfigureFile reads a configuration document from path.
func (r *Repository) ConfigureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ConfigError{Source: path, Err: err}
	}
	defer f.Close()
	return r.ConfigureReader(f, path)
}

// ConfigureURL reads a configuration document from an http, https or file URL.
func (r *Repository) ConfigureURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &ConfigError{Source: rawURL, Err: err}
	}
	switch u.Scheme {
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return r.ConfigureFile(path)
	case "http", "https":
	default:
		return &ConfigError{Source: rawURL, Err: fmt.Errorf("unsupported URL scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &ConfigError{Source: rawURL, Err: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &ConfigError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ConfigError{Source: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return r.ConfigureReader(resp.Body, rawURL)
}

// ConfigureReader applies the document read from rd. Configuration merges
// into the current state: appenders and levels are added, nothing is reset,
// and redefining an already registered appender name is an error. Call Reset
// first to replace a configuration.
//
// The document is validated as a whole before anything is applied.
func (r *Repository) ConfigureReader(rd io.Reader, source string) error {
	raw, err := io.ReadAll(rd)
	if err != nil {
		return &ConfigError{Source: source, Err: err}
	}
	expanded := os.Expand(string(raw), os.Getenv)

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return &ConfigError{Source: source, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := r.Apply(doc); err != nil {
		return &ConfigError{Source: source, Err: err}
	}
	r.addSource(source)
	return nil
}

type plannedLogger struct {
	name      string
	level     Level
	hasLevel  bool
	additive  *bool
	appenders []string
}

// Apply merges doc into the repository. Errors are returned unwrapped;
// ConfigureReader attaches the source.
func (r *Repository) Apply(doc Document) error {
	// Validate appender declarations.
	declared := make(map[string]AppenderSpec, len(doc.Appenders))
	for _, spec := range doc.Appenders {
		if strings.TrimSpace(spec.Name) == "" {
			return errors.New("appender without a name")
		}
		if _, dup := declared[spec.Name]; dup {
			return fmt.Errorf("%w: %q declared twice", ErrDuplicateAppender, spec.Name)
		}
		if _, exists := r.Appender(spec.Name); exists {
			return fmt.Errorf("%w: %q", ErrDuplicateAppender, spec.Name)
		}
		typ := spec.Type
		if typ == "" {
			typ = "console"
		}
		if _, ok := lookupAppenderType(typ); !ok {
			return fmt.Errorf("appender %q: unknown type %q", spec.Name, typ)
		}
		if spec.Level != "" {
			if _, err := ParseLevel(spec.Level); err != nil {
				return fmt.Errorf("appender %q: %w", spec.Name, err)
			}
		}
		declared[spec.Name] = spec
	}

	// Validate logger declarations.
	var plans []plannedLogger
	plan := func(spec LoggerSpec, root bool) error {
		p := plannedLogger{additive: spec.Additive, appenders: spec.Appenders}
		name := spec.Name
		if root {
			name = RootLoggerName
		} else if strings.TrimSpace(name) == "" {
			return errors.New("logger without a name")
		}
		if spec.Level != "" {
			lv, err := ParseLevel(spec.Level)
			if err != nil {
				return fmt.Errorf("logger %q: %w", name, err)
			}
			p.level, p.hasLevel = lv, true
		}
		for _, ref := range spec.Appenders {
			_, inDoc := declared[ref]
			_, inRepo := r.Appender(ref)
			if !inDoc && !inRepo {
				return fmt.Errorf("logger %q: unknown appender %q", name, ref)
			}
		}
		p.name = name
		plans = append(plans, p)
		return nil
	}
	if doc.Root != nil {
		if err := plan(*doc.Root, true); err != nil {
			return err
		}
	}
	for _, spec := range doc.Loggers {
		if err := plan(spec, false); err != nil {
			return err
		}
	}

	// Build appenders; undo on failure.
	built := make([]Appender, 0, len(doc.Appenders))
	var opened []io.Closer
	fail := func(err error) error {
		for _, a := range built {
			if c, ok := a.(io.Closer); ok {
				_ = c.Close()
			}
		}
		for _, c := range opened {
			_ = c.Close()
		}
		return err
	}
	for _, spec := range doc.Appenders {
		w := io.Discard
		if usesWriter(spec) {
			var closer io.Closer
			var err error
			w, closer, err = openWriter(spec.Writer)
			if err != nil {
				return fail(fmt.Errorf("appender %q: %w", spec.Name, err))
			}
			if closer != nil {
				opened = append(opened, closer)
			}
		}
		typ := spec.Type
		if typ == "" {
			typ = "console"
		}
		f, _ := lookupAppenderType(typ)
		a, err := f(spec, w)
		if err != nil {
			return fail(fmt.Errorf("appender %q: %w", spec.Name, err))
		}
		if spec.Level != "" {
			lv, _ := ParseLevel(spec.Level)
			ls, ok := a.(LevelSetter)
			if !ok {
				return fail(fmt.Errorf("appender %q: type %q has no level threshold", spec.Name, typ))
			}
			ls.SetMinLevel(lv)
		}
		built = append(built, a)
	}

	if err := r.registerAll(built); err != nil {
		return fail(err)
	}
	for _, c := range opened {
		r.trackCloser(c)
	}
	for _, p := range plans {
		l := r.Logger(p.name)
		if p.hasLevel {
			l.SetLevel(p.level)
		}
		if p.additive != nil {
			l.SetAdditive(*p.additive)
		}
		for _, ref := range p.appenders {
			if a, ok := r.Appender(ref); ok {
				l.AddAppender(a)
			}
		}
	}
	return nil
}

func openWriter(spec string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(spec) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "discard":
		return io.Discard, nil, nil
	}
	f, err := os.OpenFile(spec, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// BasicConfigure installs the fallback setup: root at LevelDebug with one
// text console appender on stdout.
func (r *Repository) BasicConfigure() error {
	a := NewConsoleAppender(BasicAppenderName, os.Stdout, FormatText)
	if err := r.RegisterAppender(a); err != nil {
		return &ConfigError{Source: "basic", Err: err}
	}
	r.root.SetLevel(LevelDebug)
	r.root.AddAppender(a)
	r.addSource("basic")
	return nil
}

// AutoConfigure looks for a configuration in this order: the file named by
// LOGX_CONFIG_FILE, logx-test.yaml, logx.yaml, and finally BasicConfigure.
// An explicitly named file that cannot be read is an error.
func (r *Repository) AutoConfigure() error {
	if path := os.Getenv(EnvConfigFile); path != "" {
		if strings.Contains(path, "://") {
			return r.ConfigureURL(context.Background(), path)
		}
		return r.ConfigureFile(path)
	}
	for _, candidate := range []string{TestConfigFile, DefaultConfigFile} {
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return r.ConfigureFile(candidate)
		}
	}
	return r.BasicConfigure()
}
