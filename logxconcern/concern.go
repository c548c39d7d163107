package logxconcern

import (
	"context"
	"errors"
	"io"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
)

// RepositoryConcern is a Concern backed by a logx repository. Only concerns of
// this kind can serve the legacy bridge.
type RepositoryConcern interface {
	xscope.Concern
	Repository() *logx.Repository
}

var (
	_ RepositoryConcern = (*Concern)(nil)
	_ RepositoryConcern = (*Decorator)(nil)
)

// bound carries the operations shared by every repository-backed concern.
type bound struct {
	repo *logx.Repository
}

func (b bound) Repository() *logx.Repository { return b.repo }

func (b bound) LoggerFactory() xscope.LoggerFactory { return b.repo }

// SetLogLevel sets the level of l. l is normally a logger of this concern's
// repository.
func (b bound) SetLogLevel(l *logx.Logger, level xscope.Level) error {
	if l == nil {
		return errors.New("logxconcern: nil logger")
	}
	l.SetLevel(ToNativeLevel(level))
	return nil
}

// Concern owns an isolated logx repository: its own loggers, levels and
// appenders, independent of every other repository in the process.
type Concern struct {
	bound
}

// New returns a Concern over a fresh, unconfigured repository.
func New(name string) *Concern {
	return &Concern{bound{repo: logx.NewRepository(name)}}
}

// NewAutoConfigured returns a Concern whose repository went through AutoConfigure.
func NewAutoConfigured(name string) (*Concern, error) {
	c := New(name)
	if err := c.AutoConfigure(); err != nil {
		return nil, err
	}
	return c, nil
}

// AutoConfigure applies logx's zero-config lookup (see logx.Repository.AutoConfigure).
func (c *Concern) AutoConfigure() error { return c.repo.AutoConfigure() }

// ConfigureFile applies the configuration document at path.
//
// Configuring merges: appenders and levels accumulate across calls and
// redefining an appender name fails. Call Reset first to replace a
// configuration.
func (c *Concern) ConfigureFile(path string) error { return c.repo.ConfigureFile(path) }

// ConfigureURL applies the configuration document at rawURL (http, https, file).
// Merge semantics are those of ConfigureFile.
func (c *Concern) ConfigureURL(ctx context.Context, rawURL string) error {
	return c.repo.ConfigureURL(ctx, rawURL)
}

// ConfigureReader applies the configuration document read from r. source
// names it in errors. Merge semantics are those of ConfigureFile.
func (c *Concern) ConfigureReader(r io.Reader, source string) error {
	return c.repo.ConfigureReader(r, source)
}

// Reset returns the repository to its unconfigured state.
func (c *Concern) Reset() error { return c.repo.Reset() }

// Decorator adapts an existing repository, such as the one logx created for
// itself, into a Concern. It owns nothing.
type Decorator struct {
	bound
}

// NewDecorator wraps repo. A nil repo panics.
func NewDecorator(repo *logx.Repository) *Decorator {
	if repo == nil {
		panic("logxconcern: NewDecorator requires a repository")
	}
	return &Decorator{bound{repo: repo}}
}
