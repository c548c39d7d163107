package logxconcern

import (
	"context"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
)

// SelectorName is the logx selector name of the bridge.
const SelectorName = "xscope"

func init() {
	logx.RegisterSelector(SelectorName, func(def *logx.Repository) logx.RepositorySelector {
		return NewSelector(def)
	})
}

// Selector answers logx's "which repository is current" with the repository
// of the Concern xscope resolves for the context. Only that one repository is
// addressable, so the named operations are empty.
type Selector struct {
	def *logx.Repository
}

// NewSelector returns the bridge; def is logx's own default repository.
func NewSelector(def *logx.Repository) *Selector {
	return &Selector{def: def}
}

// Repository panics with an *xscope.TypeMismatchError when the resolved
// Concern is not a RepositoryConcern: the legacy caller would otherwise log to
// a repository nobody configured for it.
func (s *Selector) Repository(ctx context.Context) *logx.Repository {
	c := xscope.ConcernFrom(ctx)
	rc, ok := c.(RepositoryConcern)
	if !ok {
		panic(&xscope.TypeMismatchError{
			Got:  xscope.TypeName(c),
			Want: "logxconcern.RepositoryConcern",
		})
	}
	return rc.Repository()
}

func (s *Selector) DefaultRepository() *logx.Repository { return s.def }

func (s *Selector) DetachRepository(string) *logx.Repository { return nil }

func (s *Selector) RepositoryNames() []string { return []string{} }

func (s *Selector) RepositoryByName(string) *logx.Repository { return nil }

// Installed reports whether logx committed to the bridge. False means another
// selector won the installation race; the outcome is permanent.
func Installed() bool {
	return logx.SelectorName() == SelectorName
}
