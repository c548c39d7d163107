// Package provider installs the xscope bridge into logx when imported:
//
//	import _ "github.com/trickstertwo/xscope/logxconcern/provider"
//
// Its init prefers the bridge selector, forces logx to commit right away,
// and registers a default Concern over logx's default repository unless the
// application already registered one. Import it before anything that logs
// through logx during initialization.
package provider

import (
	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
	"github.com/trickstertwo/xscope/logxconcern"
)

var (
	installed bool
	concern   xscope.Concern
)

func init() {
	logx.SetPreferredSelector(logxconcern.SelectorName, false)
	sel := logx.Selector()
	installed = logxconcern.Installed()

	// Unscoped code on both paths shares logx's default repository.
	concern, _ = xscope.SetDefaultConcernIfAbsent(logxconcern.NewDecorator(sel.DefaultRepository()))
}

// Installed reports whether the bridge won the installation race.
func Installed() bool { return installed }

// Concern returns the default Concern in effect when the provider initialized.
func Concern() xscope.Concern { return concern }
