// Package logxconcern binds xscope concerns to logx repositories and bridges
// logx's own global entry points (logx.Get, logx.GetContext, the slog
// handler) onto xscope resolution.
//
// The bridge is a logx.RepositorySelector registered as "xscope". logx
// commits its selector exactly once, so the bridge only takes effect when it
// is preferred before anything else initializes logx. Import
// logxconcern/provider for its side effect as early as possible:
//
//	import _ "github.com/trickstertwo/xscope/logxconcern/provider"
//
// If something else initialized logx first, Installed reports false and
// legacy callers keep logging through logx's unmanaged default repository
// while xscope-aware code still follows its scope. Nothing can undo that
// for the rest of the process.
package logxconcern
