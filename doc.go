// Package xscope resolves the logging Concern active for a unit of work.
//
// A Concern bundles a logger factory with the ability to change log levels.
// Application code asks the facade for a logger; the facade picks the Concern
// bound to the caller's context (see WithConcern and Run), else the process
// default (SetDefaultConcern), else Default, which logs through whatever the
// logx backend resolves on its own.
//
//	svc := xscope.Logger(ctx, s)             // logger named after s's type
//	xscope.Run(ctx, tenantConcern, handle)   // handle and its callees log to the tenant
//
// Backend-bound concerns and the bridge that makes logx's own global entry
// points follow the same resolution live in package logxconcern.
package xscope
