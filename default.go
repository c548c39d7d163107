package xscope

import "github.com/trickstertwo/xscope/logx"

// Base is the embeddable part shared by concerns that do not own a backend
// context: loggers come from the default repository of the committed logx
// selector. It owns nothing.
//
// It must not use the selector's context lookup: with the bridge committed
// that lookup resolves back to Default and panics.
type Base struct{}

func (Base) LoggerFactory() LoggerFactory { return logx.Selector().DefaultRepository() }

// Default is the fallback Concern used when neither the scope nor the process
// default provides one. It cannot change levels.
type Default struct{ Base }

func (Default) SetLogLevel(*logx.Logger, Level) error {
	return &UnsupportedError{
		Concern:   "xscope.Default",
		Operation: "SetLogLevel",
		Need:      "a backend-bound concern such as logxconcern.Concern",
	}
}
