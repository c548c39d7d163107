package zap

import "github.com/trickstertwo/xscope/logx"

func init() {
	logx.RegisterAppenderType("zap", FromSpec)
}
