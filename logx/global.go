package logx

import "context"

// Factory returns the repository the committed selector resolves for a
// background context. Code without a context logs through it.
func Factory() *Repository { return Selector().Repository(context.Background()) }

// Get returns the named logger of Factory().
func Get(name string) *Logger { return Factory().Logger(name) }

// GetContext resolves the repository for ctx through the selector and returns
// its logger named name.
func GetContext(ctx context.Context, name string) *Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return Selector().Repository(ctx).Logger(name)
}

// Facade helpers on the root logger of Factory().
// Usage: logx.Info().Str("k","v").Msg("hello")

func Trace() *Event { return Factory().Root().Trace() }
func Debug() *Event { return Factory().Root().Debug() }
func Info() *Event  { return Factory().Root().Info() }
func Warn() *Event  { return Factory().Root().Warn() }
func Error() *Event { return Factory().Root().Error() }
