package logging

import (
	"log/slog"

	"github.com/runningwild/glop/glog"
)

// Run 'fn' in a context where log messages at 'lvl' and above are propagated.
func Bracket(lvl slog.Level, fn func()) {
	fixup := SetLoggingLevel(lvl)
	defer fixup()
	fn()
}

// Run 'fn' with tracing enabled.
func TraceBracket(fn func()) {
	Bracket(glog.LevelTrace, fn)
}
