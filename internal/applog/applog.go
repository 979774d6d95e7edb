// Package applog wires zerolog into the same kind of leveled, component-
// tagged logging surface pkg/framework/debug.Logger exposes (Debug/Info/
// Warn/Error, a single process-wide default instance), per spec §10.1.
// Callers never touch a zerolog.Logger directly outside this package's
// construction helpers.
package applog

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w, using a console writer when w
// is a terminal and plain JSON otherwise — the same auto-detection
// zerolog's own examples use for choosing between development and
// production output.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Default returns a logger writing to stderr at info level, matching
// debug.Logger's init() default of LogLevelInfo.
func Default() zerolog.Logger {
	return New(os.Stderr, zerolog.InfoLevel)
}

// Component returns a child logger tagged with component=name, the
// structured-field analogue of debug.Logger's bracketed prefix
// convention (e.g. "[ModelLoader]").
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
