// Package logctx supplies the explicit logging context every component
// constructor in this module takes, in place of a package-global logger.
package logctx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Context bundles a sink and level. It is passed by value into component
// constructors (Store, Network, Generator, Train, Station, Loop, ...).
type Context struct {
	log zerolog.Logger
}

// New builds a Context writing to w at the given level. A nil w defaults
// to os.Stderr.
func New(w io.Writer, level zerolog.Level) Context {
	if w == nil {
		w = os.Stderr
	}
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return Context{log: l}
}

// Discard returns a Context that drops everything; useful for tests.
func Discard() Context {
	return Context{log: zerolog.Nop()}
}

// With returns a derived Context with an extra string field, for tagging
// logs by component instance (e.g. line code, station id).
func (c Context) With(key, value string) Context {
	return Context{log: c.log.With().Str(key, value).Logger()}
}

// WithInt is the integer-valued analogue of With.
func (c Context) WithInt(key string, value int) Context {
	return Context{log: c.log.With().Int(key, value).Logger()}
}

func (c Context) Log() *zerolog.Logger { return &c.log }
