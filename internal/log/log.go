// Package log provides the thin logging sink used across the protocol
// engine, mirroring the teacher's ad-hoc internal/log package: a small
// interface plus a process-wide default for code paths that have not
// (yet) been threaded with an explicit *Logger.
package log

import (
	"io"
	"log"
)

// Logger is satisfied by *log.Logger and by anything test code wants to
// substitute (e.g. a buffer-backed logger for assertions).
type Logger interface {
	Printf(format string, v ...interface{})
}

// New returns a Logger writing to w, timestamped like the standard library
// default.
func New(w io.Writer) Logger {
	return log.New(w, "", log.LstdFlags)
}

var global Logger = New(io.Discard)

// SetLogger installs the process-wide default logger. Called once from
// rsyncd.WithLogger (or equivalent) during setup.
func SetLogger(l Logger) {
	if l != nil {
		global = l
	}
}

// Printf logs to the process-wide default logger. Prefer threading an
// explicit Logger through a struct where possible; this exists for the few
// call sites (e.g. package-level helpers) that predate that plumbing.
func Printf(format string, v ...interface{}) {
	global.Printf(format, v...)
}
