// Package testlogger adapts a *testing.T into an io.Writer, so that a
// daemon or client under test can log through the ordinary log.Logger
// plumbing while still having its output captured and attributed to the
// right test by `go test -v`.
package testlogger

import (
	"bytes"
	"testing"
)

// New returns a writer that forwards each line written to it to t.Logf.
func New(t *testing.T) *Writer {
	return &Writer{t: t}
}

type Writer struct {
	t *testing.T
}

func (w *Writer) Write(p []byte) (int, error) {
	w.t.Helper()
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		w.t.Logf("%s", line)
	}
	return len(p), nil
}
