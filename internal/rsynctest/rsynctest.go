// Package rsynctest provides small helpers shared by this module's
// integration-style tests: spinning up an in-process rsync daemon to
// sync against, locating a real rsync(1) binary to interoperate with,
// and generating/verifying test fixtures (large files, device nodes)
// that exercise the delta engine and special-file handling.
package rsynctest

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/syncwire/rsync/rsyncd"
)

// AnyRsync locates a real rsync(1) binary on PATH to interoperate
// against, skipping the test when none is installed.
func AnyRsync(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("rsync")
	if err != nil {
		t.Skip("rsync(1) not found on PATH, skipping interop test")
	}
	return path
}

// Option configures a Server started by New.
type Option func(*options)

type options struct {
	modules []rsyncd.Module
}

// InteropModule adds a read-write module named "interop" rooted at path,
// matching the module name the integration tests dial as
// rsync://host:port/interop/.
func InteropModule(path string) Option {
	return func(o *options) {
		o.modules = append(o.modules, rsyncd.Module{
			Name:     "interop",
			Path:     path,
			Writable: true,
		})
	}
}

// Server is a daemon listening on loopback for the duration of a test.
type Server struct {
	Port string
}

// New starts an rsync daemon on an ephemeral loopback port and stops it
// when t completes.
func New(t *testing.T, opts ...Option) *Server {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	srv, err := rsyncd.NewServer(o.modules)
	if err != nil {
		t.Fatalf("rsyncd.NewServer: %v", err)
	}

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	_, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort(%s): %v", ln.Addr(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := srv.Serve(ctx, ln); err != nil && ctx.Err() == nil {
			t.Logf("Serve: %v", err)
		}
	}()
	t.Cleanup(cancel)

	return &Server{Port: port}
}

// largeFileSize is chosen to span many of internal/rsyncdelta's blocks,
// so an incremental sync genuinely has to skip most of the file instead
// of falling entirely within a single block boundary.
const largeFileSize = 3 * 1024 * 1024

// WriteLargeDataFile creates a file in dir/large-data-file consisting of
// headPattern, then bodyPattern repeated to fill the file, then
// endPattern — distinct byte values at the start, middle and end make it
// easy to tell which region of the file an incremental sync touched.
func WriteLargeDataFile(t *testing.T, dir string, headPattern, bodyPattern, endPattern []byte) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "large-data-file"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.Write(bytes.Repeat(headPattern, 4096)); err != nil {
		t.Fatal(err)
	}
	written := 4096 * len(headPattern)
	for written < largeFileSize-4096*len(endPattern) {
		n, err := f.Write(bodyPattern)
		if err != nil {
			t.Fatal(err)
		}
		written += n
	}
	if _, err := f.Write(bytes.Repeat(endPattern, 4096)); err != nil {
		t.Fatal(err)
	}
}

// DataFileMatches verifies that dir/large-data-file starts with
// headPattern and ends with endPattern, the way the sync target should
// look after a successful transfer from WriteLargeDataFile's source.
func DataFileMatches(dir string, headPattern, _, endPattern []byte) error {
	data, err := os.ReadFile(filepath.Join(dir, "large-data-file"))
	if err != nil {
		return err
	}
	headLen := 4096 * len(headPattern)
	if !bytes.Equal(data[:headLen], bytes.Repeat(headPattern, 4096)) {
		return fmt.Errorf("head of large-data-file does not match expected pattern")
	}
	endLen := 4096 * len(endPattern)
	if !bytes.Equal(data[len(data)-endLen:], bytes.Repeat(endPattern, 4096)) {
		return fmt.Errorf("tail of large-data-file does not match expected pattern")
	}
	return nil
}
