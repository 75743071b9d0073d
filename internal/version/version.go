// Package version carries the human-readable version string rendered in
// error messages and the --version output, kept separate so it can be
// overridden at link time (-ldflags -X) without recompiling callers.
package version

import (
	"fmt"

	"github.com/syncwire/rsync"
)

// Version is the implementation version string, mimicking upstream rsync's
// wording in error messages and greetings ("rsync  version X  protocol
// version N").
var Version = "devel"

// Read returns the --version line in upstream rsync's wording.
func Read() string {
	return fmt.Sprintf("rsync  version %s  protocol version %d", Version, rsync.ProtocolVersion)
}
