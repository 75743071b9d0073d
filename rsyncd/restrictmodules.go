package rsyncd

import (
	"fmt"
	"os"

	"github.com/syncwire/rsync/internal/restrict"
)

// RestrictToModules sandboxes the daemon process to the union of every
// configured module's path, read-only or read-write depending on each
// module's own readOnly() precedence (Writable, ReadOnly, WriteOnly).
// Only modules that accept uploads have their directory created and get
// read-write access; a write-only module, which readOnly() also reports
// as rejecting uploads, is restricted read-only.
func RestrictToModules(modules []Module) error {
	var roDirs, rwDirs []string
	for _, mod := range modules {
		if mod.readOnly() {
			roDirs = append(roDirs, mod.Path)
			continue
		}
		if err := os.MkdirAll(mod.Path, 0755); err != nil {
			return fmt.Errorf("MkdirAll(mod=%s): %v", mod.Name, err)
		}
		rwDirs = append(rwDirs, mod.Path)
	}
	return restrict.MaybeFileSystem(roDirs, rwDirs)
}
