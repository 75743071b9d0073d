//go:build linux && !nonamespacing

package maincmd

import (
	"fmt"
	"syscall"

	"github.com/syncwire/rsync/internal/rsyncos"
)

// dropPrivileges drops from root to the given uid/gid once the daemon has
// bound its listeners, so module access control runs with the least
// privilege the configuration requires rather than as root for the whole
// process lifetime. uid/gid default to 65534/65534 ("nobody") unless the
// configuration pins every writable module to the same explicit identity
// (see resolveDaemonIdentity).
func dropPrivileges(osenv *rsyncos.Env, uid, gid int) error {
	if syscall.Getuid() != 0 {
		return nil
	}

	osenv.Logf("running as root (uid 0), dropping privileges to uid %d / gid %d", uid, gid)
	if err := syscall.Setgid(gid); err != nil {
		return fmt.Errorf("setgid(%d): %v", gid, err)
	}

	if err := syscall.Setuid(uid); err != nil {
		return fmt.Errorf("setuid(%d): %v", uid, err)
	}

	// Defense in depth: exit if we can re-gain uid/gid 0 permission:
	if err := syscall.Setgid(0); err == nil {
		//lint:ignore ST1005 we need this punctuation for dramatic effect!
		return fmt.Errorf("unexpectedly able to re-gain gid 0 permission!")
	}

	if err := syscall.Setuid(0); err == nil {
		//lint:ignore ST1005 we need this punctuation for dramatic effect!
		return fmt.Errorf("unexpectedly able to re-gain uid 0 permission!")
	}

	return nil
}
