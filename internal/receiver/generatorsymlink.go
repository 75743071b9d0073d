//go:build linux || darwin

package receiver

import (
	"strings"

	"github.com/google/renameio/v2"
)

// mungePrefix mirrors the fixed marker upstream rsync's --munge-links
// prepends to every symlink target. A munged symlink still round-trips
// (strip the prefix to recover the original target) but can no longer be
// followed by anything that doesn't know to strip it first.
const mungePrefix = "/rsyncd-munged/"

func mungeSymlink(target string) string {
	if strings.HasPrefix(target, mungePrefix) {
		return target
	}
	return mungePrefix + target
}

func symlink(oldname, newname string) error {
	return renameio.Symlink(oldname, newname)
}
