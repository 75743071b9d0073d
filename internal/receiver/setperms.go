package receiver

import (
	"os"
	"time"
)

// setPerms applies the preserved attributes the file list carried for f
// to the just-written destination file: mode, modification time, and
// (via setUid, defined per-OS in generatoruid.go) ownership.
//
// Grounded on the call pattern already present in generatoruid.go's
// setUid, which this function is the missing caller of; mirrors
// rsync/rsync.c:set_perms being invoked once per file immediately after
// its data has been written.
func (rt *Transfer) setPerms(f *File) error {
	local := rt.DestRoot.path(f.Name)

	st, err := rt.DestRoot.Lstat(f.Name)
	if err != nil {
		return err
	}

	if rt.Opts.PreservePerms {
		if err := os.Chmod(local, os.FileMode(f.Mode).Perm()); err != nil {
			return err
		}
	}

	if rt.Opts.PreserveUid || rt.Opts.PreserveGid {
		if _, err := rt.setUid(f, local, st); err != nil {
			return err
		}
	}

	if rt.Opts.PreserveTimes {
		mtime := time.Unix(f.ModTime, 0)
		if err := os.Chtimes(local, mtime, mtime); err != nil {
			return err
		}
	}

	return nil
}
