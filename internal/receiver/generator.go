package receiver

import (
	"os"
	"path/filepath"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsynchash"
)

// GenerateFiles drives the generator sub-role (spec.md §3 "Generator.
// Receiver sub-role that constructs signatures and drives requests"): for
// every regular-file entry it builds a Signature over the existing
// basis file (an empty Signature when no basis exists), then writes the
// file's NDX followed by the signature to the sender, finally closing the
// request stream with NdxEndSentinel.
//
// Not present in the teacher's retrieved files (the generator core lived
// in a file the retrieval pack did not include); grounded on spec.md
// §4.5's signature-construction description and on this package's own
// do.go, which already calls rt.GenerateFiles concurrently with
// RecvFiles via an errgroup.
func (rt *Transfer) GenerateFiles(fileList []*File) error {
	for idx, f := range fileList {
		if rt.Opts.DryRun {
			continue
		}

		switch {
		case f.IsDir():
			if err := rt.generateDir(f); err != nil {
				return err
			}
			continue
		case f.IsSymlink():
			if rt.Opts.PreserveLinks {
				if err := rt.generateSymlink(f); err != nil {
					return err
				}
			}
			continue
		case f.IsDevice(), f.IsSpecial():
			// Device/special files carry no delta stream either; creating
			// them requires privileges this package does not assume, so
			// they are reported rather than silently skipped.
			if rt.Opts.PreserveDevices || rt.Opts.PreserveSpecials {
				rt.Logger.Printf("skipping device/special file %s (mknod not implemented)", f.Name)
			}
			continue
		}

		sig, err := rt.basisSignature(f)
		if err != nil {
			return err
		}

		if err := rt.Conn.WriteInt32(int32(idx)); err != nil {
			return err
		}
		if err := sig.WriteTo(rt.Conn); err != nil {
			return err
		}
	}
	return rt.Conn.WriteInt32(rsync.NdxEndSentinel)
}

func (rt *Transfer) generateDir(f *File) error {
	local := rt.DestRoot.path(f.Name)
	return os.MkdirAll(local, 0o700)
}

func (rt *Transfer) generateSymlink(f *File) error {
	local := rt.DestRoot.path(f.Name)
	if err := os.MkdirAll(filepath.Dir(local), 0o700); err != nil {
		return err
	}
	_ = os.Remove(local)
	target := f.LinkTarget
	if rt.Opts.MungeSymlinks {
		target = mungeSymlink(target)
	}
	return symlink(target, local)
}

func (rt *Transfer) basisSignature(f *File) (*rsynchash.Signature, error) {
	local := rt.DestRoot.path(f.Name)
	basis, err := os.Open(local)
	if err != nil {
		if os.IsNotExist(err) {
			return &rsynchash.Signature{}, nil
		}
		return nil, err
	}
	defer basis.Close()

	st, err := basis.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return &rsynchash.Signature{}, nil
	}

	return rsynchash.Make(basis, st.Size(), rt.Checksum, rt.Seed, rt.SeedFix)
}
