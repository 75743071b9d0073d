package receiver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncdelta"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// RecvFiles drives the receiver sub-role's main loop: for each NDX sent by
// the generator/sender it applies one file's delta token stream, until the
// -1 end-of-phase sentinel arrives twice (once per transfer phase).
func (rt *Transfer) RecvFiles(fileList []*File) error {
	phase := 0
	for {
		idx, err := rt.Conn.ReadInt32()
		if err != nil {
			return err
		}
		if idx == -1 {
			if phase == 0 {
				phase++
				if rt.Opts.Verbose {
					rt.Logger.Printf("recvFiles phase=%d", phase)
				}
				continue
			}
			break
		}
		if idx < 0 || int(idx) >= len(fileList) {
			return fmt.Errorf("%w: ndx %d out of range (have %d files)", rsync.ErrProtocol, idx, len(fileList))
		}
		if rt.Opts.Verbose {
			rt.Logger.Printf("receiving file idx=%d: %+v", idx, fileList[idx])
		}
		if err := rt.recvFile1(fileList[idx]); err != nil {
			return err
		}
	}
	if rt.Opts.Verbose {
		rt.Logger.Printf("recvFiles finished")
	}
	return nil
}

func (rt *Transfer) recvFile1(f *File) error {
	if rt.Opts.DryRun {
		if !rt.Opts.Server {
			fmt.Fprintln(rt.Env.Stdout, f.Name)
		}
		return nil
	}

	localFile, err := rt.openLocalFile(f)
	if err != nil && !os.IsNotExist(err) {
		rt.Logger.Printf("opening local file failed, continuing: %v", err)
	}
	if localFile != nil {
		defer localFile.Close()
	}
	if err := rt.receiveData(f, localFile); err != nil {
		return err
	}
	return nil
}

func (rt *Transfer) openLocalFile(f *File) (*os.File, error) {
	in, err := rt.DestRoot.Open(f.Name)
	if err != nil {
		return nil, err
	}

	st, err := in.Stat()
	if err != nil {
		in.Close()
		return nil, err
	}

	if st.IsDir() {
		in.Close()
		return nil, fmt.Errorf("%s is a directory", filepath.Join(rt.Dest, f.Name))
	}

	if !st.Mode().IsRegular() {
		in.Close()
		return nil, nil
	}

	if !rt.Opts.PreservePerms {
		// If the file exists already and we are not preserving permissions,
		// then act as though the remote sent us the existing permissions:
		f.Mode = int32(st.Mode().Perm())
	}

	return in, nil
}

// receiveData reads one file's SumHead and delta token stream and
// reconstructs it atomically at rt.Dest/f.Name, basing block matches on
// localFile when present.
//
// Delegates the token loop and atomic-rename write entirely to
// internal/rsyncdelta.Apply, since that package already implements the
// identical recvToken/whole-file-hash logic the teacher's own
// receive_data carried inline (there hardcoded to MD4 and an
// undocumented pending-file helper); this version negotiates the
// checksum algorithm instead of assuming MD4.
func (rt *Transfer) receiveData(f *File, localFile *os.File) error {
	sh, err := rsyncwire.ReadSumHead(rt.Conn)
	if err != nil {
		return err
	}

	local := rt.DestRoot.path(f.Name)
	rt.Logger.Printf("creating %s", local)

	if err := rsyncdelta.Apply(rt.Conn, sh, local, localFile, rt.Checksum, rt.Seed, rt.SeedFix); err != nil {
		return fmt.Errorf("receiving %s: %w", f.Name, err)
	}
	rt.Logger.Printf("%s reconstructed", local)

	if err := rt.setPerms(f); err != nil {
		return err
	}

	return nil
}
