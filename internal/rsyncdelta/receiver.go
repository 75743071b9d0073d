package rsyncdelta

import (
	"bytes"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsynchash"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Apply reads a token stream from c and reconstructs destPath, copying
// BlockMatch tokens from basis (random-access, may be nil when no basis
// exists) and appending Literal tokens, then verifies the sender's
// whole-file hash against what was written (spec.md §4.6 "Receiver").
//
// Grounded on internal/receiver/receiver.go's receiveData/recvToken
// (negative token = basis block copy, positive token = literal length, 0
// = end, followed by a remote whole-file sum comparison) generalized to
// the negotiated checksum algorithm instead of a hardcoded MD4, and using
// github.com/google/renameio/v2 for the atomic temp-file-then-rename
// write the teacher's own newPendingFile/CloseAtomicallyReplace pair
// implements.
func Apply(c *rsyncwire.Conn, sh rsync.SumHead, destPath string, basis *os.File, alg rsync.Checksum, seed int32, seedFix bool) error {
	out, err := renameio.NewPendingFile(destPath)
	if err != nil {
		return err
	}
	defer out.Cleanup()

	whole := rsynchash.NewStrongHash(alg, seed, seedFix)
	wr := io.MultiWriter(out, whole)

	for {
		token, data, err := readToken(c)
		if err != nil {
			return err
		}
		if token == 0 {
			break
		}
		if token > 0 {
			if _, err := wr.Write(data); err != nil {
				return err
			}
			continue
		}
		if basis == nil {
			return fmt.Errorf("%w: BlockMatch received with no basis file open", rsync.ErrProtocol)
		}
		blockIndex := -(token + 1)
		if blockIndex < 0 || blockIndex >= sh.ChecksumCount {
			return fmt.Errorf("%w: BlockMatch index %d outside signature range [0,%d)",
				rsync.ErrProtocol, blockIndex, sh.ChecksumCount)
		}
		length := sh.BlockLength
		if blockIndex == sh.ChecksumCount-1 && sh.RemainderLength != 0 {
			length = sh.RemainderLength
		}
		buf := make([]byte, length)
		if _, err := basis.ReadAt(buf, int64(blockIndex)*int64(sh.BlockLength)); err != nil {
			return err
		}
		if _, err := wr.Write(buf); err != nil {
			return err
		}
	}

	if err := verifyWholeSum(c, whole); err != nil {
		return err
	}

	return out.CloseAtomicallyReplace()
}

func verifyWholeSum(c *rsyncwire.Conn, whole hash.Hash) error {
	local := whole.Sum(nil)
	remote := make([]byte, len(local))
	if _, err := io.ReadFull(c.Reader, remote); err != nil {
		return err
	}
	if !bytes.Equal(local, remote) {
		return fmt.Errorf("%w: whole-file checksum mismatch", rsync.ErrHashMismatch)
	}
	return nil
}
