package sender

import (
	"os"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/flist"
	"github.com/syncwire/rsync/internal/rsyncdelta"
	"github.com/syncwire/rsync/internal/rsynchash"
	"github.com/syncwire/rsync/internal/rsyncstats"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Do drives one sender-role session: walks root/paths into a file list,
// transmits it, then answers generator requests (NDX plus a Signature)
// with an echoed NDX, the same SumHead, and a delta token stream, until
// the generator's NdxEndSentinel arrives. Mirrors
// internal/receiver/do.go's Do in structure and in the end-of-session
// statistics report both sides exchange.
func (st *Transfer) Do(crd *rsyncwire.CountingReader, cwr *rsyncwire.CountingWriter, root string, paths []string, exclusionList *FilterList) (*rsyncstats.TransferStats, error) {
	fileList, err := buildFileList(root, paths, exclusionList)
	if err != nil {
		return nil, err
	}
	flist.Sort(fileList)

	if st.Opts != nil && st.Opts.Verbose() {
		st.Logger.Printf("sending file list (%d entries)", len(fileList))
	}
	if err := flist.WriteList(st.Conn, st.Protocol, st.VarintFlistFlags, fileList); err != nil {
		return nil, err
	}

	if err := st.serveRequests(fileList); err != nil {
		return nil, err
	}

	stats := &rsyncstats.TransferStats{
		Read:    int64(crd.BytesRead),
		Written: int64(cwr.BytesWritten),
		Size:    totalSize(fileList),
	}
	if err := st.Conn.WriteInt64(stats.Read); err != nil {
		return nil, err
	}
	if err := st.Conn.WriteInt64(stats.Written); err != nil {
		return nil, err
	}
	if err := st.Conn.WriteInt64(stats.Size); err != nil {
		return nil, err
	}

	// final goodbye
	if _, err := st.Conn.ReadInt32(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (st *Transfer) serveRequests(fileList []*rsync.File) error {
	for {
		ndx, err := st.Conn.ReadInt32()
		if err != nil {
			return err
		}
		if ndx == rsync.NdxEndSentinel {
			return nil
		}
		if ndx < 0 || int(ndx) >= len(fileList) {
			return rsync.ErrProtocol
		}

		sig, err := rsynchash.ReadSignature(st.Conn)
		if err != nil {
			return err
		}

		if err := st.Conn.WriteInt32(ndx); err != nil {
			return err
		}
		if err := rsyncwire.WriteSumHead(st.Conn, sig.SumHead); err != nil {
			return err
		}

		if err := st.sendFile(fileList[ndx], sig); err != nil {
			return err
		}
	}
}

func (st *Transfer) sendFile(f *rsync.File, sig *rsynchash.Signature) error {
	src, err := os.Open(f.Name)
	if err != nil {
		return err
	}
	defer src.Close()

	return rsyncdelta.Generate(st.Conn, src, sig, st.Checksum, st.Seed, st.SeedFix)
}

func totalSize(fileList []*rsync.File) int64 {
	var total int64
	for _, f := range fileList {
		total += f.Size
	}
	return total
}
