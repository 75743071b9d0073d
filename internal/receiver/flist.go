package receiver

import "github.com/syncwire/rsync/internal/flist"

// ReceiveFileList reads the remote file list for this session as a single
// batch list (flist.ReadList), decoding with the varint/byte flags
// convention negotiated during the handshake. Incremental sub-lists are
// not read, whatever the negotiated protocol.
//
// Grounded on internal/flist's Decoder (built this session against
// spec.md §4.4's file-list codec) rather than any teacher file, since the
// retrieval pack's own file-list decode loop lived in files not included
// here.
func (rt *Transfer) ReceiveFileList() ([]*File, error) {
	files, err := flist.ReadList(rt.Conn, rt.Protocol, rt.VarintFlistFlags)
	if err != nil {
		return nil, err
	}
	return []*File(files), nil
}
