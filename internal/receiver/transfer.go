// Package receiver implements the receiver role (C7/C8): requesting
// signatures against basis files via the generator sub-role, applying
// the resulting delta token streams, and the permission/ownership and
// deletion bookkeeping that follows a completed transfer.
//
// Adapted from the teacher's internal/receiver package: the Transfer
// struct, GenerateFiles and the concrete signature/token wiring are
// rebuilt here on top of this module's internal/flist, internal/rsynchash
// and internal/rsyncdelta packages, since the teacher's own signature and
// token-stream plumbing lived in files the retrieval pack did not include.
package receiver

import (
	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/log"
	"github.com/syncwire/rsync/internal/rsyncos"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// File is the in-memory file-list entry type this package operates on.
type File = rsync.File

// TransferOpts mirrors the subset of parsed command-line/server options
// that affect receiver behavior (spec.md §6 "Server-side stdio
// interface"), grounded on the call sites in the teacher's
// clientmaincmd.go and rsyncd.go construction of receiver.TransferOpts.
type TransferOpts struct {
	Verbose bool
	DryRun  bool
	Server  bool

	DeleteMode        bool
	PreserveGid       bool
	PreserveUid       bool
	PreserveLinks     bool
	PreservePerms     bool
	PreserveDevices   bool
	PreserveSpecials  bool
	PreserveTimes     bool
	PreserveHardlinks bool

	// MungeSymlinks rewrites every received symlink target so that
	// following it cannot escape the destination tree, at the cost of
	// breaking the link until an operator explicitly un-munges it.
	MungeSymlinks bool
}

// Transfer holds the state of one receiver-role session: the destination
// root, the negotiated connection, and the algorithms chosen during
// handshake.
type Transfer struct {
	Logger log.Logger
	Opts   *TransferOpts

	Dest     string
	DestRoot destRoot
	Env      rsyncos.Std

	Conn     *rsyncwire.Conn
	Protocol int32
	Seed     int32
	SeedFix  bool
	Checksum rsync.Checksum

	VarintFlistFlags bool

	IOErrors int
}

// findInFileList reports whether name appears in fileList, used by
// deleteFiles to decide whether a local entry absent from the remote list
// should be removed.
func findInFileList(fileList []*File, name string) bool {
	for _, f := range fileList {
		if f.Name == name {
			return true
		}
	}
	return false
}
