// Package sender implements the sender role (C6): walking a local
// filesystem tree into a file list, answering generator requests with
// delta token streams, and the matching end-of-session statistics report.
//
// Not present in the retrieval pack (internal/receiver's companion
// internal/sender package was referenced from rsyncd/rsyncd.go's
// handleConnSender and internal/maincmd/clientmaincmd.go's sender branch,
// but its own source was never retrieved — only those two, mutually
// inconsistent call sites were). Transfer's shape and Do's signature are
// designed from scratch here, and both call sites are adapted to agree
// with it, reusing internal/flist, internal/rsynchash and
// internal/rsyncdelta exactly as internal/receiver does.
package sender

import (
	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/log"
	"github.com/syncwire/rsync/internal/rsyncopts"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Transfer holds the state of one sender-role session. Opts is the parsed
// command-line/server option set directly (mirroring both retrieved call
// sites, which construct this with Opts: opts where opts is
// *rsyncopts.Options, unlike receiver.Transfer's dedicated TransferOpts).
type Transfer struct {
	Logger log.Logger
	Opts   *rsyncopts.Options

	Conn     *rsyncwire.Conn
	Protocol int32
	Seed     int32
	SeedFix  bool
	Checksum rsync.Checksum

	VarintFlistFlags bool
}
