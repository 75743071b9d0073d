// Package rsyncstats holds the end-of-session statistics exchanged during
// the GOODBYE phase (spec.md §4.7 phase model).
package rsyncstats

// TransferStats mirrors the three integers rsync's "report" phase sends:
// total bytes read from the network, total bytes written to the network,
// and the total size of the transferred files.
type TransferStats struct {
	Read    int64
	Written int64
	Size    int64
}
