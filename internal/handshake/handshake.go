// Package handshake implements C3: the version exchange, compat-flag
// exchange, algorithm negotiation and checksum-seed exchange that precede
// any multiplex activation (spec.md §4.3). Every step here runs in raw
// mode over the Conn passed in; activating the multiplexer is the
// caller's responsibility once Client/Server returns.
package handshake

import (
	"fmt"
	"strings"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Result is the negotiated session state produced by the handshake,
// becoming immutable for the rest of the session (spec.md §3 Lifecycles).
type Result struct {
	Version    int32
	Compat     rsync.CompatFlag
	Algorithms rsync.Algorithms
	Seed       int32
}

func negotiateVersion(c *rsyncwire.Conn, localMax int32) (int32, error) {
	if err := c.WriteInt32(localMax); err != nil {
		return 0, fmt.Errorf("writing protocol version: %w", err)
	}
	remote, err := c.ReadInt32()
	if err != nil {
		return 0, fmt.Errorf("reading protocol version: %w", err)
	}
	v := localMax
	if remote < v {
		v = remote
	}
	if v < rsync.MinProtocolVersion || v > rsync.ProtocolVersion {
		return 0, fmt.Errorf("%w: negotiated version %d (local %d, remote %d)",
			rsync.ErrVersionIncompatible, v, localMax, remote)
	}
	return v, nil
}

func joinNames[T fmt.Stringer](vs []T) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.String()
	}
	return strings.Join(names, " ")
}

// pick returns the first entry of preferred that also appears in
// available, per spec.md §4.3 step 3's selection rule ("client picks
// first name from server's list that appears in its own list").
func pick(preferred, available []string) (string, bool) {
	avail := make(map[string]bool, len(available))
	for _, a := range available {
		avail[a] = true
	}
	for _, p := range preferred {
		if avail[p] {
			return p, true
		}
	}
	return "", false
}

func parseChecksum(name string) (rsync.Checksum, bool) {
	switch name {
	case "md4":
		return rsync.ChecksumMD4, true
	case "md5":
		return rsync.ChecksumMD5, true
	case "sha1":
		return rsync.ChecksumSHA1, true
	case "xxh64":
		return rsync.ChecksumXXH64, true
	default:
		return 0, false
	}
}

func parseCompression(name string) (rsync.Compression, bool) {
	switch name {
	case "none", "zlib":
		if name == "none" {
			return rsync.CompressionNone, true
		}
		return rsync.CompressionZlib, true
	case "zlibx":
		return rsync.CompressionZlibX, true
	case "lz4":
		return rsync.CompressionLZ4, true
	case "zstd":
		return rsync.CompressionZstd, true
	default:
		return 0, false
	}
}

// ServerChecksums/ServerCompressions are the server's advertised algorithm
// lists, most-preferred first, matching the order rsyncd.conf-style
// configuration would specify.
var (
	ServerChecksums    = []rsync.Checksum{rsync.ChecksumMD5, rsync.ChecksumXXH64, rsync.ChecksumMD4, rsync.ChecksumSHA1}
	ServerCompressions = []rsync.Compression{rsync.CompressionZstd, rsync.CompressionLZ4, rsync.CompressionZlibX, rsync.CompressionZlib, rsync.CompressionNone}
)

// ClientChecksums/ClientCompressions are the client's own supported sets,
// used to pick from whichever name the server sends first that the client
// also supports.
var (
	ClientChecksums    = []string{"md5", "xxh64", "md4", "sha1"}
	ClientCompressions = []string{"zstd", "lz4", "zlibx", "zlib", "none"}
)

// Client performs the client side of the handshake: version exchange,
// (conditionally) reading compat flags, reading+selecting algorithms, and
// reading the checksum seed. All in raw mode, per spec.md §4.3.
func Client(c *rsyncwire.Conn, localMax int32) (*Result, error) {
	v, err := negotiateVersion(c, localMax)
	if err != nil {
		return nil, err
	}
	res := &Result{Version: v}

	if v >= 30 {
		compat, err := c.ReadCompatFlags()
		if err != nil {
			return nil, fmt.Errorf("reading compat flags: %w", err)
		}
		res.Compat = compat

		serverChecksums, err := c.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading checksum list: %w", err)
		}
		serverCompressions, err := c.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading compression list: %w", err)
		}

		chosenChecksum, ok := pick(strings.Fields(serverChecksums), ClientChecksums)
		if !ok {
			return nil, fmt.Errorf("%w: no common checksum (server offered %q)", rsync.ErrNegotiationFailed, serverChecksums)
		}
		chosenCompression, ok := pick(strings.Fields(serverCompressions), ClientCompressions)
		if !ok {
			return nil, fmt.Errorf("%w: no common compression (server offered %q)", rsync.ErrNegotiationFailed, serverCompressions)
		}
		if err := c.WriteString(chosenChecksum); err != nil {
			return nil, err
		}
		if err := c.WriteString(chosenCompression); err != nil {
			return nil, err
		}
		checksum, _ := parseChecksum(chosenChecksum)
		compression, _ := parseCompression(chosenCompression)
		res.Algorithms = rsync.Algorithms{Checksum: checksum, Compression: compression}
	} else {
		res.Algorithms = rsync.DefaultAlgorithms
	}

	seed, err := c.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("reading checksum seed: %w", err)
	}
	res.Seed = seed
	return res, nil
}

// Server performs the server side of the handshake. seed is supplied by
// the caller (normally a process-wide RNG per spec.md §9 "Global state":
// "the only truly global state is a process-wide RNG for seed
// generation").
func Server(c *rsyncwire.Conn, localMax int32, seed int32) (*Result, error) {
	v, err := negotiateVersion(c, localMax)
	if err != nil {
		return nil, err
	}
	res := &Result{Version: v}

	if v >= 30 {
		// CompatFlags exchange is unidirectional: server writes, client
		// reads. Never attempt to read a response (spec.md §9).
		compat := rsync.CompatIncRecurse | rsync.CompatSafeFList | rsync.CompatVarintFlistFlags
		if err := c.WriteCompatFlags(compat); err != nil {
			return nil, fmt.Errorf("writing compat flags: %w", err)
		}
		res.Compat = compat

		if err := c.WriteString(joinNames(ServerChecksums)); err != nil {
			return nil, fmt.Errorf("writing checksum list: %w", err)
		}
		if err := c.WriteString(joinNames(ServerCompressions)); err != nil {
			return nil, fmt.Errorf("writing compression list: %w", err)
		}

		chosenChecksum, err := c.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading chosen checksum: %w", err)
		}
		chosenCompression, err := c.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading chosen compression: %w", err)
		}
		checksum, ok := parseChecksum(chosenChecksum)
		if !ok {
			return nil, fmt.Errorf("%w: client chose unknown checksum %q", rsync.ErrNegotiationFailed, chosenChecksum)
		}
		compression, ok := parseCompression(chosenCompression)
		if !ok {
			return nil, fmt.Errorf("%w: client chose unknown compression %q", rsync.ErrNegotiationFailed, chosenCompression)
		}
		res.Algorithms = rsync.Algorithms{Checksum: checksum, Compression: compression}
	} else {
		res.Algorithms = rsync.DefaultAlgorithms
	}

	if err := c.WriteInt32(seed); err != nil {
		return nil, fmt.Errorf("writing checksum seed: %w", err)
	}
	res.Seed = seed
	return res, nil
}
