package rsynchash

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/mmcloughlin/md4"
	"github.com/syncwire/rsync"
)

// NewStrongHash returns a fresh hash.Hash for the negotiated checksum
// algorithm, pre-seeded with seed per spec.md §4.5 ("strong hash ...
// seeded with the session seed") and §4.3 step 4. CHKSUM_SEED_FIX
// (compat>=31) changes the byte order the seed is fed in; see
// feedSeed below.
func NewStrongHash(alg rsync.Checksum, seed int32, seedFix bool) hash.Hash {
	var h hash.Hash
	switch alg {
	case rsync.ChecksumMD5:
		h = md5.New()
	case rsync.ChecksumSHA1:
		h = sha1.New()
	case rsync.ChecksumXXH64:
		h = xxhash.New()
	case rsync.ChecksumMD4:
		fallthrough
	default:
		h = md4.New()
	}
	feedSeed(h, seed, seedFix)
	return h
}

// feedSeed mixes the session's checksum seed into a freshly constructed
// strong hash. Pre-CHKSUM_SEED_FIX (protocol < 31 behavior, or compat
// flag unset) feeds the seed as little-endian bytes before any file data,
// matching internal/receiver/receiver.go's
// `binary.Write(h, binary.LittleEndian, rt.Seed)`. CHKSUM_SEED_FIX
// (spec.md §3 CompatFlags) instead feeds the seed as big-endian bytes,
// per the documented (but not independently re-derived here) upstream
// fix.
func feedSeed(h hash.Hash, seed int32, seedFix bool) {
	var buf [4]byte
	if seedFix {
		binary.BigEndian.PutUint32(buf[:], uint32(seed))
	} else {
		binary.LittleEndian.PutUint32(buf[:], uint32(seed))
	}
	h.Write(buf[:])
}

// StrongLength returns the truncation length L (spec.md §4.5, "strong
// hash truncated to L bytes") for the given file size and negotiated
// checksum, scaled the way upstream documents: L grows with file size
// (more data -> more confidence needed to avoid a false block match) but
// never exceeds the algorithm's native digest size, and is never less
// than 2.
func StrongLength(alg rsync.Checksum, fileSize int64) int {
	native := nativeLength(alg)
	l := 2
	switch {
	case fileSize > 1<<30:
		l = native
	case fileSize > 1<<24:
		l = native - 2
	case fileSize > 1<<16:
		l = native - 4
	default:
		l = native - 8
	}
	if l < 2 {
		l = 2
	}
	if l > native {
		l = native
	}
	return l
}

func nativeLength(alg rsync.Checksum) int {
	switch alg {
	case rsync.ChecksumMD5:
		return md5.Size
	case rsync.ChecksumSHA1:
		return sha1.Size
	case rsync.ChecksumXXH64:
		return 8
	case rsync.ChecksumMD4:
		fallthrough
	default:
		return 16
	}
}
