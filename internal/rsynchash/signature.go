package rsynchash

import (
	"io"
	"math"

	"github.com/syncwire/rsync"
)

// BlockHash is a single signature record: the rolling checksum and the
// (possibly truncated) strong hash of one block.
type BlockHash struct {
	Index    int32
	Rolling  uint32
	Strong   []byte
	// Length is the number of bytes this block actually covers; equal to
	// the signature's BlockLength for every block but the last, which may
	// be shorter (spec.md §4.5 "tail block").
	Length int32
}

// Signature is the full block-indexed checksum summary of a file
// (spec.md §3 Signature, §4.5).
type Signature struct {
	rsync.SumHead
	Blocks []BlockHash
}

// ChooseBlockLength picks the block size b for a file of the given size,
// per spec.md §4.5: b ≈ sqrt(size), rounded into [700, 131072], a
// multiple of 8. Grounded on the teacher prototype's sumSizesSqroot
// (internal/rsyncd/rsyncd.go), generalized to the full bounded range.
func ChooseBlockLength(fileSize int64) int32 {
	b := int32(math.Sqrt(float64(fileSize)))
	if b < rsync.MinBlockSize {
		b = rsync.MinBlockSize
	}
	if b > rsync.MaxBlockSize {
		b = rsync.MaxBlockSize
	}
	// Round to a multiple of 8.
	b = (b + 7) &^ 7
	if b > rsync.MaxBlockSize {
		b -= 8
	}
	return b
}

// Make constructs a Signature by reading r (the basis file contents, or
// an empty reader when no basis exists, in which case Make returns a
// Signature with zero blocks per spec.md §4.5 "if no destination exists,
// block_count = 0").
func Make(r io.Reader, fileSize int64, alg rsync.Checksum, seed int32, seedFix bool) (*Signature, error) {
	blockLen := ChooseBlockLength(fileSize)
	strongLen := StrongLength(alg, fileSize)
	if int(blockLen) < strongLen {
		// spec.md §4.6 edge-case policy (ii): block size smaller than
		// checksum length is rejected at signature parse; here at
		// construction time we simply clamp, since we are the producer.
		strongLen = int(blockLen)
	}

	sig := &Signature{}
	buf := make([]byte, blockLen)
	var idx int32
	var remainder int32
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			block := buf[:n]
			h := NewStrongHash(alg, seed, seedFix)
			h.Write(block)
			strong := h.Sum(nil)[:strongLen]
			sig.Blocks = append(sig.Blocks, BlockHash{
				Index:   idx,
				Rolling: NewRolling(block).Value(),
				Strong:  append([]byte(nil), strong...),
				Length:  int32(n),
			})
			if n < int(blockLen) {
				remainder = int32(n)
			}
			idx++
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	sig.SumHead = rsync.SumHead{
		ChecksumCount:   int32(len(sig.Blocks)),
		BlockLength:     blockLen,
		ChecksumLength:  int32(strongLen),
		RemainderLength: remainder,
	}
	return sig, nil
}

// Index builds a lookup structure keyed by the first-level rolling
// checksum, with collision chains carrying the full BlockHash (spec.md
// §4.6 sender step 1: "Build a hash index keyed by the first-level
// rolling checksum, with collision chains carrying strong hashes and
// block indices").
type Index struct {
	buckets map[uint32][]BlockHash
}

func NewIndex(sig *Signature) *Index {
	idx := &Index{buckets: make(map[uint32][]BlockHash, len(sig.Blocks))}
	for _, b := range sig.Blocks {
		idx.buckets[b.Rolling] = append(idx.buckets[b.Rolling], b)
	}
	return idx
}

// Candidates returns the blocks whose rolling checksum equals rolling;
// the caller must still verify with the strong hash before accepting a
// match (spec.md §4.6 step 2: "on a hit, verify with the strong hash").
func (idx *Index) Candidates(rolling uint32) []BlockHash {
	return idx.buckets[rolling]
}
