package rsyncdelta

import (
	"hash"
	"io"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsynchash"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Generate slides a window of the signature's block length across src and
// emits a token stream to c: matched blocks as BlockMatch tokens, unmatched
// bytes as chunked Literal tokens, followed by End and the whole-file
// strong hash of src (spec.md §4.6 "Sender").
//
// Grounded on the weak-hash-indexed sliding window search in the mutagen
// rsync engine (Deltafy) found in the retrieval pack's other_examples,
// adapted to emit rsync's own Literal/BlockMatch/End token union instead
// of mutagen's coalesced Operation stream, and to use the negotiated
// block size and strong-hash algorithm rather than re-deriving either.
func Generate(c *rsyncwire.Conn, src io.Reader, sig *rsynchash.Signature, alg rsync.Checksum, seed int32, seedFix bool) error {
	whole := rsynchash.NewStrongHash(alg, seed, seedFix)

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	if len(sig.Blocks) == 0 {
		if err := sendLiteralRun(c, data, whole); err != nil {
			return err
		}
		if err := writeEnd(c); err != nil {
			return err
		}
		return writeWholeSum(c, whole)
	}

	index := rsynchash.NewIndex(sig)
	blockLen := int(sig.BlockLength)

	var literalStart, pos int
	winLen := blockLen
	if winLen > len(data) {
		winLen = len(data)
	}
	var roll rsynchash.Rolling
	if winLen > 0 {
		roll = rsynchash.NewRolling(data[pos : pos+winLen])
	}

	for pos < len(data) {
		window := data[pos : pos+winLen]
		if idx, ok := tryMatch(window, roll, index, alg, seed, seedFix); ok {
			if err := flush(c, data[literalStart:pos], whole); err != nil {
				return err
			}
			if _, err := whole.Write(window); err != nil {
				return err
			}
			if err := writeMatch(c, idx); err != nil {
				return err
			}
			pos += winLen
			literalStart = pos
			if pos >= len(data) {
				break
			}
			winLen = blockLen
			if winLen > len(data)-pos {
				winLen = len(data) - pos
			}
			roll = rsynchash.NewRolling(data[pos : pos+winLen])
			continue
		}

		if pos+winLen >= len(data) {
			// Window already touches EOF and didn't match; nothing left to
			// roll into, so the remaining bytes become trailing literal.
			break
		}
		roll = roll.Roll(data[pos], data[pos+winLen], uint32(winLen))
		pos++
	}

	if err := flush(c, data[literalStart:], whole); err != nil {
		return err
	}
	if err := writeEnd(c); err != nil {
		return err
	}
	return writeWholeSum(c, whole)
}

// tryMatch verifies weak-hash candidates with the seeded strong hash,
// truncated to the signature's negotiated checksum length, against the
// current window.
func tryMatch(window []byte, roll rsynchash.Rolling, index *rsynchash.Index, alg rsync.Checksum, seed int32, seedFix bool) (int32, bool) {
	for _, cand := range index.Candidates(roll.Value()) {
		if int(cand.Length) != len(window) {
			continue
		}
		strong := rsynchash.NewStrongHash(alg, seed, seedFix)
		strong.Write(window)
		sum := strong.Sum(nil)
		if len(sum) > len(cand.Strong) {
			sum = sum[:len(cand.Strong)]
		}
		if bytesEqual(sum, cand.Strong) {
			return cand.Index, true
		}
	}
	return 0, false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// flush writes a run of unmatched bytes as one or more chunked Literal
// tokens, feeding the same bytes into the running whole-file hash.
func flush(c *rsyncwire.Conn, run []byte, whole hash.Hash) error {
	if len(run) == 0 {
		return nil
	}
	return sendLiteralRun(c, run, whole)
}

func sendLiteralRun(c *rsyncwire.Conn, data []byte, whole hash.Hash) error {
	if _, err := whole.Write(data); err != nil {
		return err
	}
	return writeLiteral(c, data)
}

func writeWholeSum(c *rsyncwire.Conn, whole hash.Hash) error {
	_, err := c.Writer.Write(whole.Sum(nil))
	return err
}
