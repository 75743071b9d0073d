package rsynchash

import (
	"io"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// WriteTo writes the signature header followed by its block records, per
// spec.md §4.5: "block_count:i32 | block_size:i32 | checksum_length:i32 |
// remainder:i32" followed by block_count records of
// {rolling_u32, strong_hash[L]}.
func (s *Signature) WriteTo(c *rsyncwire.Conn) error {
	if err := rsyncwire.WriteSumHead(c, s.SumHead); err != nil {
		return err
	}
	for _, b := range s.Blocks {
		if err := c.WriteInt32(int32(b.Rolling)); err != nil {
			return err
		}
		if _, err := c.Writer.Write(b.Strong); err != nil {
			return err
		}
	}
	return nil
}

// ReadSignature reads a Signature previously written by WriteTo.
func ReadSignature(c *rsyncwire.Conn) (*Signature, error) {
	sh, err := rsyncwire.ReadSumHead(c)
	if err != nil {
		return nil, err
	}
	if sh.ChecksumCount < 0 {
		return nil, rsync.ErrProtocol
	}
	if sh.ChecksumCount > 0 && sh.BlockLength < sh.ChecksumLength {
		// spec.md §4.6 edge-case policy (ii).
		return nil, rsync.ErrProtocol
	}
	sig := &Signature{SumHead: sh}
	for i := int32(0); i < sh.ChecksumCount; i++ {
		rolling, err := c.ReadInt32()
		if err != nil {
			return nil, err
		}
		strong := make([]byte, sh.ChecksumLength)
		if _, err := io.ReadFull(c.Reader, strong); err != nil {
			return nil, err
		}
		length := sh.BlockLength
		if i == sh.ChecksumCount-1 && sh.RemainderLength != 0 {
			length = sh.RemainderLength
		}
		sig.Blocks = append(sig.Blocks, BlockHash{
			Index:   i,
			Rolling: uint32(rolling),
			Strong:  strong,
			Length:  length,
		})
	}
	return sig, nil
}
