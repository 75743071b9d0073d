// Package rsyncdelta implements C6: sender-side token-stream generation
// from a signature and a source file, and receiver-side token application
// to reconstruct the destination from a basis file plus the token stream.
package rsyncdelta

import (
	"io"

	"github.com/syncwire/rsync/internal/rsyncwire"
)

// literalChunk bounds a single Literal token's payload (spec.md §4.6 step
// 3 "chunk size target 16 KiB; bounded by frame size").
const literalChunk = 16 * 1024

// writeToken writes one wire token. A positive n is a literal of n bytes
// (data must be exactly that long); n == 0 is the end sentinel; n < 0
// encodes a basis-block match for block index -(n+1), matching the
// negative-token convention the receiver side expects.
func writeToken(c *rsyncwire.Conn, n int32, data []byte) error {
	if err := c.WriteInt32(n); err != nil {
		return err
	}
	if n > 0 {
		_, err := c.Writer.Write(data)
		return err
	}
	return nil
}

func writeLiteral(c *rsyncwire.Conn, data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > literalChunk {
			n = literalChunk
		}
		if err := writeToken(c, int32(n), data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func writeMatch(c *rsyncwire.Conn, blockIndex int32) error {
	return writeToken(c, -(blockIndex + 1), nil)
}

func writeEnd(c *rsyncwire.Conn) error {
	return writeToken(c, 0, nil)
}

// readToken reads one token. token == 0 signals end of stream; token > 0
// means data holds that many literal bytes; token < 0 means
// -(token+1) is the matched basis block index and data is nil.
func readToken(c *rsyncwire.Conn) (token int32, data []byte, err error) {
	token, err = c.ReadInt32()
	if err != nil {
		return 0, nil, err
	}
	if token <= 0 {
		return token, nil, nil
	}
	buf := make([]byte, token)
	if _, err := io.ReadFull(c.Reader, buf); err != nil {
		return 0, nil, err
	}
	return token, buf, nil
}
