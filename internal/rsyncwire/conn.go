// Package rsyncwire implements the codec (C1) and multiplex framing (C2)
// layers: varint/varlong encoding, length-prefixed strings, the raw/framed
// duplex-channel toggle, and the byte-counting reader/writer wrappers used
// for bandwidth accounting and statistics.
package rsyncwire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/syncwire/rsync"
)

// Conn bundles the reader and writer halves of a session's wire
// connection. Reader/Writer are swapped out in place as the session moves
// through raw -> multiplexed mode (see MultiplexReader/MultiplexWriter)
// without the caller needing a new Conn value.
type Conn struct {
	Reader io.Reader
	Writer io.Writer
}

func (c *Conn) WriteByte(b byte) error {
	_, err := c.Writer.Write([]byte{b})
	return err
}

func (c *Conn) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(c.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (c *Conn) WriteInt32(v int32) error {
	return binary.Write(c.Writer, binary.LittleEndian, v)
}

func (c *Conn) ReadInt32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.Reader, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (c *Conn) WriteInt64(v int64) error {
	// As in the reference implementation: send as a plain 32-bit integer
	// when it fits, otherwise send a -1 sentinel followed by the full
	// 64-bit value (spec.md §4.1 write_file_size, protocol < 30 path).
	if v >= 0 && v <= 0x7FFFFFFF {
		return c.WriteInt32(int32(v))
	}
	if err := c.WriteInt32(-1); err != nil {
		return err
	}
	return binary.Write(c.Writer, binary.LittleEndian, v)
}

func (c *Conn) ReadInt64() (int64, error) {
	v, err := c.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v != -1 {
		return int64(v), nil
	}
	var buf [8]byte
	if _, err := io.ReadFull(c.Reader, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteVarint writes n (which must be non-negative) using the 1-5 byte
// high-bit-continues encoding (spec.md §4.1).
func (c *Conn) WriteVarint(n int32) error {
	if n < 0 {
		return fmt.Errorf("rsyncwire: WriteVarint: negative value %d", n)
	}
	return writeVarint(c.Writer, uint64(n))
}

func (c *Conn) ReadVarint() (int32, error) {
	v, err := readVarint(c.Reader, 5)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// WriteVarlong writes n using the variable 1-9 byte encoding used for file
// sizes on protocol >= 30 (spec.md §4.1).
func (c *Conn) WriteVarlong(n int64, minBytes int) error {
	if n < 0 {
		return fmt.Errorf("rsyncwire: WriteVarlong: negative value %d", n)
	}
	return writeVarlong(c.Writer, uint64(n), minBytes)
}

func (c *Conn) ReadVarlong(minBytes int) (int64, error) {
	v, err := readVarlong(c.Reader, minBytes)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// WriteString writes a varint-length-prefixed byte string with no NUL
// terminator (spec.md §4.1 write_string).
func (c *Conn) WriteString(s string) error {
	if err := c.WriteVarint(int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(c.Writer, s)
	return err
}

func (c *Conn) ReadString() (string, error) {
	n, err := c.ReadVarint()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: negative string length %d", rsync.ErrProtocol, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.Reader, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteCompatFlags writes the compat-flags varint (protocol >= 30 only,
// server side). Callers on protocol < 30 must not call this.
func (c *Conn) WriteCompatFlags(flags rsync.CompatFlag) error {
	return c.WriteVarint(int32(flags))
}

func (c *Conn) ReadCompatFlags() (rsync.CompatFlag, error) {
	v, err := c.ReadVarint()
	if err != nil {
		return 0, err
	}
	return rsync.CompatFlag(v), nil
}

// ReadSumHead/WriteSumHead live here (rather than in the root package)
// because they're pure wire codec.

func ReadSumHead(c *Conn) (rsync.SumHead, error) {
	var s rsync.SumHead
	var err error
	if s.ChecksumCount, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.BlockLength, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.ChecksumLength, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.RemainderLength, err = c.ReadInt32(); err != nil {
		return s, err
	}
	return s, nil
}

func WriteSumHead(c *Conn, s rsync.SumHead) error {
	if err := c.WriteInt32(s.ChecksumCount); err != nil {
		return err
	}
	if err := c.WriteInt32(s.BlockLength); err != nil {
		return err
	}
	if err := c.WriteInt32(s.ChecksumLength); err != nil {
		return err
	}
	return c.WriteInt32(s.RemainderLength)
}
