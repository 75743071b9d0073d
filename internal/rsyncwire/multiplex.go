package rsyncwire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/syncwire/rsync"
)

// MaxFrameLength is the largest payload a single multiplex frame may carry
// (2^24 - 1 bytes, spec.md §4.2); larger messages are chunked by the
// caller into multiple DATA frames.
const MaxFrameLength = 1<<24 - 1

// Flusher is implemented by *bufio.Writer; ActivateOut flushes through it
// when the underlying writer is buffered, satisfying the "flush all
// pending raw bytes" precondition of spec.md §4.2 before switching to
// framed writes.
type Flusher interface {
	Flush() error
}

// MultiplexWriter implements the out-mux half of C2: every Write is
// emitted as one or more DATA frames, each prefixed with the 4-byte
// tag|length header. Constructing a MultiplexWriter over a Conn's Writer
// *is* the activate_out() transition; callers must not keep writing to the
// unwrapped writer afterwards (invariant 2, spec.md §3).
type MultiplexWriter struct {
	Writer io.Writer
}

// ActivateOut flushes any buffered raw bytes (if w is a Flusher) and
// returns a MultiplexWriter wrapping w. Output must be activated before
// input (spec.md §4.3 ordering invariant).
func ActivateOut(w io.Writer) (*MultiplexWriter, error) {
	if f, ok := w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, err
		}
	}
	return &MultiplexWriter{Writer: w}, nil
}

func (w *MultiplexWriter) writeFrame(tag rsync.MsgTag, p []byte) error {
	if len(p) > MaxFrameLength {
		return fmt.Errorf("rsyncwire: frame payload %d exceeds max %d", len(p), MaxFrameLength)
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(tag)<<24|uint32(len(p)))
	if _, err := w.Writer.Write(hdr[:]); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	_, err := w.Writer.Write(p)
	return err
}

// Write implements io.Writer, framing p as one or more MsgData frames.
func (w *MultiplexWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		chunk := p
		if len(chunk) > MaxFrameLength {
			chunk = chunk[:MaxFrameLength]
		}
		if err := w.writeFrame(rsync.MsgData, chunk); err != nil {
			return total - len(p), err
		}
		p = p[len(chunk):]
	}
	return total, nil
}

// WriteMsg sends an out-of-band message (INFO, ERROR_XFER, WARNING, LOG,
// IO_TIMEOUT, ...), chunked the same way as data frames if it exceeds the
// per-frame limit.
func (w *MultiplexWriter) WriteMsg(tag rsync.MsgTag, p []byte) error {
	for len(p) > MaxFrameLength {
		if err := w.writeFrame(tag, p[:MaxFrameLength]); err != nil {
			return err
		}
		p = p[MaxFrameLength:]
	}
	return w.writeFrame(tag, p)
}

// OOBMessage is a decoded out-of-band frame delivered to the session
// runtime rather than to the DATA consumer.
type OOBMessage struct {
	Tag     rsync.MsgTag
	Payload []byte
}

// MultiplexReader implements the in-mux half of C2. Constructing one over
// a Conn's Reader *is* the activate_in() transition (spec.md §4.2); it
// does not flush (there is nothing to flush on the read side).
//
// Read() returns only DATA-frame payload bytes; OOB frames are handed to
// OnMessage as they are encountered and are never returned from Read().
// If OnMessage is nil, OOB frames are silently drained (their payload
// discarded), matching "a tag for an unknown message kind is logged and
// its payload drained" for callers that don't care about side-channel
// content.
type MultiplexReader struct {
	Reader    io.Reader
	OnMessage func(OOBMessage)

	remaining int
}

func (r *MultiplexReader) Read(p []byte) (int, error) {
	for {
		if r.remaining > 0 {
			toRead := len(p)
			if toRead > r.remaining {
				toRead = r.remaining
			}
			if toRead == 0 {
				return 0, nil
			}
			n, err := r.Reader.Read(p[:toRead])
			r.remaining -= n
			return n, err
		}

		var hdr [4]byte
		if _, err := io.ReadFull(r.Reader, hdr[:]); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint32(hdr[:])
		tag := rsync.MsgTag(v >> 24)
		length := int(v & 0xFFFFFF)
		if tag < rsync.MplexBase {
			return 0, fmt.Errorf("%w: multiplex header tag %d below MPLEX_BASE", rsync.ErrProtocol, tag)
		}

		if tag == rsync.MsgData {
			r.remaining = length
			continue
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r.Reader, payload); err != nil {
			return 0, err
		}
		if r.OnMessage != nil {
			r.OnMessage(OOBMessage{Tag: tag, Payload: payload})
		}
	}
}
