package flist

import (
	"fmt"
	"io"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// state is the per-list running "last seen" state the decoder (and,
// symmetrically, the encoder) maintains across a single batch list or a
// single incremental sub-list segment (spec.md §4.4). It resets at the
// start of every new segment.
type state struct {
	lastName  string
	lastMode  int32
	lastMTime int64
	lastUID   int32
	lastGID   int32
}

// Encoder writes a sequence of FileEntry records terminated by a single
// zero flags byte (spec.md §4.4 "End of a list ... a single zero
// flags_byte").
type Encoder struct {
	c        *rsyncwire.Conn
	protocol int32
	varint   bool
	st       state
}

func NewEncoder(c *rsyncwire.Conn, protocol int32, varintFlags bool) *Encoder {
	return &Encoder{c: c, protocol: protocol, varint: varintFlags}
}

func (e *Encoder) writeFlags(f Flag) error {
	if e.varint {
		return e.c.WriteVarint(int32(f))
	}
	if f <= 0xFF {
		return e.c.WriteByte(byte(f))
	}
	if err := e.c.WriteByte(byte(f&0xFF) | byte(FlagExtended)); err != nil {
		return err
	}
	return e.c.WriteByte(byte(f >> 8))
}

// Encode writes one FileEntry, eliding fields redundant with the running
// state and updating that state for the next call.
func (e *Encoder) Encode(f *rsync.File) error {
	var flags Flag

	if f.Name == "." {
		flags |= FlagTopDir
	}
	if f.IsDir() {
		flags |= FlagIsDir
	}
	if f.IsSymlink() {
		flags |= FlagIsSymlink
	}
	if f.IsDevice() || f.IsSpecial() {
		flags |= FlagHasDevice
	}
	if f.HardlinkKey != 0 {
		flags |= FlagHasHardlink
	}

	sameMode := f.Mode == e.st.lastMode
	if sameMode {
		flags |= FlagSameMode
	}
	sameTime := f.ModTime == e.st.lastMTime
	if sameTime {
		flags |= FlagSameTime
	}
	sameUID := f.HaveUid && f.Uid == e.st.lastUID
	if sameUID {
		flags |= FlagSameUID
	}
	sameGID := f.HaveGid && f.Gid == e.st.lastGID
	if sameGID {
		flags |= FlagSameGID
	}

	prefixLen := commonPrefixLen(e.st.lastName, f.Name)
	suffix := f.Name[prefixLen:]
	if prefixLen > 0 {
		flags |= FlagSameName
	}
	if len(suffix) > 0xFF {
		flags |= FlagLongName
	}

	if flags == 0 {
		// A flags value of zero would read as end-of-list; set LONG_NAME,
		// which only switches the suffix length to a varint, so the entry
		// stays decodable.
		flags |= FlagLongName
	}

	if err := e.writeFlags(flags); err != nil {
		return err
	}

	if flags.Has(FlagSameName) {
		if err := e.c.WriteByte(byte(prefixLen)); err != nil {
			return err
		}
	}
	if flags.Has(FlagLongName) {
		if err := e.c.WriteVarint(int32(len(suffix))); err != nil {
			return err
		}
	} else {
		if err := e.c.WriteByte(byte(len(suffix))); err != nil {
			return err
		}
	}
	if _, err := e.c.Writer.Write([]byte(suffix)); err != nil {
		return err
	}

	if err := e.c.WriteFileSize(e.protocol, f.Size); err != nil {
		return err
	}

	if !sameTime {
		if err := e.c.WriteInt64(f.ModTime); err != nil {
			return err
		}
	}
	if !sameMode {
		if err := e.c.WriteInt32(f.Mode); err != nil {
			return err
		}
	}
	if f.HaveUid && !sameUID {
		if err := e.c.WriteInt32(f.Uid); err != nil {
			return err
		}
	}
	if f.HaveGid && !sameGID {
		if err := e.c.WriteInt32(f.Gid); err != nil {
			return err
		}
	}
	if flags.Has(FlagIsSymlink) {
		if err := e.c.WriteString(f.LinkTarget); err != nil {
			return err
		}
	}
	if flags.Has(FlagHasDevice) {
		if err := e.c.WriteInt64(f.Device); err != nil {
			return err
		}
	}
	if flags.Has(FlagHasHardlink) {
		if err := e.c.WriteVarint(f.HardlinkKey); err != nil {
			return err
		}
	}

	e.st.lastName = f.Name
	if !sameMode {
		e.st.lastMode = f.Mode
	}
	if !sameTime {
		e.st.lastMTime = f.ModTime
	}
	if f.HaveUid && !sameUID {
		e.st.lastUID = f.Uid
	}
	if f.HaveGid && !sameGID {
		e.st.lastGID = f.Gid
	}
	return nil
}

// End writes the zero-flags end-of-list marker.
func (e *Encoder) End() error {
	return e.writeFlags(0)
}

// Decoder reads FileEntry records until End-of-list.
type Decoder struct {
	c        *rsyncwire.Conn
	protocol int32
	varint   bool
	st       state
}

func NewDecoder(c *rsyncwire.Conn, protocol int32, varintFlags bool) *Decoder {
	return &Decoder{c: c, protocol: protocol, varint: varintFlags}
}

func (d *Decoder) readFlags() (Flag, error) {
	if d.varint {
		v, err := d.c.ReadVarint()
		return Flag(v), err
	}
	b, err := d.c.ReadByte()
	if err != nil {
		return 0, err
	}
	flags := Flag(b)
	if flags.Has(FlagExtended) {
		b2, err := d.c.ReadByte()
		if err != nil {
			return 0, err
		}
		flags = (flags &^ FlagExtended) | Flag(b2)<<8
	}
	return flags, nil
}

// Decode reads the next entry. ok is false (with a nil error) at
// end-of-list.
func (d *Decoder) Decode() (f *rsync.File, ok bool, err error) {
	flags, err := d.readFlags()
	if err != nil {
		return nil, false, err
	}
	if flags == 0 {
		return nil, false, nil
	}

	var prefixLen int
	if flags.Has(FlagSameName) {
		b, err := d.c.ReadByte()
		if err != nil {
			return nil, false, err
		}
		prefixLen = int(b)
		if prefixLen > len(d.st.lastName) {
			return nil, false, fmt.Errorf("%w: name prefix length %d exceeds previous name length %d",
				rsync.ErrProtocol, prefixLen, len(d.st.lastName))
		}
	}

	var suffixLen int32
	if flags.Has(FlagLongName) {
		suffixLen, err = d.c.ReadVarint()
		if err != nil {
			return nil, false, err
		}
	} else {
		b, err := d.c.ReadByte()
		if err != nil {
			return nil, false, err
		}
		suffixLen = int32(b)
	}
	suffix := make([]byte, suffixLen)
	if suffixLen > 0 {
		if _, err := io.ReadFull(d.c.Reader, suffix); err != nil {
			return nil, false, err
		}
	}
	name := d.st.lastName[:prefixLen] + string(suffix)

	size, err := d.c.ReadFileSize(d.protocol)
	if err != nil {
		return nil, false, err
	}

	mtime := d.st.lastMTime
	if !flags.Has(FlagSameTime) {
		mtime, err = d.c.ReadInt64()
		if err != nil {
			return nil, false, err
		}
	}
	mode := d.st.lastMode
	if !flags.Has(FlagSameMode) {
		m, err := d.c.ReadInt32()
		if err != nil {
			return nil, false, err
		}
		mode = m
	}

	entry := &rsync.File{Name: name, Mode: mode, Size: size, ModTime: mtime}

	if flags.Has(FlagSameUID) {
		entry.Uid = d.st.lastUID
		entry.HaveUid = true
	} else {
		uid, err := d.c.ReadInt32()
		if err != nil {
			return nil, false, err
		}
		entry.Uid = uid
		entry.HaveUid = true
	}
	if flags.Has(FlagSameGID) {
		entry.Gid = d.st.lastGID
		entry.HaveGid = true
	} else {
		gid, err := d.c.ReadInt32()
		if err != nil {
			return nil, false, err
		}
		entry.Gid = gid
		entry.HaveGid = true
	}
	if flags.Has(FlagIsSymlink) {
		target, err := d.c.ReadString()
		if err != nil {
			return nil, false, err
		}
		entry.LinkTarget = target
	}
	if flags.Has(FlagHasDevice) {
		dev, err := d.c.ReadInt64()
		if err != nil {
			return nil, false, err
		}
		entry.Device = dev
	}
	if flags.Has(FlagHasHardlink) {
		key, err := d.c.ReadVarint()
		if err != nil {
			return nil, false, err
		}
		entry.HardlinkKey = key
	}
	if flags.Has(FlagIsDir) {
		entry.Mode |= 0o040000
	}

	d.st.lastName = name
	d.st.lastMode = mode
	d.st.lastMTime = mtime
	if entry.HaveUid {
		d.st.lastUID = entry.Uid
	}
	if entry.HaveGid {
		d.st.lastGID = entry.Gid
	}

	return entry, true, nil
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	// The shared prefix is counted in bytes and capped at what a single
	// byte can express.
	if i > 0xFF {
		i = 0xFF
	}
	return i
}
