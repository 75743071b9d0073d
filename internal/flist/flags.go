// Package flist implements C4: encoding and decoding FileEntry records in
// both batch (entire list up front) and incremental (top-level first,
// sub-lists streamed on demand) modes, per spec.md §4.4.
package flist

// Flag is the per-entry transmission flags bitset (spec.md §4.4). Bit
// layout mirrors the reference implementation's XMIT_* constants closely
// enough to make the "elide redundant fields relative to the previous
// entry" behavior unambiguous, without chasing every legacy sub-variant
// upstream accumulated across protocol revisions.
type Flag uint16

const (
	FlagTopDir           Flag = 0x0001 // matching local directory is for deletions
	FlagSameMode         Flag = 0x0002 // repeat of the previous entry's mode
	FlagExtended         Flag = 0x0004 // a second flags byte follows (non-varint wire only)
	FlagSameUID          Flag = 0x0008
	FlagSameGID          Flag = 0x0010
	FlagSameName         Flag = 0x0020 // inherits a shared prefix from the previous name
	FlagLongName         Flag = 0x0040 // full varint/int length instead of single byte
	FlagSameTime         Flag = 0x0080
	FlagHasDevice        Flag = 0x0100 // device/special file: rdev follows
	FlagIsDir            Flag = 0x0200
	FlagIsSymlink        Flag = 0x0400
	FlagHasHardlink      Flag = 0x0800
	FlagDirNextEntry     Flag = 0x1000 // incremental recursion: more entries follow for this dir
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }
