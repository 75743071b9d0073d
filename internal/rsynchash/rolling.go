// Package rsynchash implements C5: the rolling checksum, the negotiated
// strong-hash dispatch (MD4/MD5/SHA1/XXH64), and signature construction
// over a basis file.
package rsynchash

// rollingMod is the modulus the two-component rolling checksum reduces
// its running sums by, matching the "Adler-like pair sum" rsync itself
// uses (grounded on the mutagen rsync engine's weakHash/rollWeakHash,
// which implements the same algorithm from the rsync thesis, p.55).
const rollingMod = 1 << 16

// Rolling is the O(1)-updatable weak checksum over a sliding window.
type Rolling struct {
	a, b uint32
}

// NewRolling computes the initial rolling checksum over data.
func NewRolling(data []byte) Rolling {
	var a, b uint32
	n := uint32(len(data))
	for i, c := range data {
		a += uint32(c)
		b += (n - uint32(i)) * uint32(c)
	}
	return Rolling{a: a % rollingMod, b: b % rollingMod}
}

// Value returns the combined 32-bit rolling checksum value, as placed on
// the wire / used as the hash-index key.
func (r Rolling) Value() uint32 {
	return r.a + rollingMod*r.b
}

// Roll advances the window by one byte: out leaves the window, in enters
// it, windowLen is the (constant) window width.
func (r Rolling) Roll(out, in byte, windowLen uint32) Rolling {
	a := (r.a - uint32(out) + uint32(in)) % rollingMod
	b := (r.b - windowLen*uint32(out) + a) % rollingMod
	return Rolling{a: a, b: b}
}
