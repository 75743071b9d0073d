package rsyncwire

// WriteFileSize dispatches to varlong (protocol >= 30) or WriteInt64 (a
// 32-bit integer, or -1 followed by the full 64-bit value; protocol < 30),
// per spec.md §4.1
// write_file_size.
func (c *Conn) WriteFileSize(protocol int32, size int64) error {
	if protocol >= 30 {
		return c.WriteVarlong(size, 3)
	}
	return c.WriteInt64(size)
}

func (c *Conn) ReadFileSize(protocol int32) (int64, error) {
	if protocol >= 30 {
		return c.ReadVarlong(3)
	}
	return c.ReadInt64()
}
