package rsyncwire

import "io"

// CountingReader wraps an io.Reader, tallying bytes read so the session
// runtime can report "total bytes read" statistics and feed the bandwidth
// pacer.
type CountingReader struct {
	R         io.Reader
	BytesRead int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// CountingWriter wraps an io.Writer, tallying bytes written.
type CountingWriter struct {
	W            io.Writer
	BytesWritten int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.BytesWritten += int64(n)
	return n, err
}

// CounterPair wraps r and w with CountingReader/CountingWriter, the
// pattern used at the top of every connection handler (client, server,
// daemon) before any framing is applied.
func CounterPair(r io.Reader, w io.Writer) (*CountingReader, *CountingWriter) {
	return &CountingReader{R: r}, &CountingWriter{W: w}
}
