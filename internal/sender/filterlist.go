package sender

import (
	"io"

	"github.com/syncwire/rsync/internal/rsyncwire"
)

// FilterList holds the exclusion/filter rules the receiving side sends
// immediately after connection setup (spec.md §6's "server always
// receives" exclusion list; openrsync and this implementation alike send
// an empty list when no filters are configured).
type FilterList struct {
	Filters []string
}

// RecvFilterList reads a sequence of length-prefixed filter rule strings,
// terminated by a zero-length entry, matching the varint-length
// convention internal/rsyncwire already uses for on-wire strings
// elsewhere in the protocol.
func RecvFilterList(c *rsyncwire.Conn) (*FilterList, error) {
	var fl FilterList
	for {
		n, err := c.ReadVarint()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return &fl, nil
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(c.Reader, buf); err != nil {
			return nil, err
		}
		fl.Filters = append(fl.Filters, string(buf))
	}
}
