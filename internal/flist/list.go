package flist

import (
	"sort"
	"strings"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

// Sort orders entries lexicographically by name, with directories sorted
// alongside their contents (spec.md §4.4), matching the ordering the
// receiver's NDX assignment depends on.
func Sort(files []*rsync.File) {
	sort.SliceStable(files, func(i, j int) bool {
		// '/' compares lowest so "a/b" sorts before "a-b" and "a.txt".
		return strings.ReplaceAll(files[i].Name, "/", "\x00") < strings.ReplaceAll(files[j].Name, "/", "\x00")
	})
}

// WriteList writes an entire batch FileList followed by the end-of-list
// marker (spec.md §4.4 "batch: whole tree up front").
func WriteList(c *rsyncwire.Conn, protocol int32, varintFlags bool, files []*rsync.File) error {
	enc := NewEncoder(c, protocol, varintFlags)
	for _, f := range files {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return enc.End()
}

// ReadList reads a complete batch FileList up to its end-of-list marker.
func ReadList(c *rsyncwire.Conn, protocol int32, varintFlags bool) (rsync.FileList, error) {
	dec := NewDecoder(c, protocol, varintFlags)
	var out rsync.FileList
	for {
		f, ok, err := dec.Decode()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, f)
	}
}

// WriteSubList writes an incremental sub-list segment for a single
// directory (spec.md §4.7 "sub-lists streamed on demand"). It always
// starts a fresh running-state segment: incremental segments do not
// inherit name/mode/time elision state from the parent list.
func WriteSubList(c *rsyncwire.Conn, protocol int32, varintFlags bool, entries []*rsync.File) error {
	return WriteList(c, protocol, varintFlags, entries)
}

// ReadSubList mirrors WriteSubList.
func ReadSubList(c *rsyncwire.Conn, protocol int32, varintFlags bool) (rsync.FileList, error) {
	return ReadList(c, protocol, varintFlags)
}

// SplitTopLevel partitions a fully-walked tree into the initial top-level
// segment (immediate children of the transfer root) and the remaining
// entries grouped by their parent directory, for incremental-recursion
// mode where sub-lists are handed out on demand as the receiver's NDX
// cursor walks into each directory.
func SplitTopLevel(all []*rsync.File) (top []*rsync.File, byDir map[string][]*rsync.File) {
	byDir = make(map[string][]*rsync.File)
	for _, f := range all {
		dir := parentDir(f.Name)
		if dir == "" {
			top = append(top, f)
			continue
		}
		byDir[dir] = append(byDir[dir], f)
	}
	return top, byDir
}

func parentDir(name string) string {
	name = strings.TrimSuffix(name, "/")
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return ""
	}
	return name[:i]
}
