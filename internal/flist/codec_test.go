package flist_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/flist"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

func roundTrip(t *testing.T, protocol int32, varintFlags bool, in []*rsync.File) rsync.FileList {
	t.Helper()
	var buf bytes.Buffer
	wc := &rsyncwire.Conn{Writer: &buf}
	if err := flist.WriteList(wc, protocol, varintFlags, in); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	rc := &rsyncwire.Conn{Reader: &buf}
	out, err := flist.ReadList(rc, protocol, varintFlags)
	if err != nil {
		t.Fatalf("ReadList: %v", err)
	}
	return out
}

func TestRoundTripBasic(t *testing.T) {
	in := []*rsync.File{
		{Name: ".", Mode: 0o40755, ModTime: 1000, Uid: 0, Gid: 0, HaveUid: true, HaveGid: true},
		{Name: "a", Mode: 0o100644, Size: 42, ModTime: 1000, Uid: 0, Gid: 0, HaveUid: true, HaveGid: true},
		{Name: "a/b", Mode: 0o100644, Size: 7, ModTime: 1001, Uid: 1000, Gid: 1000, HaveUid: true, HaveGid: true},
		{Name: "a/c", Mode: 0o100644, Size: 7, ModTime: 1001, Uid: 1000, Gid: 1000, HaveUid: true, HaveGid: true},
	}
	for _, protocol := range []int32{27, 30, 32} {
		for _, varint := range []bool{false, true} {
			out := roundTrip(t, protocol, varint, in)
			if diff := cmp.Diff(in, []*rsync.File(out)); diff != "" {
				t.Errorf("protocol=%d varint=%v: round trip mismatch (-want +got):\n%s", protocol, varint, diff)
			}
		}
	}
}

func TestRoundTripSymlinkAndDevice(t *testing.T) {
	in := []*rsync.File{
		{Name: "link", Mode: 0o120777, ModTime: 5, LinkTarget: "target", HaveUid: true, HaveGid: true},
		{Name: "dev", Mode: 0o020600, ModTime: 5, Device: 0x0103, HaveUid: true, HaveGid: true},
		{Name: "hard1", Mode: 0o100644, Size: 3, ModTime: 5, HardlinkKey: 1, HaveUid: true, HaveGid: true},
		{Name: "hard2", Mode: 0o100644, Size: 3, ModTime: 5, HardlinkKey: 1, HaveUid: true, HaveGid: true},
	}
	out := roundTrip(t, 32, true, in)
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	if out[0].LinkTarget != "target" {
		t.Errorf("LinkTarget = %q, want target", out[0].LinkTarget)
	}
	if out[1].Device != 0x0103 {
		t.Errorf("Device = %#x, want 0x103", out[1].Device)
	}
	if out[2].HardlinkKey != 1 || out[3].HardlinkKey != 1 {
		t.Errorf("hardlink keys = %d, %d, want 1, 1", out[2].HardlinkKey, out[3].HardlinkKey)
	}
}

func TestRoundTripLongNameAndSharedPrefix(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	in := []*rsync.File{
		{Name: "dir/" + string(long), Mode: 0o100644, ModTime: 1, HaveUid: true, HaveGid: true},
		{Name: "dir/" + string(long) + "y", Mode: 0o100644, ModTime: 1, HaveUid: true, HaveGid: true},
	}
	out := roundTrip(t, 32, true, in)
	for i := range in {
		if out[i].Name != in[i].Name {
			t.Errorf("entry %d: name mismatch, got len %d want len %d", i, len(out[i].Name), len(in[i].Name))
		}
	}
}

func TestEmptyListRoundTrip(t *testing.T) {
	out := roundTrip(t, 32, true, nil)
	if len(out) != 0 {
		t.Errorf("got %d entries, want 0", len(out))
	}
}

func TestSortOrdersDirectoriesWithContents(t *testing.T) {
	files := []*rsync.File{
		{Name: "b"},
		{Name: "a/z"},
		{Name: "a"},
		{Name: "a/b"},
	}
	flist.Sort(files)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"a", "a/b", "a/z", "b"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitTopLevel(t *testing.T) {
	all := []*rsync.File{
		{Name: "a"},
		{Name: "a/b"},
		{Name: "a/c"},
		{Name: "a/b/d"},
	}
	top, byDir := flist.SplitTopLevel(all)
	if len(top) != 1 || top[0].Name != "a" {
		t.Fatalf("top = %v, want [a]", top)
	}
	if len(byDir["a"]) != 2 {
		t.Errorf("byDir[a] has %d entries, want 2", len(byDir["a"]))
	}
	if len(byDir["a/b"]) != 1 {
		t.Errorf("byDir[a/b] has %d entries, want 1", len(byDir["a/b"]))
	}
}
