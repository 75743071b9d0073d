//go:build linux

package rsynctest

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

// CreateDummyDeviceFiles creates a character and a block device node
// under dir, for tests that only run as root (device creation requires
// CAP_MKNOD) verifying that --devices/--specials round-trip device
// numbers rather than file contents.
func CreateDummyDeviceFiles(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// 1,5 is /dev/zero's major/minor; harmless to recreate.
	if err := syscall.Mknod(filepath.Join(dir, "chardev"), syscall.S_IFCHR|0600, int(mkdev(1, 5))); err != nil {
		t.Fatalf("Mknod(chardev): %v", err)
	}
	// 7,0 is loop0's major/minor.
	if err := syscall.Mknod(filepath.Join(dir, "blockdev"), syscall.S_IFBLK|0600, int(mkdev(7, 0))); err != nil {
		t.Fatalf("Mknod(blockdev): %v", err)
	}
}

// VerifyDummyDeviceFiles checks that dest contains device nodes with the
// same type and device number as the ones CreateDummyDeviceFiles wrote
// into src.
func VerifyDummyDeviceFiles(t *testing.T, src, dest string) {
	t.Helper()
	for _, name := range []string{"chardev", "blockdev"} {
		wantSt, err := os.Stat(filepath.Join(src, name))
		if err != nil {
			t.Fatal(err)
		}
		gotSt, err := os.Stat(filepath.Join(dest, name))
		if err != nil {
			t.Fatal(err)
		}
		want := wantSt.Sys().(*syscall.Stat_t)
		got := gotSt.Sys().(*syscall.Stat_t)
		if got.Mode&syscall.S_IFMT != want.Mode&syscall.S_IFMT {
			t.Errorf("%s: mode = %o, want %o", name, got.Mode&syscall.S_IFMT, want.Mode&syscall.S_IFMT)
		}
		if got.Rdev != want.Rdev {
			t.Errorf("%s: rdev = %d, want %d", name, got.Rdev, want.Rdev)
		}
	}
}

func mkdev(major, minor uint32) uint64 {
	return uint64(major)<<8 | uint64(minor)
}
