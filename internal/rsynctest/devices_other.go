//go:build !linux

package rsynctest

import "testing"

func CreateDummyDeviceFiles(t *testing.T, dir string) {
	t.Helper()
	t.Skip("device node creation only implemented on linux")
}

func VerifyDummyDeviceFiles(t *testing.T, src, dest string) {
	t.Helper()
	t.Skip("device node creation only implemented on linux")
}
