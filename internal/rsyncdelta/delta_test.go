package rsyncdelta_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsynchash"
	"github.com/syncwire/rsync/internal/rsyncdelta"
	"github.com/syncwire/rsync/internal/rsyncwire"
)

func transfer(t *testing.T, basisContent, srcContent []byte) []byte {
	t.Helper()
	dir := t.TempDir()

	basisPath := filepath.Join(dir, "basis")
	if basisContent != nil {
		if err := os.WriteFile(basisPath, basisContent, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	const seed = int32(12345)
	const alg = rsync.ChecksumMD5

	var sig *rsynchash.Signature
	var basisFile *os.File
	if basisContent != nil {
		f, err := os.Open(basisPath)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		basisFile = f
		sig, err = rsynchash.Make(f, int64(len(basisContent)), alg, seed, false)
		if err != nil {
			t.Fatalf("Make: %v", err)
		}
		if _, err := f.Seek(0, 0); err != nil {
			t.Fatal(err)
		}
	} else {
		sig = &rsynchash.Signature{}
	}

	var wire bytes.Buffer
	wc := &rsyncwire.Conn{Writer: &wire}
	if err := rsyncdelta.Generate(wc, bytes.NewReader(srcContent), sig, alg, seed, false); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	destPath := filepath.Join(dir, "dest")
	rc := &rsyncwire.Conn{Reader: &wire}
	if err := rsyncdelta.Apply(rc, sig.SumHead, destPath, basisFile, alg, seed, false); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestIdenticalFilesProduceAllMatches(t *testing.T) {
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)
	got := transfer(t, content, content)
	if !bytes.Equal(got, content) {
		t.Errorf("reconstructed content mismatch: got %d bytes, want %d", len(got), len(content))
	}
}

func TestAppendedBytesRoundTrip(t *testing.T) {
	basis := bytes.Repeat([]byte("abcdefgh"), 200)
	src := append(append([]byte{}, basis...), []byte("TRAILING-ADDED-DATA")...)
	got := transfer(t, basis, src)
	if !bytes.Equal(got, src) {
		t.Errorf("reconstructed content mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestNoBasisWholeFileLiteral(t *testing.T) {
	src := bytes.Repeat([]byte("fresh file content "), 50)
	got := transfer(t, nil, src)
	if !bytes.Equal(got, src) {
		t.Errorf("reconstructed content mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestEmptySourceAndBasis(t *testing.T) {
	got := transfer(t, []byte{}, []byte{})
	if len(got) != 0 {
		t.Errorf("got %d bytes, want 0", len(got))
	}
}
