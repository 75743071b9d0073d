package rsyncauth_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/rsyncauth"
)

func writeSecrets(t *testing.T, contents string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets")
	if err := os.WriteFile(path, []byte(contents), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSecretsRejectsLoosePermissions(t *testing.T) {
	path := writeSecrets(t, "alice:hunter2\n", 0o644)
	_, err := rsyncauth.LoadSecrets(path)
	if !errors.Is(err, rsync.ErrConfigError) {
		t.Fatalf("LoadSecrets(0644) = %v, want ErrConfigError", err)
	}
}

func TestLoadSecretsParsesUserSecretLines(t *testing.T) {
	path := writeSecrets(t, "# comment\nalice:hunter2\nbob:swordfish\n", 0o600)
	secrets, err := rsyncauth.LoadSecrets(path)
	if err != nil {
		t.Fatal(err)
	}
	if secrets["alice"] != "hunter2" || secrets["bob"] != "swordfish" {
		t.Errorf("secrets = %+v, want alice/bob entries", secrets)
	}
}

func TestVerifyAcceptsCorrectResponse(t *testing.T) {
	secrets := rsyncauth.Secrets{"alice": "hunter2"}
	challenge, err := rsyncauth.NewChallenge()
	if err != nil {
		t.Fatal(err)
	}
	response := rsyncauth.Response(challenge, "hunter2")
	if err := rsyncauth.Verify(secrets, challenge, "alice", response); err != nil {
		t.Errorf("Verify() = %v, want nil", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	secrets := rsyncauth.Secrets{"alice": "hunter2"}
	challenge, err := rsyncauth.NewChallenge()
	if err != nil {
		t.Fatal(err)
	}
	response := rsyncauth.Response(challenge, "wrong-secret")
	if err := rsyncauth.Verify(secrets, challenge, "alice", response); !errors.Is(err, rsync.ErrAuthDenied) {
		t.Errorf("Verify() = %v, want ErrAuthDenied", err)
	}
}

func TestVerifyRejectsUnknownUser(t *testing.T) {
	secrets := rsyncauth.Secrets{"alice": "hunter2"}
	if err := rsyncauth.Verify(secrets, "chal", "mallory", "anything"); !errors.Is(err, rsync.ErrAuthDenied) {
		t.Errorf("Verify() = %v, want ErrAuthDenied", err)
	}
}
