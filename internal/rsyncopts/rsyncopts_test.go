package rsyncopts_test

import (
	"errors"
	"io"
	"testing"

	"github.com/syncwire/rsync/internal/rsyncopts"
	"github.com/syncwire/rsync/internal/rsyncos"
)

func parse(t *testing.T, args ...string) *rsyncopts.Context {
	t.Helper()
	osenv := &rsyncos.Env{Stderr: io.Discard}
	pc, err := rsyncopts.ParseArguments(osenv, args)
	if err != nil {
		t.Fatalf("ParseArguments(%q) = %v", args, err)
	}
	return pc
}

func TestArchiveFlagSetsExpectedFields(t *testing.T) {
	pc := parse(t, "-a", "src", "dst")
	opts := pc.Options
	for name, got := range map[string]bool{
		"PreserveLinks":  opts.PreserveLinks(),
		"PreservePerms":  opts.PreservePerms(),
		"PreserveMTimes": opts.PreserveMTimes(),
		"PreserveGid":    opts.PreserveGid(),
		"Recurse":        opts.Recurse(),
	} {
		if !got {
			t.Errorf("opts.%s() = false, want true after -a", name)
		}
	}
	if got, want := pc.RemainingArgs, []string{"src", "dst"}; !equalStrings(got, want) {
		t.Errorf("RemainingArgs = %q, want %q", got, want)
	}
}

func TestClusteredShortOptions(t *testing.T) {
	pc := parse(t, "-av", "src", "dst")
	opts := pc.Options
	if !opts.PreserveLinks() {
		t.Error("PreserveLinks() = false, want true from clustered -av")
	}
	if !opts.Verbose() {
		t.Error("Verbose() = false, want true from clustered -av")
	}
}

func TestLongOptionValNoArg(t *testing.T) {
	pc := parse(t, "--delete", "src", "dst")
	if !pc.Options.DeleteMode() {
		t.Error("DeleteMode() = false, want true after --delete")
	}
}

func TestLongOptionWithInlineIntValue(t *testing.T) {
	pc := parse(t, "--contimeout=30", "src", "dst")
	if got, want := pc.Options.ConnectTimeoutSeconds(), 30; got != want {
		t.Errorf("ConnectTimeoutSeconds() = %d, want %d", got, want)
	}
}

func TestLongOptionWithSeparateIntValue(t *testing.T) {
	pc := parse(t, "--contimeout", "45", "src", "dst")
	if got, want := pc.Options.ConnectTimeoutSeconds(), 45; got != want {
		t.Errorf("ConnectTimeoutSeconds() = %d, want %d", got, want)
	}
}

func TestServerSenderFlags(t *testing.T) {
	pc := parse(t, "--server", "--sender", "-a", ".", "src")
	opts := pc.Options
	if !opts.Server() {
		t.Error("Server() = false, want true")
	}
	if !opts.Sender() {
		t.Error("Sender() = false, want true")
	}
}

func TestSenderWithoutServerRejected(t *testing.T) {
	osenv := &rsyncos.Env{Stderr: io.Discard}
	_, err := rsyncopts.ParseArguments(osenv, []string{"--sender", "-a", ".", "src"})
	if err == nil {
		t.Fatal("ParseArguments(--sender without --server) = nil error, want error")
	}
}

func TestDoubleDashStopsOptionParsing(t *testing.T) {
	pc := parse(t, "-a", "--", "-v", "dst")
	if pc.Options.Verbose() {
		t.Error("Verbose() = true, want false: -v after -- must be a positional argument")
	}
	if got, want := pc.RemainingArgs, []string{"-v", "dst"}; !equalStrings(got, want) {
		t.Errorf("RemainingArgs = %q, want %q", got, want)
	}
}

func TestUnknownLongOptionIsBadOpt(t *testing.T) {
	osenv := &rsyncos.Env{Stderr: io.Discard}
	_, err := rsyncopts.ParseArguments(osenv, []string{"--not-a-real-flag"})
	var pe *rsyncopts.PoptError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseArguments(--not-a-real-flag) error = %v, want *PoptError", err)
	}
	if pe.Errno != rsyncopts.POPT_ERROR_BADOPT {
		t.Errorf("PoptError.Errno = %v, want POPT_ERROR_BADOPT", pe.Errno)
	}
	if pe.Option != "--not-a-real-flag" {
		t.Errorf("PoptError.Option = %q, want %q", pe.Option, "--not-a-real-flag")
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	osenv := &rsyncos.Env{Stderr: io.Discard}
	_, err := rsyncopts.ParseArguments(osenv, []string{"--contimeout"})
	var pe *rsyncopts.PoptError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseArguments(--contimeout with no value) error = %v, want *PoptError", err)
	}
	if pe.Errno != rsyncopts.POPT_ERROR_NOARG {
		t.Errorf("PoptError.Errno = %v, want POPT_ERROR_NOARG", pe.Errno)
	}
}

func TestBadNumericArgument(t *testing.T) {
	osenv := &rsyncos.Env{Stderr: io.Discard}
	_, err := rsyncopts.ParseArguments(osenv, []string{"--contimeout=notanumber"})
	var pe *rsyncopts.PoptError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseArguments(--contimeout=notanumber) error = %v, want *PoptError", err)
	}
	if pe.Errno != rsyncopts.POPT_ERROR_BADNUMBER {
		t.Errorf("PoptError.Errno = %v, want POPT_ERROR_BADNUMBER", pe.Errno)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
