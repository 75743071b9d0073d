package rsync

import "errors"

// Error kinds per spec.md §7. Leaf components return one of these
// (wrapped with context via fmt.Errorf("...: %w", ...)); IsFatal and
// ExitCodeFor below classify them into fatal vs. per-file recoverable.
var (
	ErrVersionIncompatible = errors.New("rsync: negotiated protocol version incompatible")
	ErrNegotiationFailed   = errors.New("rsync: no common checksum or compression algorithm")
	ErrProtocol            = errors.New("rsync: protocol error")
	ErrHashMismatch        = errors.New("rsync: whole-file hash mismatch after delta application")
	ErrTimeout             = errors.New("rsync: read deadline expired")
	ErrAuthDenied          = errors.New("rsync: daemon authentication failed")
	ErrConfigError         = errors.New("rsync: daemon configuration rejected")
	ErrCancelled           = errors.New("rsync: cancelled")
)

// IsFatal reports whether err (or an error it wraps) is one of the fatal
// error kinds per spec.md §7, i.e. one that ends the session rather than
// being retried per-file.
func IsFatal(err error) bool {
	switch {
	case errors.Is(err, ErrVersionIncompatible),
		errors.Is(err, ErrNegotiationFailed),
		errors.Is(err, ErrProtocol),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrAuthDenied),
		errors.Is(err, ErrConfigError):
		return true
	default:
		return false
	}
}

// ExitCodeFor maps a classified error to the exit code described in
// spec.md §6.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrVersionIncompatible):
		return ExitHandshakeError
	case errors.Is(err, ErrNegotiationFailed):
		return ExitHandshakeError
	case errors.Is(err, ErrProtocol):
		return ExitProtocolError
	case errors.Is(err, ErrTimeout):
		return ExitTimeout
	case errors.Is(err, ErrAuthDenied):
		return ExitHandshakeError
	case errors.Is(err, ErrConfigError):
		return ExitSyntaxError
	case errors.Is(err, ErrHashMismatch):
		return ExitPartialTransfer
	case errors.Is(err, ErrCancelled):
		return ExitIOError
	default:
		return ExitIOError
	}
}
