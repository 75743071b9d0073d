// Package rsyncclient provides a programmatic rsync client: given an
// already-connected io.ReadWriter (a pipe to a "--server" subprocess, a
// TCP socket to a daemon, or an in-process io.Pipe()), it drives one
// client-role transfer the same way internal/maincmd's CLI entry point
// does.
package rsyncclient

import (
	"context"
	"io"
	"os"

	"github.com/syncwire/rsync/internal/maincmd"
	"github.com/syncwire/rsync/internal/rsyncopts"
	"github.com/syncwire/rsync/internal/rsyncos"
)

// Client is a parsed rsync command line, ready to drive a transfer over
// any connection the caller hands to Run.
type Client struct {
	opts  *rsyncopts.Options
	osenv rsyncos.Std
}

// Option configures a Client constructed by New.
type Option func(*Client)

// WithSender makes the client the sending side of the transfer (the
// "--sender" role), matching rsync(1)'s own direction inference: when the
// first non-flag argument passed to rsync(1) is remote, rsync acts as the
// receiver; New itself cannot infer that here since it never sees
// source/destination arguments, only flags, so callers state it
// explicitly.
func WithSender() Option {
	return func(c *Client) {
		c.opts.SetSender()
	}
}

// WithStderr redirects diagnostic output; defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(c *Client) {
		c.osenv.Stderr = w
	}
}

// New parses args (rsync(1) flags, without source/destination arguments)
// into a Client.
func New(args []string, opts ...Option) (*Client, error) {
	pc, err := rsyncopts.ParseArguments(&rsyncos.Env{Stderr: os.Stderr}, args)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts: pc.Options,
		osenv: rsyncos.Std{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run drives one transfer over rw, acting as sender or receiver of paths
// depending on whether WithSender was supplied to New. rw is typically the
// stdin/stdout pair of a "--server" subprocess, or a raw socket/pipe to an
// already-handshaken daemon connection.
func (c *Client) Run(ctx context.Context, rw io.ReadWriter, paths []string) error {
	const negotiate = true
	_, err := maincmd.ClientRun(ctx, c.osenv, c.opts, rw, paths, negotiate)
	return err
}
