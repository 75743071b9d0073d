// Tool rsync is a native Go implementation of the rsync wire protocol,
// usable as a client, a "--server" role invoked over a pipe (e.g. by ssh),
// or a standalone TCP daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/syncwire/rsync/internal/maincmd"
	"github.com/syncwire/rsync/internal/rsyncos"
)

func main() {
	osenv := &rsyncos.Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	stats, err := maincmd.Main(context.Background(), osenv, os.Args, nil)
	if err != nil {
		log.Fatal(err)
	}
	if stats != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", stats)
	}
}
