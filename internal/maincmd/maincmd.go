// Package maincmd implements a subset of the '$ rsync' CLI surface, namely that it can:
//   - serve as a server daemon over TCP
//   - serve as the "--server" role over a pipe (e.g. spawned by an SSH session)
//   - act as "client" CLI for connecting to either of the above
package maincmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/syncwire/rsync/internal/restrict"
	"github.com/syncwire/rsync/internal/rsyncdconfig"
	"github.com/syncwire/rsync/internal/rsyncopts"
	"github.com/syncwire/rsync/internal/rsyncos"
	"github.com/syncwire/rsync/internal/rsyncstats"
	"github.com/syncwire/rsync/rsyncd"
)

func version(osenv *rsyncos.Env) {
	osenv.Logf("rsync engine, pid %d", os.Getpid())
}

func Main(ctx context.Context, osenv *rsyncos.Env, args []string, cfg *rsyncdconfig.Config) (*rsyncstats.TransferStats, error) {
	osenv.Logf("Main(osenv=%v, args=%q)", osenv, args)
	pc, err := rsyncopts.ParseArguments(osenv, args[1:])
	if err != nil {
		if pe, ok := err.(*rsyncopts.PoptError); ok &&
			pe.Errno == rsyncopts.POPT_ERROR_BADOPT &&
			strings.HasPrefix(pe.Option, "--rsyncx.") {
			return nil, fmt.Errorf("%v (you need to specify --daemon before flags starting with --rsyncx are available)", pe)
		}
		return nil, err
	}
	opts := pc.Options
	remaining := pc.RemainingArgs

	// calling convention: command mode (over a pipe, e.g. spawned by SSH or
	// a local subprocess): --server [--sender] <flags> . <path>...
	if opts.Server() {
		return nil, serverMain(ctx, osenv, opts, remaining)
	}

	if !opts.Daemon() {
		std := rsyncos.Std{Stdin: osenv.Stdin, Stdout: osenv.Stdout, Stderr: osenv.Stderr}
		return clientMain(ctx, std, opts, remaining)
	}

	// calling convention: standalone TCP daemon, reading its module table
	// from a configuration file.
	if cfg == nil {
		if opts.DaemonExtra.Config != "" {
			cfg, err = rsyncdconfig.FromFile(opts.DaemonExtra.Config)
		} else {
			cfg, _, err = rsyncdconfig.FromDefaultFiles()
		}
		if err != nil {
			return nil, err
		}
	}
	if opts.DaemonExtra.Listen != "" {
		host, portStr, err := net.SplitHostPort(opts.DaemonExtra.Listen)
		if err != nil {
			return nil, fmt.Errorf("--rsyncx.listen: %v", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("--rsyncx.listen: invalid port %q", portStr)
		}
		cfg.Listeners = append(cfg.Listeners, rsyncdconfig.Listener{Address: host, Port: port})
	}
	return nil, daemonMain(ctx, osenv, cfg, opts.DaemonExtra.MonitoringListen)
}

// serverMain handles the "--server" role invoked over an already-connected
// pipe (osenv.Stdin/Stdout), equivalent to rsync/main.c:start_server.
func serverMain(ctx context.Context, osenv *rsyncos.Env, opts *rsyncopts.Options, remaining []string) error {
	srv, err := rsyncd.NewServer(nil, rsyncd.WithStderr(osenv.Stderr))
	if err != nil {
		return err
	}

	if len(remaining) < 2 {
		return fmt.Errorf("invalid args: at least one directory required")
	}
	if got, want := remaining[0], "."; got != want {
		return fmt.Errorf("protocol error: got %q, expected %q", got, want)
	}
	paths := remaining[1:]
	if opts.Verbose() {
		osenv.Logf("paths: %q", paths)
	}

	var roDirs, rwDirs []string
	if opts.Sender() {
		roDirs = append(roDirs, paths...)
	} else {
		for _, path := range paths {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
		}
		rwDirs = append(rwDirs, paths...)
	}
	if osenv.Restrict() {
		if err := restrict.MaybeFileSystem(roDirs, rwDirs); err != nil {
			return err
		}
	}

	conn := srv.NewConnection(osenv.Stdin, osenv.Stdout)
	return srv.HandleConn(ctx, nil, conn, paths, opts, true)
}

// daemonMain starts a standalone TCP daemon listening on every address
// configured in cfg.
func daemonMain(ctx context.Context, osenv *rsyncos.Env, cfg *rsyncdconfig.Config, monitoringListen string) error {
	if len(cfg.Listeners) == 0 {
		return fmt.Errorf("no listener configured, add a [[listener]] to the configuration")
	}

	if osenv.Restrict() {
		if err := rsyncd.RestrictToModules(cfg.Modules); err != nil {
			return err
		}
	}

	if monitoringListen != "" {
		go func() {
			osenv.Logf("HTTP server for monitoring listening on http://%s/debug/pprof", monitoringListen)
			if err := http.ListenAndServe(monitoringListen, nil); err != nil {
				osenv.Logf("--rsyncx.monitoring_listen: %v", err)
			}
		}()
	}

	version(osenv)
	osenv.Logf("%d rsync modules configured", len(cfg.Modules))

	srv, err := rsyncd.NewServer(cfg.Modules, rsyncd.WithStderr(osenv.Stderr))
	if err != nil {
		return err
	}

	errCh := make(chan error, len(cfg.Listeners))
	var lns []net.Listener
	for _, l := range cfg.Listeners {
		addr := net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		osenv.Logf("rsync daemon listening on rsync://%s", ln.Addr())
		lns = append(lns, ln)
	}

	uid, gid := resolveDaemonIdentity(osenv, cfg.Modules)
	if err := dropPrivileges(osenv, uid, gid); err != nil {
		return err
	}

	for _, ln := range lns {
		go func(ln net.Listener) {
			errCh <- srv.Serve(ctx, ln)
		}(ln)
	}
	return <-errCh
}

// resolveDaemonIdentity returns the uid/gid dropPrivileges should switch to.
// If every module that grants write access pins the same explicit uid/gid,
// that identity is honored; otherwise the daemon falls back to nobody
// (65534/65534), since a single process can only run as one identity and
// per-module uid/gid would require per-connection privilege separation this
// daemon does not implement.
func resolveDaemonIdentity(osenv *rsyncos.Env, modules []rsyncd.Module) (uid, gid int) {
	const nobody = 65534
	uid, gid = nobody, nobody

	pinned := false
	for _, mod := range modules {
		if mod.WriteOnly || mod.ReadOnly || !mod.Writable {
			continue
		}
		if mod.Uid == "" && mod.Gid == "" {
			osenv.Logf("module %q grants write access without uid/gid; running as nobody (%d/%d)", mod.Name, nobody, nobody)
			return nobody, nobody
		}
		modUid, modGid := nobody, nobody
		if mod.Uid != "" {
			if n, err := strconv.Atoi(mod.Uid); err == nil {
				modUid = n
			} else if u, err := user.Lookup(mod.Uid); err == nil {
				modUid, _ = strconv.Atoi(u.Uid)
			}
		}
		if mod.Gid != "" {
			if n, err := strconv.Atoi(mod.Gid); err == nil {
				modGid = n
			} else if g, err := user.LookupGroup(mod.Gid); err == nil {
				modGid, _ = strconv.Atoi(g.Gid)
			}
		}
		if !pinned {
			uid, gid = modUid, modGid
			pinned = true
			continue
		}
		if modUid != uid || modGid != gid {
			osenv.Logf("modules configure conflicting uid/gid; running as nobody (%d/%d) instead", nobody, nobody)
			return nobody, nobody
		}
	}
	return uid, gid
}
