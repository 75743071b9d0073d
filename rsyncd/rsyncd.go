// Package rsyncd implements the rsync daemon and server roles: module
// routing, authentication, and the per-connection sender/receiver dispatch,
// compatible with the original tridge rsync (from the samba project) or
// openrsync (used on OpenBSD and macOS 15+).
package rsyncd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/syncwire/rsync"
	"github.com/syncwire/rsync/internal/handshake"
	"github.com/syncwire/rsync/internal/log"
	"github.com/syncwire/rsync/internal/pacer"
	"github.com/syncwire/rsync/internal/receiver"
	"github.com/syncwire/rsync/internal/rsyncauth"
	"github.com/syncwire/rsync/internal/rsyncopts"
	"github.com/syncwire/rsync/internal/rsyncos"
	"github.com/syncwire/rsync/internal/rsyncwire"
	"github.com/syncwire/rsync/internal/sender"
)

type Module struct {
	Name    string `toml:"name"`
	Path    string `toml:"path"`
	Comment string `toml:"comment"`

	ACL      []string `toml:"acl"`
	Writable bool     `toml:"writable"`

	// ReadOnly and WriteOnly mirror rsyncd.conf's "read only"/"write
	// only" directives. ReadOnly, when explicitly set, overrides
	// Writable; WriteOnly additionally forbids the sender role
	// regardless of ReadOnly.
	ReadOnly  bool `toml:"read_only"`
	WriteOnly bool `toml:"write_only"`

	// UseChroot and Uid/Gid name rsyncd.conf's privilege-dropping
	// directives. UseChroot is not enforced. Uid/Gid are not applied per
	// connection; the daemon command reads them once at startup to pick
	// the single identity the whole process drops to -- see DESIGN.md.
	UseChroot bool `toml:"use_chroot"`
	Uid       string `toml:"uid"`
	Gid       string `toml:"gid"`

	// AuthUsers restricts the module to the listed users, each
	// authenticated via SecretsFile's challenge/response exchange
	// via internal/rsyncauth. An empty AuthUsers means the module
	// requires no authentication.
	AuthUsers   []string `toml:"auth_users"`
	SecretsFile string   `toml:"secrets_file"`

	// HostsAllow/HostsDeny are evaluated the way rsyncd.conf does:
	// if HostsAllow is non-empty, only matching hosts are admitted and
	// HostsDeny is not consulted; otherwise a host matching HostsDeny
	// is rejected.
	HostsAllow []string `toml:"hosts_allow"`
	HostsDeny  []string `toml:"hosts_deny"`

	NumericIds     bool     `toml:"numeric_ids"`
	MaxConnections int      `toml:"max_connections"`
	TimeoutSeconds int      `toml:"timeout"`
	RefuseOptions  []string `toml:"refuse_options"`
	BwLimitKBps    int      `toml:"bwlimit"`

	// Filter/Include/Exclude are parsed and stored but not yet
	// enforced -- see DESIGN.md.
	Filter  []string `toml:"filter"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// readOnly reports whether the module rejects the receiver role,
// combining the legacy Writable flag with the newer ReadOnly/WriteOnly
// directives (WriteOnly wins, then an explicit ReadOnly, then !Writable).
func (m Module) readOnly() bool {
	if m.WriteOnly {
		return true
	}
	return m.ReadOnly || !m.Writable
}

func hostMatches(patterns []string, remoteIP net.IP) (bool, error) {
	for _, p := range patterns {
		if p == "all" || p == "*" {
			return true, nil
		}
		if ip := net.ParseIP(p); ip != nil {
			if ip.Equal(remoteIP) {
				return true, nil
			}
			continue
		}
		_, ipnet, err := net.ParseCIDR(p)
		if err != nil {
			return false, fmt.Errorf("invalid host pattern %q (want ip, cidr or \"all\")", p)
		}
		if ipnet.Contains(remoteIP) {
			return true, nil
		}
	}
	return false, nil
}

// checkHosts applies rsyncd.conf "hosts allow"/"hosts deny" precedence:
// a configured allow list is an allowlist (anything not matching is
// denied); otherwise a configured deny list is a blocklist.
func checkHosts(mod Module, remoteAddr net.Addr) error {
	if len(mod.HostsAllow) == 0 && len(mod.HostsDeny) == 0 {
		return nil
	}
	host, _, err := net.SplitHostPort(remoteAddr.String())
	if err != nil {
		return fmt.Errorf("BUG: invalid remote address %q", remoteAddr.String())
	}
	remoteIP := net.ParseIP(host)
	if remoteIP == nil {
		return fmt.Errorf("BUG: invalid remote host %q", host)
	}
	if len(mod.HostsAllow) > 0 {
		ok, err := hostMatches(mod.HostsAllow, remoteIP)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("access denied (host %s not in hosts allow)", host)
		}
		return nil
	}
	denied, err := hostMatches(mod.HostsDeny, remoteIP)
	if err != nil {
		return err
	}
	if denied {
		return fmt.Errorf("access denied (host %s in hosts deny)", host)
	}
	return nil
}

// Option specifies the server options.
type Option interface {
	applyServer(*Server)
}

type serverOptionFunc func(server *Server)

func (f serverOptionFunc) applyServer(s *Server) {
	f(s)
}

// WithLogger specifies the logger to use for the server.
// It also sets the global logger used by the rsync package.
func WithLogger(logger log.Logger) Option {
	return serverOptionFunc(func(s *Server) {
		s.logger = logger

		// TODO: remove global logger usage once we remove
		//       the ad-hoc logger reference.
		log.SetLogger(logger)
	})
}

func WithStderr(stderr io.Writer) Option {
	return serverOptionFunc(func(s *Server) {
		s.stderr = stderr
	})
}

func NewServer(modules []Module, opts ...Option) (*Server, error) {
	for _, mod := range modules {
		if err := validateModule(mod); err != nil {
			return nil, err
		}
	}

	server := &Server{
		modules:    modules,
		connCounts: make(map[string]*atomic.Int32, len(modules)),
	}
	for _, mod := range modules {
		server.connCounts[mod.Name] = new(atomic.Int32)
	}

	for _, opt := range opts {
		opt.applyServer(server)
	}

	// Default to os.Stderr if no stderr was specified.
	// Explicitly use io.Discard if you do not want stderr.
	if server.stderr == nil {
		server.stderr = os.Stderr
	}

	if server.logger == nil {
		server.logger = log.New(server.stderr)
	}

	return server, nil
}

type Server struct {
	stderr io.Writer
	logger log.Logger

	modules    []Module
	connCounts map[string]*atomic.Int32
}

// acquireSlot reserves a connection slot for mod, enforcing MaxConnections
// ("max connections"; 0 means unlimited). The returned release
// func must be called once the connection finishes.
func (s *Server) acquireSlot(mod Module) (release func(), err error) {
	counter := s.connCounts[mod.Name]
	if counter == nil || mod.MaxConnections <= 0 {
		return func() {}, nil
	}
	if n := counter.Add(1); n > int32(mod.MaxConnections) {
		counter.Add(-1)
		return nil, fmt.Errorf("max connections (%d) reached for module %q", mod.MaxConnections, mod.Name)
	}
	return func() { counter.Add(-1) }, nil
}

func (s *Server) getModule(requestedModule string) (Module, error) {
	for _, mod := range s.modules {
		if mod.Name == requestedModule {
			return mod, nil
		}
	}

	return Module{}, fmt.Errorf("no such module: %s", requestedModule)
}

func (s *Server) formatModuleList() string {
	if len(s.modules) == 0 {
		return ""
	}
	var list strings.Builder
	for _, mod := range s.modules {
		comment := mod.Comment
		if comment == "" {
			comment = mod.Name
		}
		fmt.Fprintf(&list, "%s\t%s\n",
			mod.Name,
			comment)
	}
	return list.String()
}

func checkACL(acls []string, remoteAddr net.Addr) error {
	if len(acls) == 0 {
		return nil
	}
	host, _, err := net.SplitHostPort(remoteAddr.String())
	if err != nil {
		return fmt.Errorf("BUG: invalid remote address %q", remoteAddr.String())
	}
	remoteIP := net.ParseIP(host)
	if remoteIP == nil {
		return fmt.Errorf("BUG: invalid remote host %q", host)
	}
	for _, acl := range acls {
		// TODO(performance): move ACL parsing to config-time to make ACL checks
		// less expensive
		i := strings.Index(acl, " ")
		if i < 0 {
			return fmt.Errorf("invalid acl: %q (no space found)", acl)
		}
		action, who := acl[:i], acl[i+len(" "):]
		if action != "allow" && action != "deny" {
			return fmt.Errorf("invalid acl: %q (syntax: allow|deny <all|ipnet>)", acl)
		}
		if who == "all" {
			// The all keyword matches any remote IP address
		} else {
			_, net, err := net.ParseCIDR(who)
			if err != nil {
				return fmt.Errorf("invalid acl: %q (syntax: allow|deny <all|ipnet>)", acl)
			}
			if !net.Contains(remoteIP) {
				// Skip this instruction, the remote IP does not match
				continue
			}
		}
		switch action {
		case "allow":
			return nil
		case "deny":
			return fmt.Errorf("access denied (acl %q)", acl)
		default:
			return fmt.Errorf("invalid acl: %q (syntax: allow|deny <all|ipnet>)", acl)
		}
	}
	return nil
}

// authenticateModule runs the daemon auth challenge/response exchange
// for a module whose AuthUsers is non-empty.
func (s *Server) authenticateModule(module Module, rd *bufio.Reader, cwr *rsyncwire.CountingWriter) error {
	if module.SecretsFile == "" {
		return fmt.Errorf("module %q requires auth but has no secrets file configured", module.Name)
	}
	secrets, err := rsyncauth.LoadSecrets(module.SecretsFile)
	if err != nil {
		return err
	}
	challenge, err := rsyncauth.NewChallenge()
	if err != nil {
		return err
	}
	fmt.Fprintf(cwr, "@RSYNCD: AUTH %s\n", challenge)
	line, err := rd.ReadString('\n')
	if err != nil {
		return err
	}
	user, response, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return fmt.Errorf("%w: malformed auth response %q", rsync.ErrAuthDenied, line)
	}
	if !slices.Contains(module.AuthUsers, user) {
		return fmt.Errorf("%w: user %q not permitted for module %q", rsync.ErrAuthDenied, user, module.Name)
	}
	return rsyncauth.Verify(secrets, challenge, user, response)
}

// checkRefusedOptions rejects any requested flag matching one of the
// module's refuse_options names. Matching is by option name
// only (no value parsing), e.g. "delete" refuses both "--delete" and
// "--delete=..." style flags.
func checkRefusedOptions(module Module, flags []string) error {
	if len(module.RefuseOptions) == 0 {
		return nil
	}
	for _, flag := range flags {
		name := strings.TrimLeft(flag, "-")
		name, _, _ = strings.Cut(name, "=")
		for _, refused := range module.RefuseOptions {
			if name == refused {
				return fmt.Errorf("option %q refused by module %q", flag, module.Name)
			}
		}
	}
	return nil
}

func (s *Server) HandleDaemonConn(ctx context.Context, osenv rsyncos.Std, conn io.ReadWriter, remoteAddr net.Addr) (err error) {
	const terminationCommand = "@RSYNCD: OK\n"
	crd, cwr := rsyncwire.CounterPair(conn, conn)
	rd := bufio.NewReader(crd)
	// send server greeting

	fmt.Fprintf(cwr, "@RSYNCD: %d\n", rsync.ProtocolVersion)

	// read client greeting
	clientGreeting, err := rd.ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(clientGreeting, "@RSYNCD: ") {
		return fmt.Errorf("invalid client greeting: got %q", clientGreeting)
	}
	// TODO: protocol negotiation

	// read requested module(s), if any
	requestedModule, err := rd.ReadString('\n')
	if err != nil {
		return err
	}
	requestedModule = strings.TrimSpace(requestedModule)
	if requestedModule == "" || requestedModule == "#list" {
		s.logger.Printf("client %v requested rsync module listing", remoteAddr)
		io.WriteString(cwr, s.formatModuleList())
		io.WriteString(cwr, "@RSYNCD: EXIT\n")
		return nil
	}
	s.logger.Printf("client %v requested rsync module %q", remoteAddr, requestedModule)
	module, err := s.getModule(requestedModule)
	if err != nil {
		fmt.Fprintf(cwr, "@ERROR: Unknown module %q\n", requestedModule)
		return err
	}

	if err := checkACL(module.ACL, remoteAddr); err != nil {
		fmt.Fprintf(cwr, "@ERROR: %v\n", err)
		return err
	}
	if err := checkHosts(module, remoteAddr); err != nil {
		fmt.Fprintf(cwr, "@ERROR: %v\n", err)
		return err
	}

	release, err := s.acquireSlot(module)
	if err != nil {
		fmt.Fprintf(cwr, "@ERROR: %v\n", err)
		return err
	}
	defer release()

	if len(module.AuthUsers) > 0 {
		if err := s.authenticateModule(module, rd, cwr); err != nil {
			fmt.Fprintf(cwr, "@ERROR: %v\n", err)
			return err
		}
	}

	if module.TimeoutSeconds > 0 {
		if deadliner, ok := conn.(interface{ SetDeadline(time.Time) error }); ok {
			defer deadliner.SetDeadline(time.Time{})
			_ = deadliner.SetDeadline(time.Now().Add(time.Duration(module.TimeoutSeconds) * time.Second))
		}
	}

	io.WriteString(cwr, terminationCommand)

	// read requested flags
	var flags []string
	for {
		flag, err := rd.ReadString('\n')
		if err != nil {
			return err
		}
		flag = strings.TrimSpace(flag)
		s.logger.Printf("client sent: %q", flag)
		if flag == "" {
			break
		}
		flags = append(flags, flag)
	}

	s.logger.Printf("flags: %+v", flags)
	if err := checkRefusedOptions(module, flags); err != nil {
		fmt.Fprintf(cwr, "@ERROR: %v\n", err)
		return err
	}
	pc, err := rsyncopts.ParseArguments(&rsyncos.Env{
		Stdin:  osenv.Stdin,
		Stdout: osenv.Stdout,
		Stderr: osenv.Stderr,
	}, flags)
	if err != nil {
		err = fmt.Errorf("parsing server args: %v", err)

		// terminate connection with an error about which flag is not supported
		c := &rsyncwire.Conn{
			Reader: rd,
			Writer: cwr,
		}

		const errorSeed = 0xee
		if err := c.WriteInt32(errorSeed); err != nil {
			return err
		}

		// Switch to multiplexing protocol, but only for server-side transmissions.
		// Transmissions received from the client are not multiplexed.
		mpx := &rsyncwire.MultiplexWriter{Writer: c.Writer}
		mpx.WriteMsg(rsync.MsgError, fmt.Appendf(nil, "rsync [sender]: %v\n", err))

		return err
	}
	opts := pc.Options
	remaining := pc.RemainingArgs
	s.logger.Printf("remaining: %q", remaining)
	// remaining[0] is always "."
	// remaining[1] is the first directory
	if len(remaining) < 2 {
		return fmt.Errorf("invalid args: at least one directory required")
	}
	if got, want := remaining[0], "."; got != want {
		return fmt.Errorf("protocol error: got %q, expected %q", got, want)
	}
	paths := remaining[1:]
	s.logger.Printf("paths: %q", paths)

	// Strip the module_name/ prefix out of the paths,
	// see rsync/io.c:read_args, glob_expand_module().
	for idx, path := range paths {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(path, module.Name), "/")
		if trimmed == "" {
			trimmed = "."
		}
		paths[idx] = trimmed
	}

	s.logger.Printf("trimmed paths: %q", paths)

	return s.HandleConn(ctx, &module, &Conn{crd, cwr, rd}, paths, opts, false)
}

type Conn struct {
	crd *rsyncwire.CountingReader
	cwr *rsyncwire.CountingWriter
	rd  *bufio.Reader
}

func (s *Server) NewConnection(r io.Reader, w io.Writer) *Conn {
	crd, cwr := rsyncwire.CounterPair(r, w)
	rd := bufio.NewReader(crd)
	return &Conn{
		crd: crd,
		cwr: cwr,
		rd:  rd,
	}
}

// generateSeed produces the per-connection checksum seed. Real rsync uses
// time(NULL) ^ (getpid() << 6); math/rand/v2 is auto-seeded and gives us an
// equivalent "SHOULD be unique to each connection" value (per
// https://github.com/JohannesBuchner/Jarsync/blob/master/jarsync/rsync.txt)
// without reaching for the wall clock.
func generateSeed() int32 {
	return int32(rand.Uint32() & 0x7fffffff)
}

// pacingWriter throttles writes to a module's configured bandwidth limit
// by registering every write with an internal/pacer.Pacer before returning.
type pacingWriter struct {
	w io.Writer
	p *pacer.Pacer
}

func (pw *pacingWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.p.Register(n)
	return n, err
}

// HandleConn is equivalent to rsync/main.c:start_server
func (s *Server) HandleConn(ctx context.Context, module *Module, conn *Conn, paths []string, opts *rsyncopts.Options, negotiate bool) (err error) {
	rd := conn.rd
	crd := conn.crd
	cwr := conn.cwr

	c := &rsyncwire.Conn{
		Reader: rd,
		Writer: cwr,
	}

	if module != nil && module.BwLimitKBps > 0 {
		c.Writer = &pacingWriter{w: c.Writer, p: pacer.New(int64(module.BwLimitKBps)*1024, 0)}
	}

	seed := generateSeed()

	var hs *handshake.Result
	if negotiate {
		res, err := handshake.Server(c, rsync.ProtocolVersion, seed)
		if err != nil {
			return err
		}
		hs = res
	} else {
		// The daemon's ascii "@RSYNCD: <version>\n" exchange already pinned
		// the protocol version; skip algorithm negotiation and just hand
		// the client its checksum seed.
		if err := c.WriteInt32(seed); err != nil {
			return err
		}
		hs = &handshake.Result{Version: rsync.ProtocolVersion, Algorithms: rsync.DefaultAlgorithms, Seed: seed}
	}

	if opts.Verbose() {
		s.logger.Printf("negotiated protocol %d, checksum %v, compression %v", hs.Version, hs.Algorithms.Checksum, hs.Algorithms.Compression)
	}

	// Switch to multiplexing protocol, but only for server-side transmissions.
	// Transmissions received from the client are not multiplexed.
	mpx := &rsyncwire.MultiplexWriter{Writer: c.Writer}
	c.Writer = mpx

	if opts.Sender() {
		// If returning an error, send the error to the client for display, too:
		defer func() {
			if err != nil {
				mpx.WriteMsg(rsync.MsgError, fmt.Appendf(nil, "rsync [sender]: %v\n", err))
			}
		}()

		return s.handleConnSender(module, crd, cwr, paths, opts, c, hs)
	}

	// If returning an error, send the error to the client for display, too:
	defer func() {
		if err != nil {
			mpx.WriteMsg(rsync.MsgError, fmt.Appendf(nil, "rsync [receiver]: %v\n", err))
		}
	}()
	return s.handleConnReceiver(ctx, module, crd, cwr, paths, opts, c, hs)
}

// handleConnReceiver is equivalent to rsync/main.c:do_server_recv
func (s *Server) handleConnReceiver(ctx context.Context, module *Module, crd *rsyncwire.CountingReader, cwr *rsyncwire.CountingWriter, paths []string, opts *rsyncopts.Options, c *rsyncwire.Conn, hs *handshake.Result) (err error) {
	if module == nil {
		if len(paths) != 1 {
			return fmt.Errorf("precisely one destination path required, got %q", paths)
		}
		module = &Module{
			Name:     "implicit",
			Path:     paths[0],
			Writable: true,
		}
	}
	if opts.Verbose() {
		s.logger.Printf("handleConnReceiver(module=%+v)", module)
	}

	if module.readOnly() {
		return fmt.Errorf("ERROR: module is read only")
	}

	rt := &receiver.Transfer{
		Logger: s.logger,
		Opts: &receiver.TransferOpts{
			DryRun: opts.DryRun(),
			Server: opts.Server(),

			DeleteMode:        opts.DeleteMode(),
			PreserveGid:       opts.PreserveGid(),
			PreserveUid:       opts.PreserveUid(),
			PreserveLinks:     opts.PreserveLinks(),
			PreservePerms:     opts.PreservePerms(),
			PreserveDevices:   opts.PreserveDevices(),
			PreserveSpecials:  opts.PreserveSpecials(),
			PreserveTimes:     opts.PreserveMTimes(),
			PreserveHardlinks: opts.PreserveHardLinks(),
			MungeSymlinks:     opts.MungeSymlinks(),
		},
		Dest:     module.Path,
		DestRoot: receiver.NewDestRoot(module.Path),
		Env: rsyncos.Std{
			Stderr: s.stderr,
		},
		Conn:             c,
		Protocol:         hs.Version,
		Seed:             hs.Seed,
		SeedFix:          hs.Compat.Has(rsync.CompatChksumSeedFix),
		Checksum:         hs.Algorithms.Checksum,
		VarintFlistFlags: hs.Compat.Has(rsync.CompatVarintFlistFlags),
	}

	if opts.PreserveHardLinks() {
		return fmt.Errorf("support for hard links not yet implemented")
	}

	if opts.DeleteMode() {
		// receive the exclusion list (openrsync’s is always empty)
		exclusionList, err := sender.RecvFilterList(c)
		if err != nil {
			return err
		}
		s.logger.Printf("exclusion list read (entries: %d)", len(exclusionList.Filters))
	}

	// receive file list
	if opts.Verbose() { // TODO: InfoGTE(FLIST, 1)
		s.logger.Printf("receiving file list")
	}
	fileList, err := rt.ReceiveFileList()
	if err != nil {
		return err
	}
	if opts.Verbose() { // TODO: InfoGTE(FLIST, 1)
		s.logger.Printf("received %d names", len(fileList))
	}
	stats, err := rt.Do(ctx, c, fileList, true)
	if err != nil {
		return err
	}
	if opts.Verbose() { // TODO: InfoGTE(STATS, 1)
		s.logger.Printf("stats: %+v", stats)
	}
	return nil
}

// handleConnSender is equivalent to rsync/main.c:do_server_sender
func (s *Server) handleConnSender(module *Module, crd *rsyncwire.CountingReader, cwr *rsyncwire.CountingWriter, paths []string, opts *rsyncopts.Options, c *rsyncwire.Conn, hs *handshake.Result) (err error) {
	if module == nil {
		module = &Module{
			Name: "implicit",
			Path: "/",
		}
	}
	if module.WriteOnly {
		return fmt.Errorf("ERROR: module is write only")
	}

	st := &sender.Transfer{
		Logger:           s.logger,
		Opts:             opts,
		Conn:             c,
		Protocol:         hs.Version,
		Seed:             hs.Seed,
		SeedFix:          hs.Compat.Has(rsync.CompatChksumSeedFix),
		Checksum:         hs.Algorithms.Checksum,
		VarintFlistFlags: hs.Compat.Has(rsync.CompatVarintFlistFlags),
	}
	// receive the exclusion list (openrsync’s is always empty)
	exclusionList, err := sender.RecvFilterList(st.Conn)
	if err != nil {
		return err
	}
	st.Logger.Printf("exclusion list read (entries: %d)", len(exclusionList.Filters))

	stats, err := st.Do(crd, cwr, module.Path, paths, exclusionList)
	if err != nil {
		return err
	}

	s.logger.Printf("handleConnSender done. stats: %+v", stats)

	return nil
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	osenv := rsyncos.Std{
		Stdin:  nil,
		Stdout: nil,
		Stderr: s.stderr,
	}

	go func() {
		<-ctx.Done()
		ln.Close() // unblocks Accept()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil // ignore expected 'use of closed network connection' error on context cancel
			default:
				return err
			}
		}
		remoteAddr := conn.RemoteAddr()
		s.logger.Printf("remote connection from %s", remoteAddr)
		go func() {
			defer conn.Close()
			if err := s.HandleDaemonConn(ctx, osenv, conn, remoteAddr); err != nil {
				s.logger.Printf("[%s] handle: %v", remoteAddr, err)
			}
		}()
	}
}

func validateModule(mod Module) error {
	if mod.Name == "" {
		return errors.New("module has no name")
	}
	if mod.Path == "" {
		return fmt.Errorf("module %q has empty path", mod.Name)
	}

	return nil
}
