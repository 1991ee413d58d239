package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/die-net/minisocks/internal/socks5"
)

// ErrNoAcceptableMethods is returned when a client does not offer no-auth.
var ErrNoAcceptableMethods = errors.New("client does not support no-auth")

type SOCKS5Server struct {
	ctx context.Context
	cfg Config
	log Logger
}

func NewSOCKS5Server(ctx context.Context, cfg Config) *SOCKS5Server {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SOCKS5Server{ctx: ctx, cfg: cfg, log: orNop(cfg.Logger)}
}

// Serve accepts connections from ln and runs one session per connection until
// Accept fails. Session failures are logged and never stop the loop.
func (s *SOCKS5Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go func() {
			err := s.ServeConn(s.ctx, c)
			s.logSessionEnd(c.RemoteAddr(), err)
		}()
	}
}

// ServeConn runs the SOCKS5 negotiation on conn and, once a destination is
// connected, relays until both sides are done. conn is always closed on
// return.
func (s *SOCKS5Server) ServeConn(ctx context.Context, conn net.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblocks negotiation reads when the server shuts down.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sess := &session{SOCKS5Server: s, conn: conn, remote: conn.RemoteAddr()}
	sess.setPhase(PhaseAwaitingMethods)

	err := sess.serve(ctx)
	if err != nil && !errors.Is(err, socks5.ErrConnectionClosed) && !errors.Is(err, ErrNoAcceptableMethods) {
		sess.setPhase(PhaseFailed)
	}

	_ = conn.Close()
	sess.setPhase(PhaseClosed)
	return err
}

func (s *SOCKS5Server) logSessionEnd(remote net.Addr, err error) {
	switch {
	case err == nil:
		s.log.Debug("socks5: session done", "remote", remote)
	case errors.Is(err, socks5.ErrConnectionClosed):
		s.log.Debug("socks5: client went away", "remote", remote, "err", err)
	case errors.Is(err, socks5.ErrProtocol), errors.Is(err, ErrNoAcceptableMethods):
		s.log.Info("socks5: rejected client", "remote", remote, "err", err)
	default:
		s.log.Error("socks5: session failed", "remote", remote, "err", err)
	}
}

func (s *SOCKS5Server) dial(ctx context.Context, address string) (net.Conn, error) {
	if s.cfg.Dialer == nil {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", address)
	}
	return s.cfg.Dialer.DialContext(ctx, "tcp", address)
}
