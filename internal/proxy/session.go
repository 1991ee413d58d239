package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/die-net/minisocks/internal/socks5"
)

// Phase is where a session is in the SOCKS5 exchange.
type Phase int

const (
	PhaseAwaitingMethods Phase = iota
	PhaseAwaitingRequest
	PhaseConnecting
	PhaseRelaying
	PhaseFailed
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMethods:
		return "awaiting-methods"
	case PhaseAwaitingRequest:
		return "awaiting-request"
	case PhaseConnecting:
		return "connecting"
	case PhaseRelaying:
		return "relaying"
	case PhaseFailed:
		return "failed"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// session is one accepted client connection. It is owned by the goroutine
// running ServeConn.
type session struct {
	*SOCKS5Server
	conn   net.Conn
	remote net.Addr
	phase  Phase
}

func (sess *session) setPhase(p Phase) {
	sess.phase = p
	sess.log.Debug("socks5: phase", "remote", sess.remote, "phase", p)
}

func (sess *session) serve(ctx context.Context) error {
	nctx := ctx
	if d := sess.cfg.NegotiationTimeout; d > 0 {
		deadline := time.Now().Add(d)
		_ = sess.conn.SetDeadline(deadline)

		var cancel context.CancelFunc
		nctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	if err := sess.negotiateMethod(); err != nil {
		return err
	}

	up, err := sess.handleRequest(nctx)
	if err != nil {
		return err
	}

	_ = sess.conn.SetDeadline(time.Time{})
	sess.setPhase(PhaseRelaying)

	if err := CopyBidirectional(ctx, sess.conn, up, sess.cfg.HalfCloseTimeout, sess.log); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	return nil
}

func (sess *session) negotiateMethod() error {
	ms, err := socks5.DecodeMethodSelection(sess.conn)
	if err != nil {
		return fmt.Errorf("method selection: %w", err)
	}

	if !ms.Offers(socks5.MethodNoAuth) {
		_ = sess.write(socks5.EncodeMethodReply(false))
		return ErrNoAcceptableMethods
	}
	if err := sess.write(socks5.EncodeMethodReply(true)); err != nil {
		return fmt.Errorf("method reply: %w", err)
	}

	sess.setPhase(PhaseAwaitingRequest)
	return nil
}

// handleRequest reads the CONNECT request and opens the destination. On
// success the client has been sent a success reply carrying the bound
// endpoint of the returned conn.
func (sess *session) handleRequest(ctx context.Context) (net.Conn, error) {
	req, err := socks5.DecodeConnectRequest(sess.conn)
	if err != nil {
		var pe *socks5.ProtocolError
		if errors.As(err, &pe) {
			if rep, ok := pe.Reply(); ok {
				_ = sess.writeReply(rep, nil, 0)
			}
		}
		return nil, fmt.Errorf("request: %w", err)
	}

	sess.setPhase(PhaseConnecting)
	address := req.Address()
	sess.log.Debug("socks5: connecting", "remote", sess.remote, "dest", address)

	up, err := sess.dial(ctx, address)
	if err != nil {
		if sess.cfg.DialFailureReply {
			_ = sess.writeReply(socks5.ReplyCodeForDialError(err), nil, 0)
		}
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}

	ip, port := socks5.BoundEndpoint(up.LocalAddr())
	if err := sess.writeReply(socks5.Success, ip, port); err != nil {
		_ = up.Close()
		return nil, fmt.Errorf("success reply: %w", err)
	}

	sess.log.Info("socks5: forwarding", "remote", sess.remote, "dest", address, "bound", up.LocalAddr())
	return up, nil
}

func (sess *session) writeReply(rep socks5.ReplyCode, ip net.IP, port uint16) error {
	return sess.write(socks5.EncodeConnectReply(rep, ip, port))
}

func (sess *session) write(b []byte) error {
	if _, err := sess.conn.Write(b); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
