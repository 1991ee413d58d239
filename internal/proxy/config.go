package proxy

import (
	"net"
	"time"

	"github.com/die-net/minisocks/internal/dialer"
)

type Config struct {
	// NegotiationTimeout bounds method selection, the request and the
	// outbound connect. Zero disables it.
	NegotiationTimeout time.Duration

	// HalfCloseTimeout bounds how long a relay stays open after one side
	// has finished sending. Zero waits for both sides.
	HalfCloseTimeout time.Duration

	// DialFailureReply sends an RFC 1928 error reply when the outbound
	// connect fails. Otherwise the client is closed without a reply.
	DialFailureReply bool

	KeepAlive net.KeepAliveConfig

	Dialer dialer.Dialer

	// Logger receives session events. Nil discards them.
	Logger Logger
}
