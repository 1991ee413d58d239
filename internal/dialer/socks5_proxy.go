package dialer

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/txthinking/socks5"
)

type SOCKS5ProxyDialer struct {
	cfg       Config
	proxyAddr string
	user      string
	pass      string
}

func NewSOCKS5ProxyDialer(cfg Config, proxyAddr, user, pass string) *SOCKS5ProxyDialer {
	return &SOCKS5ProxyDialer{cfg: cfg, proxyAddr: proxyAddr, user: user, pass: pass}
}

// DialContext connects to address through the upstream proxy. The socks5
// client has no context support, so ctx is only honored before and after the
// blocking dial.
func (d *SOCKS5ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: unsupported network", network, address)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}

	tcpTimeout := 0
	if d.cfg.DialTimeout > 0 {
		tcpTimeout = int(d.cfg.DialTimeout / time.Second)
		if tcpTimeout <= 0 {
			tcpTimeout = 1
		}
	}

	client, err := socks5.NewClient(d.proxyAddr, d.user, d.pass, tcpTimeout, 0)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy init: %w", err)
	}

	c, err := client.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}

	// The client leaves its handshake deadline on the conn.
	if err := c.SetDeadline(time.Time{}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("socks5 proxy clear deadline: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}
	return c, nil
}
