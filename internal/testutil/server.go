package testutil

import (
	"context"
	"net"
	"sync"
	"testing"
)

func StartSingleAcceptServer(t *testing.T, ctx context.Context, handler func(net.Conn)) (net.Listener, func()) {
	t.Helper()

	ln := listen(t, ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		handler(c)
	}()

	wait := func() {
		_ = ln.Close()
		wg.Wait()
	}

	return ln, wait
}

// ClosedTCPAddr returns a loopback address that nothing listens on.
func ClosedTCPAddr(t *testing.T, ctx context.Context) string {
	t.Helper()

	ln := listen(t, ctx)
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func listen(t *testing.T, ctx context.Context) net.Listener {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return ln
}

// TCPPair returns both ends of a loopback TCP connection.
func TCPPair(t *testing.T, ctx context.Context) (*net.TCPConn, *net.TCPConn) {
	t.Helper()

	ln := listen(t, ctx)
	defer ln.Close()

	type result struct {
		c   net.Conn
		err error
	}
	accepted := make(chan result, 1)
	go func() {
		c, err := ln.Accept()
		accepted <- result{c, err}
	}()

	d := net.Dialer{}
	a, err := d.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	r := <-accepted
	if r.err != nil {
		_ = a.Close()
		t.Fatal(r.err)
	}

	t.Cleanup(func() {
		_ = a.Close()
		_ = r.c.Close()
	})
	return a.(*net.TCPConn), r.c.(*net.TCPConn)
}
