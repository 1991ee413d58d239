package dialer

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/die-net/minisocks/internal/testutil"
)

func TestDirectDialerDial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoTCPServer(t, ctx)
	defer echoLn.Close()

	d := NewDirectDialer(Config{DialTimeout: 2 * time.Second})
	conn, err := d.DialContext(ctx, "tcp", echoLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, ok := conn.LocalAddr().(*net.TCPAddr); !ok {
		t.Fatalf("local addr %T is not a TCP address", conn.LocalAddr())
	}

	testutil.AssertEcho(t, conn, conn, []byte("hello"))
}

func TestDirectDialerRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	addr := testutil.ClosedTCPAddr(t, ctx)

	d := NewDirectDialer(Config{DialTimeout: 2 * time.Second})
	_, err := d.DialContext(ctx, "tcp", addr)
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("err=%v want ECONNREFUSED", err)
	}
}
