package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const relayBufferSize = 4000

var relayBuffers = newBufferPool(relayBufferSize)

// CopyBidirectional relays bytes between client and dest until both
// directions have finished, then closes both conns.
//
// A clean end-of-stream on one side half-closes the other side's write half
// and ends that direction only. If the remaining direction is still open
// halfCloseTimeout later, both conns are closed and the relay ends cleanly;
// zero waits indefinitely. Any read or write error, or cancellation of ctx,
// closes both conns at once so the other direction unblocks. The first such
// error is returned, naming the direction it occurred in.
func CopyBidirectional(ctx context.Context, client, dest net.Conn, halfCloseTimeout time.Duration, log Logger) error {
	log = orNop(log)

	g, gctx := errgroup.WithContext(ctx)

	var closeOnce sync.Once
	closeBoth := func() {
		closeOnce.Do(func() {
			_ = client.Close()
			_ = dest.Close()
		})
	}
	defer closeBoth()

	// gctx is done on the first error, on ctx cancellation, or once Wait
	// returns.
	stop := context.AfterFunc(gctx, closeBoth)
	defer stop()

	var (
		lingerOnce    sync.Once
		linger        *time.Timer
		lingerExpired atomic.Bool
	)
	halfClosed := func() {
		if halfCloseTimeout <= 0 {
			return
		}
		lingerOnce.Do(func() {
			linger = time.AfterFunc(halfCloseTimeout, func() {
				lingerExpired.Store(true)
				closeBoth()
			})
		})
	}

	g.Go(func() error {
		return relay(dest, client, "client", log, halfClosed)
	})
	g.Go(func() error {
		return relay(client, dest, "destination", log, halfClosed)
	})

	err := g.Wait()
	if linger != nil {
		linger.Stop()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if lingerExpired.Load() {
			log.Info("relay: half-closed session idle, closed", "after", halfCloseTimeout)
			return nil
		}
		return err
	}
	return nil
}

// relay copies src to dst. name identifies src in logs and errors. onEOF runs
// after dst has been half-closed.
func relay(dst, src net.Conn, name string, log Logger, onEOF func()) error {
	bufp := relayBuffers.Get()
	defer relayBuffers.Put(bufp)
	buf := *bufp

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			log.Debug("relay: forwarding", "from", name, "bytes", n)

			w, werr := dst.Write(buf[:n])
			if werr == nil && w != n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				log.Error("relay: write failed", "from", name, "err", werr)
				return fmt.Errorf("relay from %s: write: %w", name, werr)
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				log.Info("relay: peer hung up", "side", name)
				closeWrite(dst)
				onEOF()
				return nil
			}
			return fmt.Errorf("relay from %s: read: %w", name, rerr)
		}
	}
}

type closeWriter interface {
	CloseWrite() error
}

// closeWrite signals end-of-stream to c's peer, falling back to a full close
// for conns without a write half.
func closeWrite(c net.Conn) {
	if cw, ok := c.(closeWriter); ok {
		if err := cw.CloseWrite(); err == nil {
			return
		}
	}
	_ = c.Close()
}
