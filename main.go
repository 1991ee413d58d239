package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/die-net/minisocks/internal/dialer"
	"github.com/die-net/minisocks/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		listen = pflag.String("listen", "localhost:8002", "SOCKS5 listen address (host:port)")

		upstream = pflag.String("upstream", defaultUpstream(), "Outbound route: direct:// | socks5://[user:pass@]host:port")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for outbound DNS lookup and TCP connect")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for a client to complete SOCKS5 negotiation (0 disables)")
		halfCloseTimeout   = pflag.Duration("half-close-timeout", 30*time.Second, "How long a relay stays open after one side stops sending (0 waits for both sides)")
		dialFailureReply   = pflag.Bool("dial-failure-reply", false, "Send a SOCKS5 error reply when the outbound connect fails instead of just closing")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		verbose            = pflag.Bool("verbose", false, "Enable per-connection debug logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	logger := newLogger(*verbose)

	cfg := proxy.Config{
		NegotiationTimeout: *negotiationTimeout,
		HalfCloseTimeout:   *halfCloseTimeout,
		DialFailureReply:   *dialFailureReply,
		KeepAlive:          ka,
		Logger:             logger,
	}

	cfg.Dialer, err = dialer.New(dialer.Config{DialTimeout: *dialTimeout, KeepAlive: ka}, *upstream)
	if err != nil {
		return fmt.Errorf("invalid --upstream: %w", err)
	}

	g, ctx := errgroup.WithContext(context.Background())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := proxy.ListenTCP("tcp", *listen, cfg.KeepAlive)
	if err != nil {
		return fmt.Errorf("socks5 listen: %w", err)
	}
	s5 := proxy.NewSOCKS5Server(ctx, cfg)
	context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})

	g.Go(func() error {
		if err := s5.Serve(ln); err != nil {
			if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("socks5 serve: %w", err)
		}
		return nil
	})

	logger.Info("socks5 proxy listening", "addr", ln.Addr().String(), "upstream", *upstream)

	err = g.Wait()

	logger.Info("shutting down")
	return err
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

// defaultUpstream honors ALL_PROXY when it names a SOCKS5 proxy.
func defaultUpstream() string {
	for _, env := range []string{"ALL_PROXY", "all_proxy"} {
		if p := os.Getenv(env); strings.HasPrefix(strings.ToLower(p), "socks5://") {
			return p
		}
	}

	return "direct://"
}
