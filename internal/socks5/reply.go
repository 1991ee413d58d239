package socks5

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"

	txsocks5 "github.com/txthinking/socks5"
)

// ReplyCode is the REP field of a connect reply, as per RFC 1928.
type ReplyCode byte

const (
	Success              ReplyCode = ReplyCode(txsocks5.RepSuccess)
	GeneralFailure       ReplyCode = 0x01
	NetworkUnreachable   ReplyCode = 0x03
	HostUnreachable      ReplyCode = ReplyCode(txsocks5.RepHostUnreachable)
	ConnectionRefused    ReplyCode = ReplyCode(txsocks5.RepConnectionRefused)
	CommandNotSupported  ReplyCode = ReplyCode(txsocks5.RepCommandNotSupported)
	AddrTypeNotSupported ReplyCode = 0x08
)

var replyCodeText = map[ReplyCode]string{
	Success:              "succeeded",
	GeneralFailure:       "general failure",
	NetworkUnreachable:   "network unreachable",
	HostUnreachable:      "host unreachable",
	ConnectionRefused:    "connection refused",
	CommandNotSupported:  "command not supported",
	AddrTypeNotSupported: "address type not supported",
}

func (c ReplyCode) String() string {
	if s, ok := replyCodeText[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", byte(c))
}

// ReplyLen is the size of every connect reply the server writes.
const ReplyLen = 4 + net.IPv4len + 2

// EncodeMethodReply returns the method selection reply: no-auth when accepted,
// "no acceptable methods" otherwise.
func EncodeMethodReply(accepted bool) []byte {
	if accepted {
		return []byte{Version, MethodNoAuth}
	}
	return []byte{Version, MethodNoAcceptable}
}

// EncodeConnectReply returns a reply carrying status and the bound endpoint.
// The address type is always IPv4; an address that is not IPv4 is sent as
// 0.0.0.0 with the port kept.
func EncodeConnectReply(status ReplyCode, addr net.IP, port uint16) []byte {
	b := make([]byte, 0, ReplyLen)
	b = append(b, Version, byte(status), 0x00, ATYPIPv4)

	ip4 := addr.To4()
	if ip4 == nil {
		ip4 = net.IPv4zero.To4()
	}
	b = append(b, ip4...)

	return binary.BigEndian.AppendUint16(b, port)
}

// BoundEndpoint extracts the IP and port of a local connection address.
// Addresses it cannot interpret yield a nil IP and port 0.
func BoundEndpoint(addr net.Addr) (net.IP, uint16) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP, uint16(a.Port)
	case nil:
		return nil, 0
	}

	ap, err := netip.ParseAddrPort(addr.String())
	if err != nil {
		return nil, 0
	}
	return net.IP(ap.Addr().Unmap().AsSlice()), ap.Port()
}

// ReplyCodeForDialError maps an outbound connect failure to the reply code
// reported to the client.
func ReplyCodeForDialError(err error) ReplyCode {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case err == nil:
		return Success
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnectionRefused
	case errors.Is(err, syscall.ENETUNREACH):
		return NetworkUnreachable
	case errors.Is(err, syscall.EHOSTUNREACH), errors.As(err, &dnsErr):
		return HostUnreachable
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return HostUnreachable
	default:
		return GeneralFailure
	}
}
