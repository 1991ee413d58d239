package socks5

import txsocks5 "github.com/txthinking/socks5"

const (
	// Version is the only protocol version byte accepted or emitted.
	Version byte = 0x05

	// MethodNoAuth is the "no authentication required" method.
	MethodNoAuth = txsocks5.MethodNone
	// MethodNoAcceptable tells the client none of its methods were accepted.
	MethodNoAcceptable byte = 0xff

	// CmdConnect is the SOCKS5 CONNECT command value.
	CmdConnect = txsocks5.CmdConnect

	ATYPIPv4   = txsocks5.ATYPIPv4
	ATYPDomain = txsocks5.ATYPDomain
	ATYPIPv6   = txsocks5.ATYPIPv6
)
