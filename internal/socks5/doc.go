// Package socks5 encodes and decodes the SOCKS5 wire structures used by the
// minisocks server: method selection, the CONNECT request and the reply.
//
// The codec is stateless. Decoders read exactly the number of bytes each field
// needs and report end-of-stream before a complete structure as
// ErrConnectionClosed, never as a short read.
//
// Only the subset the server speaks is accepted: the no-auth method, the
// CONNECT command and IPv4 or domain-name destinations. Constants are shared
// with github.com/txthinking/socks5 so the server and the client side used in
// tests agree on every code.
package socks5
