// Package dialer provides the outbound connect used by the minisocks server.
//
// A Dialer opens the destination stream for a CONNECT request, either
// directly or chained through an upstream SOCKS5 proxy. Domain names are
// passed through untouched; resolution belongs to the dialer.
package dialer
