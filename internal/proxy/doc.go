// Package proxy implements the minisocks listener side: the SOCKS5 session
// state machine, the bidirectional relay and the keepalive listener that
// feeds accepted connections to them.
package proxy
