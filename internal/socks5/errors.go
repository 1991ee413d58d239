package socks5

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol matches any *ProtocolError via errors.Is.
	ErrProtocol = errors.New("socks5 protocol error")

	// ErrConnectionClosed reports that the peer closed the stream while a
	// structure was only partially read.
	ErrConnectionClosed = errors.New("connection closed")
)

// ProtocolErrorKind classifies malformed or unsupported client input.
type ProtocolErrorKind int

const (
	BadVersion ProtocolErrorKind = iota + 1
	UnsupportedCommand
	ReservedFieldNonzero
	UnsupportedAddressType
	EmptyDomainName
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case BadVersion:
		return "bad version"
	case UnsupportedCommand:
		return "unsupported command"
	case ReservedFieldNonzero:
		return "reserved field nonzero"
	case UnsupportedAddressType:
		return "unsupported address type"
	case EmptyDomainName:
		return "empty domain name"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProtocolError is returned by the decoders when the client sent a value the
// server does not accept. Value is the offending byte.
type ProtocolError struct {
	Kind  ProtocolErrorKind
	Value byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s (0x%02x)", ErrProtocol, e.Kind, e.Value)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// Reply returns the reply code a server should answer this error with, and
// false when the error leaves no valid reply to send.
func (e *ProtocolError) Reply() (ReplyCode, bool) {
	switch e.Kind {
	case UnsupportedCommand:
		return CommandNotSupported, true
	case UnsupportedAddressType:
		return AddrTypeNotSupported, true
	case ReservedFieldNonzero, EmptyDomainName:
		return GeneralFailure, true
	default:
		return 0, false
	}
}
