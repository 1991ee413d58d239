package socks5

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
)

// MethodSelection is the client's opening message.
type MethodSelection struct {
	Version byte
	Methods []byte
}

// Offers reports whether the client offered method m.
func (ms *MethodSelection) Offers(m byte) bool {
	return slices.Contains(ms.Methods, m)
}

// ConnectRequest is a decoded SOCKS5 request. Only CONNECT to an IPv4 or
// domain-name destination decodes without error.
type ConnectRequest struct {
	Version byte
	Cmd     byte
	Rsv     byte
	Atyp    byte
	Host    string
	Port    uint16
}

// Address returns the destination as host:port, suitable for a dialer. Domain
// names are passed through unresolved.
func (r *ConnectRequest) Address() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(int(r.Port)))
}

// DecodeMethodSelection reads VER, NMETHODS and the method list from r.
func DecodeMethodSelection(r io.Reader) (*MethodSelection, error) {
	var hdr [2]byte
	if err := readFull(r, hdr[:], "method selection header"); err != nil {
		return nil, err
	}
	if hdr[0] != Version {
		return nil, &ProtocolError{Kind: BadVersion, Value: hdr[0]}
	}

	methods := make([]byte, int(hdr[1]))
	if err := readFull(r, methods, "methods"); err != nil {
		return nil, err
	}

	return &MethodSelection{Version: hdr[0], Methods: methods}, nil
}

// DecodeConnectRequest reads a request from r. The header is validated before
// any address bytes are consumed; on a *ProtocolError the returned request
// still holds the header fields that were read.
func DecodeConnectRequest(r io.Reader) (*ConnectRequest, error) {
	var hdr [4]byte
	if err := readFull(r, hdr[:], "request header"); err != nil {
		return nil, err
	}

	req := &ConnectRequest{Version: hdr[0], Cmd: hdr[1], Rsv: hdr[2], Atyp: hdr[3]}
	switch {
	case req.Version != Version:
		return req, &ProtocolError{Kind: BadVersion, Value: req.Version}
	case req.Cmd != CmdConnect:
		return req, &ProtocolError{Kind: UnsupportedCommand, Value: req.Cmd}
	case req.Rsv != 0x00:
		return req, &ProtocolError{Kind: ReservedFieldNonzero, Value: req.Rsv}
	}

	switch req.Atyp {
	case ATYPIPv4:
		var ip [net.IPv4len]byte
		if err := readFull(r, ip[:], "ipv4 address"); err != nil {
			return nil, err
		}
		req.Host = net.IP(ip[:]).String()
	case ATYPDomain:
		var n [1]byte
		if err := readFull(r, n[:], "domain length"); err != nil {
			return nil, err
		}
		if n[0] == 0 {
			return req, &ProtocolError{Kind: EmptyDomainName, Value: n[0]}
		}
		name := make([]byte, int(n[0]))
		if err := readFull(r, name, "domain name"); err != nil {
			return nil, err
		}
		req.Host = string(name)
	default:
		return req, &ProtocolError{Kind: UnsupportedAddressType, Value: req.Atyp}
	}

	var port [2]byte
	if err := readFull(r, port[:], "port"); err != nil {
		return nil, err
	}
	req.Port = binary.BigEndian.Uint16(port[:])

	return req, nil
}

func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("read %s: %w", what, ErrConnectionClosed)
		}
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}
