//go:build !windows

// Package acceptor binds a listening socket with SO_REUSEPORT so every
// worker can hold its own accept queue on the same address, and the
// kernel load-balances incoming connections across them without any
// cross-worker handoff.
package acceptor

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/octet-server/octet/core/errs"
)

const backlog = 1024

// Acceptor owns one non-blocking listening socket. Construct one per
// worker against the same address; SO_REUSEPORT makes that safe and is
// what gives the engine its "no cross-worker connection migration"
// property.
type Acceptor struct {
	fd   int
	addr string
}

// New binds and listens on addr (host:port), configuring
// SO_REUSEADDR, SO_REUSEPORT, and a 1024-entry backlog.
func New(addr string) (*Acceptor, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Connection, err, "resolve address %q", addr)
	}

	domain := unix.AF_INET
	if tcpAddr.IP.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, errs.Wrap(errs.Connection, err, "create listening socket")
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errs.Wrap(errs.Connection, err, "set SO_REUSEADDR")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return nil, errs.Wrap(errs.Connection, err, "set SO_REUSEPORT")
	}

	sockaddr, err := sockaddrFromTCPAddr(tcpAddr, domain)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	if err := unix.Bind(fd, sockaddr); err != nil {
		unix.Close(fd)
		return nil, errs.Wrap(errs.Connection, err, "bind %q", addr)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, errs.Wrap(errs.Connection, err, "listen %q", addr)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, errs.Wrap(errs.Connection, err, "set listener non-blocking")
	}

	return &Acceptor{fd: fd, addr: addr}, nil
}

func sockaddrFromTCPAddr(addr *net.TCPAddr, domain int) (unix.Sockaddr, error) {
	if domain == unix.AF_INET6 {
		sa := &unix.SockaddrInet6{Port: addr.Port}
		if ip := addr.IP.To16(); ip != nil {
			copy(sa.Addr[:], ip)
		}
		return sa, nil
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip := addr.IP.To4(); ip != nil {
		copy(sa.Addr[:], ip)
	}
	return sa, nil
}

// Fd returns the listening socket's file descriptor, for registration
// with a worker's poller.
func (a *Acceptor) Fd() int { return a.fd }

// Accept accepts one pending connection, configures it non-blocking
// with TCP_NODELAY, and returns its fd. Returns unix.EAGAIN when the
// accept queue is drained; callers loop until they see it.
func (a *Acceptor) Accept() (int, error) {
	nfd, _, err := unix.Accept(a.fd)
	if err != nil {
		return -1, err
	}

	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, errs.Wrap(errs.Connection, err, "set accepted socket non-blocking")
	}
	if err := unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		unix.Close(nfd)
		return -1, errs.Wrap(errs.Connection, err, "set TCP_NODELAY")
	}

	return nfd, nil
}

// Close closes the listening socket.
func (a *Acceptor) Close() error {
	return unix.Close(a.fd)
}

// Addr returns the address the acceptor was bound to.
func (a *Acceptor) Addr() string { return a.addr }
