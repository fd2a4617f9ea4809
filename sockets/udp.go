package sockets

import (
	"net/netip"
	"os"

	"golang.org/x/sys/unix"
)

// UDPSocket is a connectionless datagram socket.
type UDPSocket struct {
	fd socketFD
}

// BindUDP binds a datagram socket on the given port on all interfaces.
// Port 0 picks an ephemeral port, which Addr reports.
func BindUDP(port int) (*UDPSocket, error) {
	fd, err := socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := setsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		closeTraceError(fd)
		return nil, os.NewSyscallError("setsockopt", err)
	}
	if err := bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		closeTraceError(fd)
		return nil, os.NewSyscallError("bind", err)
	}
	u := new(UDPSocket)
	u.fd.init(fd)
	return u, nil
}

// Fd returns the descriptor of the socket, or -1 when closed.
func (u *UDPSocket) Fd() int { return u.fd.load() }

// Addr returns the address the socket is bound to.
func (u *UDPSocket) Addr() netip.AddrPort {
	fd := u.fd.acquire()
	if fd < 0 {
		return netip.AddrPort{}
	}
	defer u.fd.release(fd)
	sa, err := getsockname(fd)
	if err != nil {
		return netip.AddrPort{}
	}
	return addrPort(sa)
}

// SendTo sends a single datagram to the given destination.
func (u *UDPSocket) SendTo(b []byte, to netip.AddrPort) error {
	fd := u.fd.acquire()
	if fd < 0 {
		return os.NewSyscallError("sendto", EBADF)
	}
	defer u.fd.release(fd)

	sa, _ := sockaddr(to.Addr(), int(to.Port()))
	err := ignoreEINTR(func() error { return unix.Sendto(fd, b, 0, sa) })
	return os.NewSyscallError("sendto", err)
}

// RecvFrom blocks until a datagram arrives and returns its payload length and
// the sender address. Datagrams longer than len(b) are truncated.
func (u *UDPSocket) RecvFrom(b []byte) (int, netip.AddrPort, error) {
	fd := u.fd.acquire()
	if fd < 0 {
		return 0, netip.AddrPort{}, os.NewSyscallError("recvfrom", EBADF)
	}
	defer u.fd.release(fd)

	n, sa, err := ignoreEINTR3(func() (int, unix.Sockaddr, error) {
		return unix.Recvfrom(fd, b, 0)
	})
	if err != nil {
		return 0, netip.AddrPort{}, os.NewSyscallError("recvfrom", err)
	}
	return n, addrPort(sa), nil
}

// Close releases the socket. Closing twice is a no-op.
func (u *UDPSocket) Close() error {
	u.fd.close()
	return nil
}
