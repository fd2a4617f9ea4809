package sockets

import (
	"context"
	"io"
	"net/netip"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// TCPStream is a connection-oriented socket. The zero value is not usable,
// streams are obtained from NewTCPStream or TCPListener.Accept.
//
// A stream must not be used concurrently from multiple goroutines, with the
// exception of Close which may interrupt a blocked peer.
type TCPStream struct {
	fd socketFD
}

// NewTCPStream returns a stream in the disconnected state.
func NewTCPStream() *TCPStream {
	s := new(TCPStream)
	s.fd.init(-1)
	return s
}

func newTCPStream(fd int) *TCPStream {
	s := new(TCPStream)
	s.fd.init(fd)
	return s
}

// Fd returns the descriptor of the stream, or -1 when disconnected.
func (s *TCPStream) Fd() int { return s.fd.load() }

// Connect resolves host and establishes a connection to (host, port). Any
// previously established connection is closed first.
//
// A positive timeout bounds the connection attempt; the connect is then
// performed in non-blocking mode and completed with poll(2). A timeout of
// zero leaves the operating system defaults in charge.
func (s *TCPStream) Connect(host string, port int, timeout time.Duration) error {
	s.Close()
	if port <= 0 || port > 65535 {
		return os.NewSyscallError("connect", EINVAL)
	}
	addr, err := ResolveAddr(context.Background(), host)
	if err != nil {
		return err
	}
	sa, family := sockaddr(addr, port)

	fd, err := socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return os.NewSyscallError("socket", err)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err = connectDeadline(fd, sa, deadline); err != nil {
		closeTraceError(fd)
		return os.NewSyscallError("connect", err)
	}

	s.fd.init(fd)
	return nil
}

// connectDeadline performs the connect in non-blocking mode so an interrupted
// or slow attempt can be completed with waitConnect; a blocking connect that
// gets interrupted by a signal could not be retried safely.
func connectDeadline(fd int, sa unix.Sockaddr, deadline time.Time) error {
	if err := setNonblock(fd, true); err != nil {
		return err
	}
	switch err := connect(fd, sa); err {
	case nil, EISCONN:
	case EINPROGRESS, EINTR:
		if err := waitConnect(fd, deadline); err != nil {
			return err
		}
	default:
		return err
	}
	return setNonblock(fd, false)
}

// Send writes the whole buffer to the peer, looping on short writes.
func (s *TCPStream) Send(b []byte) error {
	fd := s.fd.acquire()
	if fd < 0 {
		return os.NewSyscallError("write", EBADF)
	}
	defer s.fd.release(fd)

	for len(b) > 0 {
		n, err := ignoreEINTR2(func() (int, error) { return unix.Write(fd, b) })
		if err != nil {
			return os.NewSyscallError("write", err)
		}
		b = b[n:]
	}
	return nil
}

// Receive reads up to len(b) bytes from the peer. It returns io.EOF once the
// peer has shut down its end of the connection.
func (s *TCPStream) Receive(b []byte) (int, error) {
	fd := s.fd.acquire()
	if fd < 0 {
		return 0, os.NewSyscallError("read", EBADF)
	}
	defer s.fd.release(fd)

	n, err := ignoreEINTR2(func() (int, error) { return unix.Read(fd, b) })
	if err != nil {
		return 0, os.NewSyscallError("read", err)
	}
	if n == 0 && len(b) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// SetBlocking switches the stream between blocking and non-blocking mode.
// Streams are blocking by default.
func (s *TCPStream) SetBlocking(block bool) error {
	fd := s.fd.acquire()
	if fd < 0 {
		return os.NewSyscallError("fcntl", EBADF)
	}
	defer s.fd.release(fd)
	return os.NewSyscallError("fcntl", setNonblock(fd, !block))
}

// SetTimeout bounds every subsequent Send and Receive call; an operation that
// makes no progress within d fails with EAGAIN. A zero duration removes the
// bound.
func (s *TCPStream) SetTimeout(d time.Duration) error {
	fd := s.fd.acquire()
	if fd < 0 {
		return os.NewSyscallError("setsockopt", EBADF)
	}
	defer s.fd.release(fd)

	if err := setsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, d); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := setsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, d); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}

// LocalAddr returns the local address of the stream, or the zero AddrPort
// when disconnected.
func (s *TCPStream) LocalAddr() netip.AddrPort {
	fd := s.fd.acquire()
	if fd < 0 {
		return netip.AddrPort{}
	}
	defer s.fd.release(fd)
	sa, err := getsockname(fd)
	if err != nil {
		return netip.AddrPort{}
	}
	return addrPort(sa)
}

// RemoteAddr returns the address of the peer, or the zero AddrPort when
// disconnected.
func (s *TCPStream) RemoteAddr() netip.AddrPort {
	fd := s.fd.acquire()
	if fd < 0 {
		return netip.AddrPort{}
	}
	defer s.fd.release(fd)
	sa, err := getpeername(fd)
	if err != nil {
		return netip.AddrPort{}
	}
	return addrPort(sa)
}

// Close terminates the connection and releases the descriptor. Closing a
// disconnected or already closed stream is a no-op.
func (s *TCPStream) Close() error {
	s.fd.close()
	return nil
}

// TCPListener is a socket accepting incoming TCP connections.
type TCPListener struct {
	fd socketFD
}

// ListenTCP binds a listening socket on the given port on all interfaces.
// Port 0 picks an ephemeral port, which Addr reports.
func ListenTCP(port int) (*TCPListener, error) {
	fd, err := socket(unix.AF_INET, unix.SOCK_STREAM, 0)
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
	if err := listen(fd, 128); err != nil {
		closeTraceError(fd)
		return nil, os.NewSyscallError("listen", err)
	}
	l := new(TCPListener)
	l.fd.init(fd)
	return l, nil
}

// Fd returns the descriptor of the listener, or -1 when closed.
func (l *TCPListener) Fd() int { return l.fd.load() }

// Addr returns the address the listener is bound to.
func (l *TCPListener) Addr() netip.AddrPort {
	fd := l.fd.acquire()
	if fd < 0 {
		return netip.AddrPort{}
	}
	defer l.fd.release(fd)
	sa, err := getsockname(fd)
	if err != nil {
		return netip.AddrPort{}
	}
	return addrPort(sa)
}

// Accept blocks until an incoming connection arrives and returns the
// connected stream.
func (l *TCPListener) Accept() (*TCPStream, error) {
	fd := l.fd.acquire()
	if fd < 0 {
		return nil, os.NewSyscallError("accept", EBADF)
	}
	defer l.fd.release(fd)

	conn, _, err := accept(fd)
	if err != nil {
		return nil, os.NewSyscallError("accept", err)
	}
	unix.CloseOnExec(conn)
	return newTCPStream(conn), nil
}

// Close releases the listening socket. Closing twice is a no-op.
func (l *TCPListener) Close() error {
	l.fd.close()
	return nil
}
