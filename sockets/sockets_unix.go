package sockets

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"golang.org/x/sys/unix"
)

const (
	EADDRNOTAVAIL = unix.EADDRNOTAVAIL
	EAFNOSUPPORT  = unix.EAFNOSUPPORT
	EAGAIN        = unix.EAGAIN
	EBADF         = unix.EBADF
	ECONNABORTED  = unix.ECONNABORTED
	ECONNREFUSED  = unix.ECONNREFUSED
	ECONNRESET    = unix.ECONNRESET
	EHOSTUNREACH  = unix.EHOSTUNREACH
	EINVAL        = unix.EINVAL
	EINTR         = unix.EINTR
	EINPROGRESS   = unix.EINPROGRESS
	EISCONN       = unix.EISCONN
	ENETUNREACH   = unix.ENETUNREACH
	ENOTCONN      = unix.ENOTCONN
	ETIMEDOUT     = unix.ETIMEDOUT
)

// This function is used to automatically retry syscalls when they return
// EINTR due to having handled a signal instead of executing. The callers of
// this package have no way to observe a partially executed operation, masking
// those errors keeps the blocking call model intact.
func ignoreEINTR(f func() error) error {
	for {
		if err := f(); err != EINTR {
			return err
		}
	}
}

func ignoreEINTR2[F func() (R, error), R any](f F) (R, error) {
	for {
		v, err := f()
		if err != EINTR {
			return v, err
		}
	}
}

func ignoreEINTR3[F func() (R1, R2, error), R1, R2 any](f F) (R1, R2, error) {
	for {
		v1, v2, err := f()
		if err != EINTR {
			return v1, v2, err
		}
	}
}

func (s *socketFD) release(fd int) {
	s.releaseFunc(fd, closeTraceError)
}

func (s *socketFD) close() {
	s.closeFunc(closeTraceError)
}

func closeTraceError(fd int) {
	if err := unix.Close(fd); err != nil {
		fmt.Fprintf(os.Stderr, "close(%d) => %s\n", fd, err)
		debug.PrintStack()
	}
}

func socket(family, socktype, protocol int) (int, error) {
	fd, err := ignoreEINTR2(func() (int, error) {
		return unix.Socket(family, socktype, protocol)
	})
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func bind(fd int, addr unix.Sockaddr) error {
	return ignoreEINTR(func() error { return unix.Bind(fd, addr) })
}

func listen(fd, backlog int) error {
	return ignoreEINTR(func() error { return unix.Listen(fd, backlog) })
}

func connect(fd int, addr unix.Sockaddr) error {
	return unix.Connect(fd, addr)
}

func accept(fd int) (int, unix.Sockaddr, error) {
	return ignoreEINTR3(func() (int, unix.Sockaddr, error) {
		return unix.Accept(fd)
	})
}

func getsockname(fd int) (unix.Sockaddr, error) {
	return ignoreEINTR2(func() (unix.Sockaddr, error) { return unix.Getsockname(fd) })
}

func getpeername(fd int) (unix.Sockaddr, error) {
	return ignoreEINTR2(func() (unix.Sockaddr, error) { return unix.Getpeername(fd) })
}

func getsockoptInt(fd, level, name int) (int, error) {
	return ignoreEINTR2(func() (int, error) { return unix.GetsockoptInt(fd, level, name) })
}

func setsockoptInt(fd, level, name, value int) error {
	return ignoreEINTR(func() error { return unix.SetsockoptInt(fd, level, name, value) })
}

func setsockoptTimeval(fd, level, name int, value time.Duration) error {
	tv := unix.NsecToTimeval(int64(value))
	return ignoreEINTR(func() error { return unix.SetsockoptTimeval(fd, level, name, &tv) })
}

func setNonblock(fd int, nonblock bool) error {
	return ignoreEINTR(func() error { return unix.SetNonblock(fd, nonblock) })
}

// waitConnect blocks until the descriptor is reported writable by poll(2) or
// the deadline is reached, then checks SO_ERROR to determine the outcome of a
// connection attempt started in non-blocking mode. A zero deadline leaves the
// wait unbounded; the kernel connect timeout still terminates it.
func waitConnect(fd int, deadline time.Time) error {
	for {
		timeout := -1
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ETIMEDOUT
			}
			timeout = int(remaining/time.Millisecond) + 1
		}
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(pfd, timeout)
		if err == EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ETIMEDOUT
		}
		value, err := getsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return err
		}
		switch unix.Errno(value) {
		case unix.Errno(0), EISCONN:
			// poll can wake up spuriously, make sure we are really
			// connected before reporting success.
			if _, err := getpeername(fd); err != nil {
				continue
			}
			return nil
		case EINPROGRESS, EINTR:
			continue
		default:
			return unix.Errno(value)
		}
	}
}
