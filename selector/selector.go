// Package selector implements a level-triggered readiness multiplexer over
// heterogeneous sockets, built on select(2).
//
// A Selector holds a set of socket descriptors and blocks in Wait until at
// least one of them is readable or a deadline expires. After a successful
// Wait, per-member readiness is answered by IsReady until the member set is
// mutated or Wait is called again.
package selector

import (
	"time"

	"golang.org/x/sys/unix"
)

// fdSetSize is the capacity of unix.FdSet (FD_SETSIZE) on the supported
// platforms; descriptors at or above this value cannot be submitted to
// select(2).
const fdSetSize = 1024

// Socket is the interface of selectable sockets. The selector treats the
// descriptor as the canonical identity of a member, so all socket kinds
// (listeners, streams, datagram sockets) are handled uniformly.
type Socket interface {
	Fd() int
}

// Selector multiplexes readiness over a set of sockets.
//
// A Selector is not safe for concurrent use; callers that mutate the set
// while another goroutine waits must serialize externally.
type Selector struct {
	members map[int]struct{}
	maxfd   int
	ready   unix.FdSet
	armed   bool
}

// New returns an empty selector.
func New() *Selector {
	return &Selector{members: make(map[int]struct{})}
}

// Copy returns an independent selector holding the same members. The
// readiness state is not carried over; the copy reports no member ready
// until its own Wait succeeds.
func (s *Selector) Copy() *Selector {
	c := New()
	for fd := range s.members {
		c.members[fd] = struct{}{}
	}
	c.maxfd = s.maxfd
	return c
}

// Add registers a socket with the selector. Nil sockets and descriptors that
// cannot be submitted to select(2) are silently ignored; adding a member
// twice is a no-op.
func (s *Selector) Add(sock Socket) {
	if sock == nil {
		return
	}
	fd := sock.Fd()
	if fd < 0 || fd >= fdSetSize {
		return
	}
	s.armed = false
	s.members[fd] = struct{}{}
	if fd > s.maxfd {
		s.maxfd = fd
	}
}

// Remove unregisters a socket. Removing a non-member is a no-op.
func (s *Selector) Remove(sock Socket) {
	if sock == nil {
		return
	}
	fd := sock.Fd()
	if _, ok := s.members[fd]; !ok {
		return
	}
	s.armed = false
	delete(s.members, fd)
	if fd == s.maxfd {
		s.maxfd = 0
		for fd := range s.members {
			if fd > s.maxfd {
				s.maxfd = fd
			}
		}
	}
}

// Clear empties the member set.
func (s *Selector) Clear() {
	s.armed = false
	s.members = make(map[int]struct{})
	s.maxfd = 0
}

// Len returns the number of members.
func (s *Selector) Len() int { return len(s.members) }

// Wait blocks until at least one member is readable or the timeout elapses,
// and reports whether any member became ready. A timeout of zero (or
// negative) blocks indefinitely.
//
// Platform errors during the wait are indistinguishable from a timeout:
// the call returns false and the caller recovers by waiting again.
func (s *Selector) Wait(timeout time.Duration) bool {
	s.armed = false

	// select(2) consumes and overwrites its argument, so a fresh set is
	// built from the members on every call.
	var rset unix.FdSet
	for fd := range s.members {
		rset.Set(fd)
	}

	var tv *unix.Timeval
	if timeout > 0 {
		t := unix.NsecToTimeval(int64(timeout))
		tv = &t
	}

	n, err := unix.Select(s.maxfd+1, &rset, nil, nil, tv)
	if err != nil || n <= 0 {
		return false
	}
	s.ready = rset
	s.armed = true
	return true
}

// IsReady reports whether the socket was reported readable by the last
// successful Wait. It returns false for non-members, when no Wait succeeded,
// or when the member set was mutated since.
func (s *Selector) IsReady(sock Socket) bool {
	if !s.armed || sock == nil {
		return false
	}
	fd := sock.Fd()
	if _, ok := s.members[fd]; !ok {
		return false
	}
	return s.ready.IsSet(fd)
}
