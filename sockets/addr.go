package sockets

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

func sockaddr(addr netip.Addr, port int) (unix.Sockaddr, int) {
	if addr.Is4() || addr.Is4In6() {
		sa := &unix.SockaddrInet4{Port: port, Addr: addr.Unmap().As4()}
		return sa, unix.AF_INET
	}
	sa := &unix.SockaddrInet6{Port: port, Addr: addr.As16()}
	return sa, unix.AF_INET6
}

func addrPort(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port))
	default:
		return netip.AddrPort{}
	}
}
