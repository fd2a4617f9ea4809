package sockets

import (
	"context"
	"net"
	"net/netip"
)

// Resolver is the interface used to turn host names into IP addresses.
//
// net.Resolver is a valid implementation of this interface.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// DefaultResolver is the resolver used by ResolveAddr. Programs may swap it
// for a custom implementation before issuing lookups.
var DefaultResolver Resolver = net.DefaultResolver

// ResolveAddr resolves a host name or IP literal to a single address,
// preferring IPv4 results when both families are available.
func ResolveAddr(ctx context.Context, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap(), nil
	}
	ips, err := DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(ips) == 0 {
		return netip.Addr{}, &net.DNSError{
			Err:        "no addresses returned",
			Name:       host,
			IsNotFound: true,
		}
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return netip.AddrFrom4([4]byte(ip4)), nil
		}
	}
	return netip.AddrFrom16([16]byte(ips[0].To16())).Unmap(), nil
}
