// Package netutil resolves scan targets to numeric addresses. The scan engine
// itself never resolves names; the CLI layer calls into this package before a
// scan configuration is built.
package netutil

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/miekg/dns"

	"github.com/mwestin/portsweep/internal/errors"
)

const resolvConfPath = "/etc/resolv.conf"

// Resolve turns a target (IP literal or hostname) into a numeric address.
// When ipv6 is true, AAAA records are preferred; otherwise A records.
// IP literals are returned as-is regardless of the ipv6 flag since the user
// has already made the family decision.
func Resolve(ctx context.Context, target string, ipv6 bool) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(target); err == nil {
		return addr.Unmap(), nil
	}

	if addr, err := resolveDNS(ctx, target, ipv6); err == nil {
		return addr, nil
	}

	// The direct DNS query can fail on hosts without a resolv.conf or with
	// split-horizon setups; fall back to the system resolver.
	return resolveSystem(ctx, target, ipv6)
}

// resolveDNS queries the configured nameserver directly.
func resolveDNS(ctx context.Context, target string, ipv6 bool) (netip.Addr, error) {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return netip.Addr{}, errors.ErrResolveFailed(target, err)
	}
	if len(conf.Servers) == 0 {
		return netip.Addr{}, errors.ErrResolveFailed(target, fmt.Errorf("no nameserver configured"))
	}
	server := net.JoinHostPort(conf.Servers[0], conf.Port)

	qtype := dns.TypeA
	if ipv6 {
		qtype = dns.TypeAAAA
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(target), qtype)

	client := new(dns.Client)
	resp, _, err := client.ExchangeContext(ctx, m, server)
	if err != nil {
		return netip.Addr{}, errors.ErrResolveFailed(target, err)
	}

	for _, rr := range resp.Answer {
		switch record := rr.(type) {
		case *dns.A:
			if !ipv6 {
				if addr, ok := netip.AddrFromSlice(record.A.To4()); ok {
					return addr, nil
				}
			}
		case *dns.AAAA:
			if ipv6 {
				if addr, ok := netip.AddrFromSlice(record.AAAA); ok {
					return addr, nil
				}
			}
		}
	}

	family := "A"
	if ipv6 {
		family = "AAAA"
	}
	return netip.Addr{}, errors.ErrResolveFailed(target,
		fmt.Errorf("no %s records found", family))
}

// resolveSystem uses the platform resolver.
func resolveSystem(ctx context.Context, target string, ipv6 bool) (netip.Addr, error) {
	network := "ip4"
	if ipv6 {
		network = "ip6"
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, network, target)
	if err != nil {
		return netip.Addr{}, errors.ErrResolveFailed(target, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, errors.ErrResolveFailed(target,
			fmt.Errorf("no addresses found for network %s", network))
	}
	return addrs[0].Unmap(), nil
}
