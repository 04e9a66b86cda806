package discovery

import (
	"net"
	"sort"
	"strings"
)

// addressRank classifies an IP literal per §4.1: lower ranks sort first.
func addressRank(ipLiteral string) int {
	host := ipLiteral
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i]
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.To4() != nil {
		return 3 // IPv4 (or unparseable, treated as lowest priority)
	}
	if ip.IsLinkLocalUnicast() {
		return 1
	}
	if isUniqueLocal(ip) {
		return 0
	}
	return 2 // other IPv6
}

// isUniqueLocal reports fd00::/8 unique-local IPv6 addresses (RFC 4193).
func isUniqueLocal(ip net.IP) bool {
	return len(ip) == net.IPv6len && ip[0] == 0xfd
}

// SortAddresses orders entries by the Address Sorter rank in §4.1: IPv6
// unique-local, then IPv6 link-local, then other IPv6, then IPv4. Equal
// ranks keep their relative input order. The input slice is never
// mutated; a new slice is returned.
func SortAddresses(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)
	sort.SliceStable(out, func(i, j int) bool {
		return addressRank(out[i].IP) < addressRank(out[j].IP)
	})
	return out
}

// IPv4Addresses filters a sorted address list down to IPv4 entries.
func IPv4Addresses(addrs []Address) []Address {
	var out []Address
	for _, a := range addrs {
		if addressRank(a.IP) == 3 {
			out = append(out, a)
		}
	}
	return out
}

// IPv6Addresses filters a sorted address list down to IPv6 entries.
func IPv6Addresses(addrs []Address) []Address {
	var out []Address
	for _, a := range addrs {
		if addressRank(a.IP) != 3 {
			out = append(out, a)
		}
	}
	return out
}
