package discovery

import "testing"

func TestSortAddressesRankOrder(t *testing.T) {
	in := []Address{
		{IP: "192.168.1.5"},
		{IP: "2001:db8::1"},       // other IPv6
		{IP: "fe80::1%eth0"},      // link-local
		{IP: "fd12::1"},           // unique-local
	}
	out := SortAddresses(in)
	want := []string{"fd12::1", "fe80::1%eth0", "2001:db8::1", "192.168.1.5"}
	for i, w := range want {
		if out[i].IP != w {
			t.Fatalf("position %d = %s, want %s (full: %+v)", i, out[i].IP, w, out)
		}
	}
}

func TestSortAddressesStableForEqualRank(t *testing.T) {
	in := []Address{{IP: "10.0.0.1"}, {IP: "10.0.0.2"}}
	out := SortAddresses(in)
	if out[0].IP != "10.0.0.1" || out[1].IP != "10.0.0.2" {
		t.Fatalf("stability broken: %+v", out)
	}
}

func TestSortAddressesDoesNotMutateInput(t *testing.T) {
	in := []Address{{IP: "192.168.1.5"}, {IP: "fd12::1"}}
	_ = SortAddresses(in)
	if in[0].IP != "192.168.1.5" {
		t.Fatal("input slice was mutated")
	}
}

func TestIPv4IPv6Filters(t *testing.T) {
	addrs := SortAddresses([]Address{{IP: "192.168.1.5"}, {IP: "fd12::1"}})
	if len(IPv4Addresses(addrs)) != 1 || len(IPv6Addresses(addrs)) != 1 {
		t.Fatalf("filter counts wrong: v4=%v v6=%v", IPv4Addresses(addrs), IPv6Addresses(addrs))
	}
}
