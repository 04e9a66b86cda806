package discovery

import (
	"testing"
	"time"
)

func TestUpsertOperationalTxtZeroTTLRemoves(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	c.upsertOperationalTxt("op1", 120, DiscoveryData{SII: 1})
	if _, ok := c.operational["op1"]; !ok {
		t.Fatal("expected entry after upsert")
	}
	c.upsertOperationalTxt("op1", 0, DiscoveryData{})
	if _, ok := c.operational["op1"]; ok {
		t.Fatal("expected entry removed on TTL 0 (invariant 2)")
	}
}

func TestUpsertOperationalSrvAppliesAddresses(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	c.upsertOperationalTxt("op1", 120, DiscoveryData{})
	records := []Record{
		{Name: "target.local", RecordType: RecordTypeAAAA, TTL: 120, Value: AAAAValue{IP: "fe80::1"}},
	}
	c.upsertOperationalSrv("op1", 120, "target.local", 5540, records, true, "eth0")
	dev := c.operational["op1"]
	if dev == nil || len(dev.Addresses) != 1 {
		t.Fatalf("expected 1 address, got %+v", dev)
	}
	if _, ok := dev.Addresses["fe80::1%eth0"]; !ok {
		t.Fatalf("expected link-local address tagged with interface, got %+v", dev.Addresses)
	}
}

func TestUpsertOperationalSrvIgnoresIPv4WhenDisabled(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	c.upsertOperationalTxt("op1", 120, DiscoveryData{})
	records := []Record{
		{Name: "target.local", RecordType: RecordTypeA, TTL: 120, Value: AValue{IP: "10.0.0.1"}},
	}
	c.upsertOperationalSrv("op1", 120, "target.local", 5540, records, false, "")
	dev := c.operational["op1"]
	if dev == nil || len(dev.Addresses) != 0 {
		t.Fatalf("expected no addresses with IPv4 disabled, got %+v", dev)
	}
}

func TestExpireSweepRemovesLapsedDevices(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	c.upsertOperationalTxt("op1", 1, DiscoveryData{}) // 1s TTL
	clock.Advance(2 * time.Second)
	c.expireSweep(clock.Now())
	if _, ok := c.operational["op1"]; ok {
		t.Fatal("expected device removed after TTL lapsed")
	}
}

func TestExpireSweepRemovesDeviceWithNoLiveAddresses(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	c.upsertOperationalTxt("op1", 120, DiscoveryData{}) // long device TTL
	records := []Record{
		{Name: "target.local", RecordType: RecordTypeAAAA, TTL: 1, Value: AAAAValue{IP: "fe80::1"}},
	}
	c.upsertOperationalSrv("op1", 120, "target.local", 5540, records, true, "eth0")
	if dev := c.operational["op1"]; dev == nil || len(dev.Addresses) != 1 {
		t.Fatalf("expected 1 address before expiry, got %+v", dev)
	}

	clock.Advance(2 * time.Second) // address TTL lapses, device TTL does not
	c.expireSweep(clock.Now())
	if _, ok := c.operational["op1"]; ok {
		t.Fatal("expected device removed once its last address expired (invariant 2)")
	}
}

func TestUpsertCommissionableTxtRequiresDAndCM(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	parsed := ParseTXT(map[string]string{"DN": "lamp"}) // no D/CM
	_, _, stored := c.upsertCommissionableTxt("abc123._matterc._udp.local", 120, parsed)
	if stored {
		t.Fatal("expected parse failure to discard the record per §4.2")
	}

	parsed = ParseTXT(map[string]string{"D": "3840", "CM": "2"})
	id, createdEmpty, stored := c.upsertCommissionableTxt("abc123._matterc._udp.local", 120, parsed)
	if !stored || !createdEmpty || id != "abc123" {
		t.Fatalf("got id=%s createdEmpty=%v stored=%v", id, createdEmpty, stored)
	}
	dev := c.commissionable["abc123"]
	if dev.SD != ShortDiscriminator(3840) {
		t.Fatalf("SD not derived: %d", dev.SD)
	}
}

func TestQueryCommissionableByVendor(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	c := newCache(clock)
	parsed := ParseTXT(map[string]string{"D": "3840", "CM": "2", "VP": "65521+32768"})
	c.upsertCommissionableTxt("abc123._matterc._udp.local", 120, parsed)

	devs := c.queryCommissionable(Predicate{Kind: PredicateVendor, VendorID: 65521})
	if len(devs) != 1 {
		t.Fatalf("expected 1 match, got %d", len(devs))
	}
	devs = c.queryCommissionable(Predicate{Kind: PredicateVendor, VendorID: 1})
	if len(devs) != 0 {
		t.Fatalf("expected 0 match, got %d", len(devs))
	}
}
