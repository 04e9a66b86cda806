package discovery

import "strconv"

// Matter mDNS/DNS-SD service name constants. See spec §6.
const (
	// ServiceOperational is the QName suffix for commissioned nodes.
	ServiceOperational = "_matter._tcp.local"

	// ServiceCommissionable is the QName suffix for nodes offering
	// themselves for commissioning.
	ServiceCommissionable = "_matterc._udp.local"

	// MaxDiscriminator is the largest valid 12-bit long discriminator.
	MaxDiscriminator = 4095

	// MaxDeviceNameLength is the largest valid DN TXT value.
	MaxDeviceNameLength = 32

	// MaxMessageSize is the default ceiling for a single mDNS datagram;
	// oversized answer sets are fragmented across TruncatedQuery messages.
	MaxMessageSize = 1500

	// MulticastIPv4 and MulticastIPv6 are the mDNS group addresses.
	MulticastIPv4 = "224.0.0.251"
	MulticastIPv6 = "ff02::fb"

	// MulticastPort is the mDNS well-known port.
	MulticastPort = 5353

	// AnyCommissioningModeSubtype is the sentinel query id for "any
	// device currently in commissioning mode".
	AnyCommissioningModeSubtype = "_CM"
)

// OperationalInstanceName builds the fully-qualified operational service
// instance name from its hex-encoded operational id and node id.
func OperationalInstanceName(operationalIDHex, nodeIDHex string) string {
	return operationalIDHex + "-" + nodeIDHex + "." + ServiceOperational
}

// ShortDiscriminatorSubtype returns the "_S<value>" subtype filter.
func ShortDiscriminatorSubtype(sd uint8) string {
	return "_S" + strconv.FormatUint(uint64(sd), 10)
}

// LongDiscriminatorSubtype returns the "_L<value>" subtype filter.
func LongDiscriminatorSubtype(d uint16) string {
	return "_L" + strconv.FormatUint(uint64(d), 10)
}

// VendorIDSubtype returns the "_V<value>" subtype filter.
func VendorIDSubtype(vendorID uint16) string {
	return "_V" + strconv.FormatUint(uint64(vendorID), 10)
}

// DeviceTypeSubtype returns the "_T<value>" subtype filter.
func DeviceTypeSubtype(deviceType uint32) string {
	return "_T" + strconv.FormatUint(uint64(deviceType), 10)
}

// subServiceName qualifies a subtype filter into a full wire QName, e.g.
// "_L840" -> "_L840._sub._matterc._udp.local".
func subServiceName(subtype string) string {
	return subtype + "._sub." + ServiceCommissionable
}
