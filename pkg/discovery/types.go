package discovery

import "time"

// RecordType is the DNS resource record type carried on an ActiveQuery or
// decoded from a Message.
type RecordType uint16

// Record types used by the scanner. Values follow RFC 1035/6762.
const (
	RecordTypeA    RecordType = 1
	RecordTypeAAAA RecordType = 28
	RecordTypePTR  RecordType = 12
	RecordTypeTXT  RecordType = 16
	RecordTypeSRV  RecordType = 33
	RecordTypeANY  RecordType = 255
)

// RecordClass is always IN for mDNS.
type RecordClass uint16

const RecordClassIN RecordClass = 1

// MessageType distinguishes the four mDNS message shapes the codec can
// produce or consume.
type MessageType uint8

const (
	MessageTypeQuery            MessageType = iota
	MessageTypeTruncatedQuery
	MessageTypeResponse
	MessageTypeTruncatedResponse
)

// Query is a single (name, type, class) triple, either outbound in an
// ActiveQuery or inbound in a decoded Message.
type Query struct {
	Name        string
	RecordType  RecordType
	RecordClass RecordClass
}

// Record is a decoded (or pending-to-encode) resource record.
type Record struct {
	Name        string
	RecordType  RecordType
	RecordClass RecordClass
	TTL         uint32 // seconds
	Value       any    // type-specific payload, see below
}

// SRVValue is the Value payload of an SRV record.
type SRVValue struct {
	Target string
	Port   uint16
}

// TXTValue is the Value payload of a TXT record: the raw key=value pairs,
// before TXT Parser decoding. They are held in a map, so their wire order
// is not kept.
type TXTValue struct {
	Pairs map[string]string
}

// AValue and AAAAValue carry a single address literal.
type AValue struct{ IP string }
type AAAAValue struct{ IP string }

// Message is the decoded/encoded shape exchanged with the Codec.
type Message struct {
	MessageType       MessageType
	TransactionID     uint16
	Queries           []Query
	Answers           []Record
	Authorities       []Record
	AdditionalRecords []Record
}

// Address is a single discovered endpoint for a device.
type Address struct {
	IP          string
	Port        uint16
	DiscoveredAt time.Time
	TTL         time.Duration
}

// DiscoveryData is the structured decode of a TXT record shared by both
// device classes, per spec §3/§4.2.
type DiscoveryData struct {
	SII int // session idle interval, ms
	SAI int // session active interval, ms
	SAT int // session active threshold, ms
	T   int // TCP support bitmap, clamped per §4.2
	ICD int // ICD operating mode
	VP  string
	DN  string
	RI  string
	PI  string
}

// OperationalDevice is a cached, already-commissioned Matter node.
type OperationalDevice struct {
	// DeviceIdentifier is the fully-qualified operational service
	// instance name; the cache's primary key.
	DeviceIdentifier string
	Addresses        map[string]Address
	DiscoveredAt     time.Time
	TTL              time.Duration
	DiscoveryData    DiscoveryData
}

// CommissionableDevice is a cached node offering itself for commissioning.
type CommissionableDevice struct {
	// DeviceIdentifier is the service instance name's leftmost label.
	DeviceIdentifier string
	Addresses        map[string]Address
	DiscoveredAt     time.Time
	TTL              time.Duration
	DiscoveryData    DiscoveryData

	D  uint16 // long discriminator
	SD uint8  // short discriminator, derived as (D>>8)&0xF if absent
	CM uint8  // commissioning mode: 0 none, 1 basic, 2 enhanced
	DT uint32 // device type
	V  uint16 // vendor id
	P  uint16 // product id
	VP string // raw "V+P" TXT value
}

// HasAddresses reports whether the device has at least one live address.
func (d *OperationalDevice) HasAddresses() bool    { return len(d.Addresses) > 0 }
func (d *CommissionableDevice) HasAddresses() bool { return len(d.Addresses) > 0 }

// ActiveQuery is the scheduler's bookkeeping for one in-flight query id.
type ActiveQuery struct {
	QueryID string
	Queries []Query
	// Answers is the append-only known-answer-suppression list submitted
	// on every subsequent broadcast for this query id.
	Answers []Record
}

// PredicateKind tags the variant of a commissionable search predicate.
type PredicateKind uint8

const (
	PredicateInstance PredicateKind = iota
	PredicateLongDiscriminator
	PredicateShortDiscriminator
	PredicateVendorProduct
	PredicateVendor
	PredicateDeviceType
	PredicateProduct
	PredicateAny
)

// Predicate selects commissionable devices by one partial key. Exactly
// the fields relevant to Kind are read.
type Predicate struct {
	Kind             PredicateKind
	InstanceID       string
	LongDiscriminator  uint16
	ShortDiscriminator uint8
	VendorID         uint16
	ProductID        uint16
	DeviceType       uint32
}
