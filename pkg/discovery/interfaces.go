package discovery

import "time"

// TransportConfig configures a Transport's multicast membership.
type TransportConfig struct {
	// NetInterface names the interface to bind; empty selects all
	// multicast-capable interfaces.
	NetInterface string

	// BroadcastAddressIPv4 and BroadcastAddressIPv6 default to the mDNS
	// well-known groups when empty.
	BroadcastAddressIPv4 string
	BroadcastAddressIPv6 string

	// ListeningPort defaults to MulticastPort when zero.
	ListeningPort int
}

// MessageHandler receives one inbound datagram, already tagged with its
// source address and the interface it arrived on.
type MessageHandler func(payload []byte, remoteIP string, ifaceName string)

// Transport is the external collaborator that owns the UDP multicast
// socket. The scanner never touches a socket directly.
type Transport interface {
	OnMessage(handler MessageHandler)
	Send(payload []byte) error
	Close() error
}

// Codec is the external collaborator that marshals and unmarshals the
// wire shapes defined in §6. Decode returns (nil, nil) on parse failure —
// the caller treats that as a parse failure and silently drops the packet.
type Codec interface {
	Encode(msg *Message) ([]byte, error)
	EncodeRecord(rec *Record) ([]byte, error)
	Decode(payload []byte) (*Message, error)
}

// Clock is the external collaborator for monotonic time and timers, so
// tests can drive the scheduler and cache expiry deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration, f func()) Ticker
}

// Timer is a cancelable one-shot callback.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker is a cancelable periodic callback.
type Ticker interface {
	Stop()
}
