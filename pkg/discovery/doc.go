// Package discovery implements the Matter mDNS Scanner: a concurrent,
// event-driven DNS-SD state machine that discovers operational nodes
// (already commissioned into a fabric) and commissionable nodes
// (available for commissioning) on the local network.
//
// The scanner owns query scheduling (exponential back-off re-broadcast,
// known-answer suppression, message fragmentation), inbound-record
// correlation, a TTL-indexed device/address cache, and a registry of
// callers awaiting a specific discovery criterion. It depends on three
// small external interfaces — Transport, Codec, Clock — so that the wire
// codec and UDP transport can be swapped or mocked in tests.
//
// It does not implement the Matter advertiser (responder) side, does not
// act as a general-purpose mDNS resolver, and does not persist discovery
// state across restarts.
package discovery
