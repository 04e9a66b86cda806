package discovery

import (
	"net"
	"strings"

	"github.com/miekg/dns"
)

// dnsCodec is the production Codec, built directly on github.com/miekg/dns
// for wire marshalling rather than delegating to a higher-level mDNS
// library that would hide the message shape from the scheduler and
// correlator.
type dnsCodec struct{}

func newDNSCodec() Codec { return dnsCodec{} }

func (dnsCodec) Encode(msg *Message) ([]byte, error) {
	m := &dns.Msg{}
	m.Id = msg.TransactionID
	m.Response = msg.MessageType == MessageTypeResponse || msg.MessageType == MessageTypeTruncatedResponse
	m.Truncated = msg.MessageType == MessageTypeTruncatedQuery || msg.MessageType == MessageTypeTruncatedResponse

	for _, q := range msg.Queries {
		m.Question = append(m.Question, dns.Question{
			Name:   dns.Fqdn(q.Name),
			Qtype:  uint16(q.RecordType),
			Qclass: uint16(q.RecordClass),
		})
	}
	for _, r := range msg.Answers {
		if rr := recordToRR(&r); rr != nil {
			m.Answer = append(m.Answer, rr)
		}
	}
	for _, r := range msg.Authorities {
		if rr := recordToRR(&r); rr != nil {
			m.Ns = append(m.Ns, rr)
		}
	}
	for _, r := range msg.AdditionalRecords {
		if rr := recordToRR(&r); rr != nil {
			m.Extra = append(m.Extra, rr)
		}
	}
	return m.Pack()
}

// EncodeRecord packs a standalone resource record. The scheduler uses
// its length purely as a size estimate for message fragmentation.
func (dnsCodec) EncodeRecord(rec *Record) ([]byte, error) {
	rr := recordToRR(rec)
	if rr == nil {
		return nil, nil
	}
	buf := make([]byte, dns.Len(rr)+64)
	n, err := dns.PackRR(rr, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (dnsCodec) Decode(payload []byte) (*Message, error) {
	m := new(dns.Msg)
	if err := m.Unpack(payload); err != nil {
		return nil, nil // ParseFailure per §7: silently dropped.
	}

	msg := &Message{TransactionID: m.Id}
	switch {
	case m.Response && m.Truncated:
		msg.MessageType = MessageTypeTruncatedResponse
	case m.Response:
		msg.MessageType = MessageTypeResponse
	case m.Truncated:
		msg.MessageType = MessageTypeTruncatedQuery
	default:
		msg.MessageType = MessageTypeQuery
	}

	for _, q := range m.Question {
		msg.Queries = append(msg.Queries, Query{
			Name:        strings.TrimSuffix(q.Name, "."),
			RecordType:  RecordType(q.Qtype),
			RecordClass: RecordClass(q.Qclass),
		})
	}
	msg.Answers = rrsToRecords(m.Answer)
	msg.Authorities = rrsToRecords(m.Ns)
	msg.AdditionalRecords = rrsToRecords(m.Extra)

	return msg, nil
}

func recordToRR(rec *Record) dns.RR {
	hdr := dns.RR_Header{
		Name:   dns.Fqdn(rec.Name),
		Rrtype: uint16(rec.RecordType),
		Class:  uint16(rec.RecordClass),
		Ttl:    rec.TTL,
	}
	switch rec.RecordType {
	case RecordTypeA:
		v, ok := rec.Value.(AValue)
		if !ok {
			return nil
		}
		return &dns.A{Hdr: hdr, A: net.ParseIP(v.IP)}
	case RecordTypeAAAA:
		v, ok := rec.Value.(AAAAValue)
		if !ok {
			return nil
		}
		return &dns.AAAA{Hdr: hdr, AAAA: net.ParseIP(v.IP)}
	case RecordTypeSRV:
		v, ok := rec.Value.(SRVValue)
		if !ok {
			return nil
		}
		return &dns.SRV{Hdr: hdr, Target: dns.Fqdn(v.Target), Port: v.Port}
	case RecordTypeTXT:
		v, ok := rec.Value.(TXTValue)
		if !ok {
			return nil
		}
		var pairs []string
		for k, val := range v.Pairs {
			pairs = append(pairs, k+"="+val)
		}
		return &dns.TXT{Hdr: hdr, Txt: pairs}
	case RecordTypePTR:
		target, _ := rec.Value.(string)
		return &dns.PTR{Hdr: hdr, Ptr: dns.Fqdn(target)}
	default:
		return nil
	}
}

func rrsToRecords(rrs []dns.RR) []Record {
	var out []Record
	for _, rr := range rrs {
		rec := rrToRecord(rr)
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

func rrToRecord(rr dns.RR) *Record {
	hdr := rr.Header()
	base := Record{
		Name:        strings.TrimSuffix(hdr.Name, "."),
		RecordType:  RecordType(hdr.Rrtype),
		RecordClass: RecordClass(hdr.Class),
		TTL:         hdr.Ttl,
	}
	switch v := rr.(type) {
	case *dns.A:
		base.Value = AValue{IP: v.A.String()}
	case *dns.AAAA:
		base.Value = AAAAValue{IP: v.AAAA.String()}
	case *dns.SRV:
		base.Value = SRVValue{Target: strings.TrimSuffix(v.Target, "."), Port: v.Port}
	case *dns.TXT:
		pairs := make(map[string]string, len(v.Txt))
		for _, kv := range v.Txt {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				pairs[kv[:i]] = kv[i+1:]
			}
		}
		base.Value = TXTValue{Pairs: pairs}
	case *dns.PTR:
		base.Value = strings.TrimSuffix(v.Ptr, ".")
	default:
		return nil
	}
	return &base
}
