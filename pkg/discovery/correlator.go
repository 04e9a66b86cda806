package discovery

import (
	"strconv"
	"strings"
)

// correlator ingests decoded responses, classifies them, updates the
// cache, installs follow-up address queries, and wakes waiters, per §4.6.
type correlator struct {
	cache      *cache
	scheduler  *scheduler
	waiters    *waiterRegistry
	enableIPv4 bool

	// queryMissingDataForInstances tracks commissionable instance ids
	// that were just created with no addresses, per §4.6.2.
	queryMissingDataForInstances map[string]bool
}

func newCorrelator(c *cache, s *scheduler, w *waiterRegistry, enableIPv4 bool) *correlator {
	return &correlator{
		cache:                        c,
		scheduler:                    s,
		waiters:                      w,
		enableIPv4:                   enableIPv4,
		queryMissingDataForInstances: make(map[string]bool),
	}
}

// handleMessage processes one decoded datagram per §4.6.
func (c *correlator) handleMessage(msg *Message, remoteIP, ifaceName string) {
	if msg.MessageType != MessageTypeResponse && msg.MessageType != MessageTypeTruncatedResponse {
		return
	}

	answers := append(append([]Record{}, msg.Answers...), msg.AdditionalRecords...)
	formerAnswers := c.formerAnswers()

	if c.handleOperational(answers, formerAnswers, ifaceName) {
		return
	}
	c.handleCommissionable(answers, formerAnswers, ifaceName)
}

func (c *correlator) formerAnswers() []Record {
	var out []Record
	for _, aq := range c.scheduler.active {
		out = append(out, aq.Answers...)
	}
	return out
}

// handleOperational implements §4.6.1. Returns true if any operational
// record was handled (a single packet never mixes services at this
// layer, so the caller must not also run the commissionable path).
func (c *correlator) handleOperational(answers, formerAnswers []Record, ifaceName string) bool {
	handled := false

	for _, rec := range answers {
		if rec.RecordType != RecordTypeTXT || !strings.HasSuffix(rec.Name, ServiceOperational) {
			continue
		}
		handled = true
		txt, _ := rec.Value.(TXTValue)
		parsed := ParseTXT(txt.Pairs)
		c.cache.upsertOperationalTxt(rec.Name, rec.TTL, parsed.Data)
	}

	for _, rec := range answers {
		if rec.RecordType != RecordTypeSRV || !strings.HasSuffix(rec.Name, ServiceOperational) {
			continue
		}
		handled = true
		srv, _ := rec.Value.(SRVValue)
		deviceExistedBefore := false
		if dev, ok := c.cache.operational[rec.Name]; ok {
			deviceExistedBefore = dev.HasAddresses()
		}
		if rec.TTL == 0 {
			c.cache.upsertOperationalSrv(rec.Name, 0, "", 0, nil, c.enableIPv4, ifaceName)
			continue
		}
		combined := append(append([]Record{}, answers...), formerAnswers...)
		c.cache.upsertOperationalSrv(rec.Name, rec.TTL, srv.Target, srv.Port, combined, c.enableIPv4, ifaceName)

		dev := c.cache.operational[rec.Name]
		if dev != nil && !dev.HasAddresses() {
			if c.waiters.has(rec.Name) {
				c.installAddressFollowUp(rec.Name, srv.Target, answers)
			}
		} else if dev != nil {
			c.waiters.finish(rec.Name, true, deviceExistedBefore)
		}
	}

	return handled
}

// installAddressFollowUp issues a follow-up AAAA (plus A if enabled)
// query bound under the given query id, per §4.6.1/invariant 3.
func (c *correlator) installAddressFollowUp(queryID, target string, knownAnswers []Record) {
	queries := []Query{{Name: target, RecordType: RecordTypeAAAA, RecordClass: RecordClassIN}}
	if c.enableIPv4 {
		queries = append(queries, Query{Name: target, RecordType: RecordTypeA, RecordClass: RecordClassIN})
	}
	c.scheduler.setQueryRecords(queryID, queries, knownAnswers)
}

// handleCommissionable implements §4.6.2.
func (c *correlator) handleCommissionable(answers, formerAnswers []Record, ifaceName string) {
	var txtRecords, srvRecords []Record
	for _, rec := range answers {
		if !strings.HasSuffix(rec.Name, ServiceCommissionable) {
			continue
		}
		switch rec.RecordType {
		case RecordTypeTXT:
			txtRecords = append(txtRecords, rec)
		case RecordTypeSRV:
			srvRecords = append(srvRecords, rec)
		}
	}

	for _, rec := range txtRecords {
		if rec.TTL == 0 {
			instanceID := leadingLabel(rec.Name)
			c.cache.upsertCommissionableTxt(rec.Name, 0, ParsedTXT{})
			delete(c.queryMissingDataForInstances, instanceID)
			continue
		}
		txt, _ := rec.Value.(TXTValue)
		parsed := ParseTXT(txt.Pairs)
		instanceID, createdEmpty, stored := c.cache.upsertCommissionableTxt(rec.Name, rec.TTL, parsed)
		if stored && createdEmpty {
			c.queryMissingDataForInstances[instanceID] = true
		}
	}

	for _, rec := range srvRecords {
		instanceID := leadingLabel(rec.Name)
		if rec.TTL == 0 {
			c.cache.upsertCommissionableSrv(instanceID, 0, "", 0, nil, c.enableIPv4, ifaceName)
			delete(c.queryMissingDataForInstances, instanceID)
			continue
		}
		srv, _ := rec.Value.(SRVValue)
		combined := append(append([]Record{}, answers...), formerAnswers...)
		hadAddressesBefore, stored := c.cache.upsertCommissionableSrv(instanceID, rec.TTL, srv.Target, srv.Port, combined, c.enableIPv4, ifaceName)
		if !stored {
			continue
		}
		dev := c.cache.commissionable[instanceID]
		if dev == nil || !dev.HasAddresses() {
			if qid, ok := c.findActiveQueryID(dev); ok {
				c.installAddressFollowUp(qid, srv.Target, answers)
			}
			continue
		}
		delete(c.queryMissingDataForInstances, instanceID)
		if qid, ok := c.findActiveQueryID(dev); ok {
			c.waiters.finish(qid, true, hadAddressesBefore)
		}
	}

	for instanceID := range c.queryMissingDataForInstances {
		dev := c.cache.commissionable[instanceID]
		if dev == nil {
			continue
		}
		if qid, ok := c.findActiveQueryID(dev); ok {
			c.scheduler.setQueryRecords(qid, []Query{{Name: dev.DeviceIdentifier + "." + ServiceCommissionable, RecordType: RecordTypeANY, RecordClass: RecordClassIN}}, nil)
		}
	}
}

// findActiveQueryID implements §4.6.5: try each candidate identifier in
// order and return the first for which an ActiveQuery exists.
func (c *correlator) findActiveQueryID(dev *CommissionableDevice) (string, bool) {
	if dev == nil {
		return "", false
	}
	candidates := []string{
		dev.DeviceIdentifier,
		LongDiscriminatorSubtype(dev.D),
		ShortDiscriminatorSubtype(dev.SD),
	}
	if dev.V != 0 || dev.P != 0 {
		candidates = append(candidates, VendorProductKey(dev.V, dev.P))
	}
	candidates = append(candidates,
		VendorIDSubtype(dev.V),
		DeviceTypeSubtype(dev.DT),
		ProductSubtype(dev.P),
		AnyCommissioningModeSubtype,
	)
	for _, id := range candidates {
		if _, ok := c.scheduler.active[id]; ok {
			return id, true
		}
	}
	return "", false
}

// ProductSubtype is the internal (non-wire) key form for a bare product
// id predicate; per §6 it falls back to the enclosing sub-service on the
// wire.
func ProductSubtype(p uint16) string {
	return "_P" + strconv.Itoa(int(p))
}

// VendorProductKey is the internal (non-wire) key form for a combined
// vendor+product predicate; per §6 it falls back to the enclosing
// sub-service on the wire.
func VendorProductKey(v, p uint16) string {
	return "_VP" + strconv.Itoa(int(v)) + "+" + strconv.Itoa(int(p))
}
