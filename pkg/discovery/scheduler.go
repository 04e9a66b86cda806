package discovery

import (
	"log/slog"
	"time"
)

const (
	initialQueryInterval = 1500 * time.Millisecond
	maxQueryInterval     = 3600 * time.Second
)

// scheduler owns the active query set and the single re-broadcast timer,
// per §4.5.
type scheduler struct {
	clock     Clock
	codec     Codec
	transport Transport
	logger    *slog.Logger

	active       map[string]*ActiveQuery
	nextInterval time.Duration
	timer        Timer
}

func newScheduler(clock Clock, codec Codec, transport Transport, logger *slog.Logger) *scheduler {
	return &scheduler{
		clock:        clock,
		codec:        codec,
		transport:    transport,
		logger:       logger,
		active:       make(map[string]*ActiveQuery),
		nextInterval: initialQueryInterval,
	}
}

// setQueryRecords installs or augments the query set for queryId per
// §4.5. Returns true if a broadcast was (re)armed.
func (s *scheduler) setQueryRecords(queryID string, queries []Query, knownAnswers []Record) bool {
	aq, existed := s.active[queryID]
	if !existed {
		aq = &ActiveQuery{QueryID: queryID}
		s.active[queryID] = aq
	}

	var fresh []Query
	for _, q := range queries {
		if !containsQuery(aq.Queries, q) {
			fresh = append(fresh, q)
		}
	}
	if existed && len(fresh) == 0 {
		// Caller still waits but no re-broadcast is scheduled.
		aq.Answers = append(aq.Answers, knownAnswers...)
		return false
	}
	aq.Queries = append(aq.Queries, fresh...)
	aq.Answers = append(aq.Answers, knownAnswers...)

	s.nextInterval = initialQueryInterval
	s.armTimer()
	s.broadcast()
	return true
}

// removeQuery deletes the entry for queryId; if no active queries remain,
// the timer is stopped and the interval reset.
func (s *scheduler) removeQuery(queryID string) {
	delete(s.active, queryID)
	if len(s.active) == 0 {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.nextInterval = initialQueryInterval
	}
}

func (s *scheduler) armTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.nextInterval, s.fire)
}

// fire is the timer callback: broadcast, then reschedule at the next
// back-off interval per §4.5's broadcast law.
func (s *scheduler) fire() {
	s.broadcast()
	next := s.nextInterval * 2
	if next > maxQueryInterval {
		next = maxQueryInterval
	}
	s.nextInterval = next
	if len(s.active) > 0 {
		s.armTimer()
	}
}

// broadcast flattens every active query and known answer, fragments them
// into successive messages bounded by MaxMessageSize, and sends each
// fragment through Transport. All but the last fragment use
// MessageTypeTruncatedQuery; the last uses MessageTypeQuery.
func (s *scheduler) broadcast() {
	if len(s.active) == 0 {
		return
	}

	var queries []Query
	var answers []Record
	for _, aq := range s.active {
		queries = append(queries, aq.Queries...)
		answers = append(answers, aq.Answers...)
	}

	emptyMsg := &Message{MessageType: MessageTypeQuery, Queries: queries}
	emptyEncoded, err := s.codec.Encode(emptyMsg)
	if err != nil {
		s.logf("encode empty query message failed", "error", err)
		return
	}
	baseLen := len(emptyEncoded)

	current := make([]Record, 0, len(answers))
	currentLen := baseLen

	flush := func(msgType MessageType) {
		msg := &Message{MessageType: msgType, Queries: queries, Answers: current}
		payload, err := s.codec.Encode(msg)
		if err != nil {
			s.logf("encode query fragment failed", "error", err)
			return
		}
		if err := s.transport.Send(payload); err != nil {
			s.logf("transport send failed", "error", err)
		}
	}

	for i, ans := range answers {
		encoded, err := s.codec.EncodeRecord(&ans)
		if err != nil {
			continue
		}
		if len(current) > 0 && currentLen+len(encoded) > MaxMessageSize {
			flush(MessageTypeTruncatedQuery)
			current = current[:0]
			currentLen = baseLen
		} else if len(current) == 0 && currentLen+len(encoded) > MaxMessageSize {
			// First answer alone exceeds the limit: send it anyway and
			// warn, per §4.5.3 — the protocol allows no smaller option.
			s.logf("oversized single known-answer sent without splitting", "index", i)
		}
		current = append(current, ans)
		currentLen += len(encoded)
	}

	flush(MessageTypeQuery)
}

func containsQuery(list []Query, q Query) bool {
	for _, existing := range list {
		if existing.Name == q.Name && existing.RecordType == q.RecordType && existing.RecordClass == q.RecordClass {
			return true
		}
	}
	return false
}

func (s *scheduler) logf(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
