package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

func TestSchedulerBackOffDoublesUpToCap(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	transport := newMockTransport()
	codec := newMockCodec()
	s := newScheduler(clock, codec, transport, nil)

	s.setQueryRecords("q1", []Query{{Name: ServiceCommissionable, RecordType: RecordTypePTR, RecordClass: RecordClassIN}}, nil)
	if s.nextInterval != initialQueryInterval {
		t.Fatalf("nextInterval = %v, want %v", s.nextInterval, initialQueryInterval)
	}

	// Back-off law (invariant 4): 1.5, 3, 6, 12, 24, ... capped at 3600s.
	want := []time.Duration{3 * time.Second, 6 * time.Second, 12 * time.Second}
	for _, w := range want {
		clock.Advance(s.nextInterval)
		if s.nextInterval != w {
			t.Fatalf("nextInterval = %v, want %v", s.nextInterval, w)
		}
	}

	// Drive to the cap.
	for i := 0; i < 20; i++ {
		clock.Advance(s.nextInterval)
	}
	if s.nextInterval != maxQueryInterval {
		t.Fatalf("nextInterval = %v, want cap %v", s.nextInterval, maxQueryInterval)
	}
}

func TestSchedulerSetQueryRecordsResetsInterval(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	transport := newMockTransport()
	codec := newMockCodec()
	s := newScheduler(clock, codec, transport, nil)

	s.setQueryRecords("q1", []Query{{Name: "a", RecordType: RecordTypePTR}}, nil)
	clock.Advance(s.nextInterval) // nextInterval is now 3s
	s.setQueryRecords("q1", []Query{{Name: "b", RecordType: RecordTypePTR}}, nil)
	if s.nextInterval != initialQueryInterval {
		t.Fatalf("expected reset to %v, got %v", initialQueryInterval, s.nextInterval)
	}
}

func TestSchedulerSetQueryRecordsNoOpWhenNoNewQueries(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	transport := newMockTransport()
	codec := newMockCodec()
	s := newScheduler(clock, codec, transport, nil)

	q := Query{Name: "a", RecordType: RecordTypePTR}
	s.setQueryRecords("q1", []Query{q}, nil)
	clock.Advance(s.nextInterval) // 3s
	rebroadcast := s.setQueryRecords("q1", []Query{q}, nil)
	if rebroadcast {
		t.Fatal("expected no-op when the query set is unchanged")
	}
	if s.nextInterval != 3*time.Second {
		t.Fatalf("interval should not reset on a no-op, got %v", s.nextInterval)
	}
}

func TestSchedulerRemoveQueryStopsTimerWhenEmpty(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	transport := newMockTransport()
	codec := newMockCodec()
	s := newScheduler(clock, codec, transport, nil)

	s.setQueryRecords("q1", []Query{{Name: "a", RecordType: RecordTypePTR}}, nil)
	s.removeQuery("q1")
	if s.timer != nil {
		t.Fatal("expected timer stopped when no active queries remain")
	}
	if s.nextInterval != initialQueryInterval {
		t.Fatal("expected interval reset after last query removed")
	}
}

func TestSchedulerFragmentsOversizedAnswerSet(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	transport := newMockTransport()
	codec := &mockCodec{}
	// Empty message encodes small; each answer record encodes at 600
	// bytes, forcing a split well before 1500 bytes per fragment.
	codec.On("Encode", mock.Anything).Return(make([]byte, 50), nil)
	codec.On("EncodeRecord", mock.Anything).Return(make([]byte, 600), nil)

	s := newScheduler(clock, codec, transport, nil)
	answers := make([]Record, 60)
	for i := range answers {
		answers[i] = Record{Name: "x", RecordType: RecordTypeTXT}
	}

	transport.On("Send", mock.Anything).Return(nil)
	s.active["q1"] = &ActiveQuery{
		QueryID: "q1",
		Queries: []Query{{Name: ServiceCommissionable, RecordType: RecordTypePTR}},
		Answers: answers,
	}
	s.broadcast()

	sendCalls := 0
	for _, c := range transport.Calls {
		if c.Method == "Send" {
			sendCalls++
		}
	}
	if sendCalls < 2 {
		t.Fatalf("expected the oversized answer set to fragment into multiple sends, got %d", sendCalls)
	}
}
