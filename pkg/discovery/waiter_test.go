package discovery

import (
	"testing"
	"time"
)

func TestWaiterRegistryFinishResolves(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	r := newWaiterRegistry(clock)
	f := r.register("q1", 0, true)
	r.finish("q1", true, false)
	res := <-f.ch
	if !res.resolved {
		t.Fatal("expected resolved=true")
	}
	if r.has("q1") {
		t.Fatal("expected waiter removed after finish")
	}
}

func TestWaiterRegistryIgnoresUpdatedRecordsWhenStreaming(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	r := newWaiterRegistry(clock)
	r.register("q1", 0, false) // resolveOnUpdatedRecords = false
	r.finish("q1", true, true) // isUpdatedRecord = true -> no-op
	if !r.has("q1") {
		t.Fatal("expected waiter to remain registered; update should not wake it")
	}
}

func TestWaiterRegistryTimeoutResolves(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	r := newWaiterRegistry(clock)
	f := r.register("q1", 5, true)
	clock.Advance(5 * time.Second)
	select {
	case res := <-f.ch:
		if !res.resolved {
			t.Fatal("timeout must resolve the future per §4.4")
		}
	default:
		t.Fatal("expected timer to have fired")
	}
}

func TestWaiterRegistryDrainResolvesOnlyTimeouts(t *testing.T) {
	clock := newFakeClock(time.Unix(0, 0))
	r := newWaiterRegistry(clock)
	withTimeout := r.register("q1", 5, true)
	withoutTimeout := r.register("q2", 0, true)
	r.drain()

	select {
	case res := <-withTimeout.ch:
		if !res.resolved {
			t.Fatal("expected resolved waiter with timeout")
		}
	default:
		t.Fatal("expected waiter with timeout to be resolved on drain")
	}

	select {
	case <-withoutTimeout.ch:
		t.Fatal("waiter without a timeout must be abandoned, not resolved")
	default:
	}
}
