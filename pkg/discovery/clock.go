package discovery

import "time"

// systemClock is the production Clock, backed directly by the time
// package. No pack example wraps a clock interface around anything but
// the standard library, so this stays stdlib-only; see DESIGN.md.
type systemClock struct{}

func newSystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return &stdTimer{t: time.AfterFunc(d, f)}
}

func (systemClock) NewTicker(d time.Duration, f func()) Ticker {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				f()
			case <-done:
				return
			}
		}
	}()
	return &stdTicker{t: t, done: done}
}

type stdTimer struct{ t *time.Timer }

func (s *stdTimer) Stop() bool               { return s.t.Stop() }
func (s *stdTimer) Reset(d time.Duration) bool { return s.t.Reset(d) }

type stdTicker struct {
	t    *time.Ticker
	done chan struct{}
}

func (s *stdTicker) Stop() {
	s.t.Stop()
	close(s.done)
}
