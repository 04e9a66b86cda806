package discovery

// waiterResult is delivered to a Future when a waiter finishes.
type waiterResult struct {
	resolved        bool
	isUpdatedRecord bool
}

// future is a one-shot signal a caller blocks on.
type future struct {
	ch chan waiterResult
}

func newFuture() *future {
	return &future{ch: make(chan waiterResult, 1)}
}

// wait blocks until the future is signalled and returns the result it was
// finished with. A waiter without a timeout that is abandoned on Close is
// never signalled, so wait on its future does not return.
func (f *future) wait() waiterResult {
	return <-f.ch
}

type waiterEntry struct {
	queryID                 string
	future                  *future
	timer                   Timer
	resolveOnUpdatedRecords bool
	hasTimeout              bool
}

// waiterRegistry maps pending awaits keyed by query id, per §4.4.
type waiterRegistry struct {
	clock   Clock
	waiters map[string]*waiterEntry
}

func newWaiterRegistry(clock Clock) *waiterRegistry {
	return &waiterRegistry{clock: clock, waiters: make(map[string]*waiterEntry)}
}

// register creates exactly one pending future per queryId. A second
// register for the same id replaces the previous one without resolving
// it (the previous caller is expected to have already returned or is
// about to be replaced atomically by the same logical step).
func (r *waiterRegistry) register(queryID string, timeoutSeconds float64, resolveOnUpdatedRecords bool) *future {
	entry := &waiterEntry{
		queryID:                 queryID,
		future:                  newFuture(),
		resolveOnUpdatedRecords: resolveOnUpdatedRecords,
	}
	if timeoutSeconds > 0 {
		entry.hasTimeout = true
		entry.timer = r.clock.AfterFunc(secondsToDuration(timeoutSeconds), func() {
			r.finish(queryID, true, false)
		})
	}
	r.waiters[queryID] = entry
	return entry.future
}

// finish resolves or drops the waiter for queryId per §4.4. If
// isUpdatedRecord is true and the waiter was registered with
// resolveOnUpdatedRecords=false (a streaming caller), the call is a no-op:
// a streaming caller is not woken by cache refreshes of devices it has
// already seen.
func (r *waiterRegistry) finish(queryID string, resolve bool, isUpdatedRecord bool) {
	entry, ok := r.waiters[queryID]
	if !ok {
		return
	}
	if isUpdatedRecord && !entry.resolveOnUpdatedRecords {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(r.waiters, queryID)
	entry.future.ch <- waiterResult{resolved: resolve, isUpdatedRecord: isUpdatedRecord}
}

// has reports whether a waiter is currently registered for queryId.
func (r *waiterRegistry) has(queryID string) bool {
	_, ok := r.waiters[queryID]
	return ok
}

// drain finishes every outstanding waiter on Close: those with a timeout
// are resolved (their caller expected eventual completion), those
// without one are abandoned without resolution.
func (r *waiterRegistry) drain() {
	for queryID, entry := range r.waiters {
		if entry.hasTimeout {
			if entry.timer != nil {
				entry.timer.Stop()
			}
			delete(r.waiters, queryID)
			entry.future.ch <- waiterResult{resolved: true}
		}
	}
}
